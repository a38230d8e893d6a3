package basic

import (
	"context"
	"math"
	"math/rand"
	"strings"

	"github.com/golang/glog"
)

const (
	gosubStackLimit = 256
	forStackLimit   = 64
)

type gosubFrame struct {
	lineIndex int
	stmtIndex int
}

type forFrame struct {
	counter   string
	limit     float64
	step      float64
	lineIndex int
	stmtIndex int // index of the statement immediately after the FOR
}

// pointer locates the next statement to execute: a line position and an
// index into that line's statement list.
type pointer struct {
	lineIndex int
	stmtIndex int
}

// Interpreter walks a parsed Program one statement per Step call, holding
// all mutable execution state (spec.md §4.5).
type Interpreter struct {
	prog    *Program
	vars    *Vars
	arrays  *Arrays
	screen  *Screen
	rng     *rand.Rand
	curLine int

	pc pointer

	gosubStack []gosubFrame
	forStack   []forFrame

	data       []Value
	dataCursor int

	done bool
}

// NewInterpreter builds an Interpreter ready to run prog against screen,
// seeding its RNG from seed (see main.go's SEED environment variable).
func NewInterpreter(prog *Program, screen *Screen, seed int64) *Interpreter {
	return &Interpreter{
		prog:   prog,
		vars:   NewVars(),
		arrays: NewArrays(),
		screen: screen,
		rng:    rand.New(rand.NewSource(seed)),
		data:   prog.allData(),
	}
}

// Done reports whether execution has terminated (END/STOP or cancellation).
func (in *Interpreter) Done() bool { return in.done }

// Run drives Step to completion, returning the first error encountered (if
// any). It is the convenience path for tests; main.go's terminal loop and
// the debug console instead call Step directly, one statement at a time.
func (in *Interpreter) Run(ctx context.Context) error {
	for !in.done {
		if err := in.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Step executes exactly one statement and advances the program counter,
// matching CPU.Step's one-bounded-unit-of-work shape.
func (in *Interpreter) Step(ctx context.Context) error {
	if in.done {
		return nil
	}
	if in.screen.Quitting() {
		in.done = true
		return nil
	}
	select {
	case <-ctx.Done():
		in.done = true
		return nil
	default:
	}

	if in.pc.lineIndex >= in.prog.Len() {
		in.done = true
		return nil
	}
	lineNum, stmts := in.prog.LineAt(in.pc.lineIndex)
	in.curLine = lineNum
	if in.pc.stmtIndex >= len(stmts) {
		in.pc = pointer{lineIndex: in.pc.lineIndex + 1}
		return nil
	}

	stmt := stmts[in.pc.stmtIndex]
	next := pointer{lineIndex: in.pc.lineIndex, stmtIndex: in.pc.stmtIndex + 1}
	if next.stmtIndex >= len(stmts) {
		next = pointer{lineIndex: in.pc.lineIndex + 1}
	}
	in.pc = next

	return in.exec(ctx, stmt)
}

func (in *Interpreter) exec(ctx context.Context, stmt Stmt) error {
	switch s := stmt.(type) {
	case PrintStmt:
		return in.execPrint(s)
	case InputStmt:
		return in.execInput(ctx, s)
	case LetStmt:
		return in.execLet(s)
	case IfStmt:
		return in.execIf(s)
	case GotoStmt:
		return in.jumpTo(s.Line)
	case GosubStmt:
		return in.execGosub(s)
	case ReturnStmt:
		return in.execReturn()
	case ForStmt:
		return in.execFor(s)
	case NextStmt:
		return in.execNext(s)
	case DimStmt:
		return in.execDim(s)
	case DataStmt:
		return nil // DATA is inert at execution time; consumed via allData()
	case ReadStmt:
		return in.execRead(s)
	case PokeStmt:
		return in.execPoke(s)
	case RestoreStmt:
		in.dataCursor = 0
		return nil
	case OnStmt:
		return in.execOn(s)
	case EndStmt:
		in.done = true
		return nil
	case RemStmt:
		return nil
	}
	return newError(ErrParseError, in.curLine, "unexecutable statement %T", stmt)
}

func (in *Interpreter) jumpTo(line int) error {
	idx, ok := in.prog.IndexOf(line)
	if !ok {
		return newError(ErrUndefinedLine, in.curLine, "undefined line %d", line)
	}
	in.pc = pointer{lineIndex: idx}
	return nil
}

func (in *Interpreter) execLet(s LetStmt) error {
	val, err := in.eval(s.Expr)
	if err != nil {
		return err
	}
	return in.assign(s.Target, val)
}

func (in *Interpreter) assign(ref VarRef, val Value) error {
	if len(ref.Indices) == 0 {
		in.vars.Set(ref.Name, val)
		return nil
	}
	subs, err := in.evalIndices(ref.Indices)
	if err != nil {
		return err
	}
	arr := in.arrays.Get(ref.Name, len(subs))
	return arr.Set(subs, val, in.curLine)
}

func (in *Interpreter) execIf(s IfStmt) error {
	cond, err := in.eval(s.Cond)
	if err != nil {
		return err
	}
	if !IsTrue(cond) {
		return nil
	}
	if s.GotoLine != 0 {
		return in.jumpTo(s.GotoLine)
	}
	for _, then := range s.Then {
		if err := in.exec(context.Background(), then); err != nil {
			return err
		}
		if in.done {
			return nil
		}
	}
	return nil
}

func (in *Interpreter) execGosub(s GosubStmt) error {
	if len(in.gosubStack) >= gosubStackLimit {
		return newError(ErrStackOverflow, in.curLine, "GOSUB stack overflow")
	}
	in.gosubStack = append(in.gosubStack, gosubFrame{lineIndex: in.pc.lineIndex, stmtIndex: in.pc.stmtIndex})
	return in.jumpTo(s.Line)
}

func (in *Interpreter) execReturn() error {
	if len(in.gosubStack) == 0 {
		return newError(ErrReturnWithoutGosub, in.curLine, "RETURN without GOSUB")
	}
	frame := in.gosubStack[len(in.gosubStack)-1]
	in.gosubStack = in.gosubStack[:len(in.gosubStack)-1]
	in.pc = pointer{lineIndex: frame.lineIndex, stmtIndex: frame.stmtIndex}
	return nil
}

func (in *Interpreter) execFor(s ForStmt) error {
	start, err := in.eval(s.Start)
	if err != nil {
		return err
	}
	limit, err := in.eval(s.Limit)
	if err != nil {
		return err
	}
	step := 1.0
	if s.Step != nil {
		stepVal, err := in.eval(s.Step)
		if err != nil {
			return err
		}
		step = stepVal.Float()
	}
	if len(in.forStack) >= forStackLimit {
		return newError(ErrStackOverflow, in.curLine, "FOR stack overflow")
	}
	in.vars.Set(s.Counter, start)
	in.forStack = append(in.forStack, forFrame{
		counter:   CanonicalName(s.Counter),
		limit:     limit.Float(),
		step:      step,
		lineIndex: in.pc.lineIndex,
		stmtIndex: in.pc.stmtIndex,
	})
	return nil
}

func (in *Interpreter) execNext(s NextStmt) error {
	idx, err := in.findForFrame(s.Counter)
	if err != nil {
		return err
	}
	frame := in.forStack[idx]
	counter := in.vars.Get(frame.counter)
	updated := counter.Float() + frame.step
	in.vars.Set(frame.counter, Num(updated))

	terminating := updated > frame.limit
	if frame.step < 0 {
		terminating = updated < frame.limit
	}
	if terminating {
		in.forStack = append(in.forStack[:idx], in.forStack[idx+1:]...)
		return nil
	}
	in.pc = pointer{lineIndex: frame.lineIndex, stmtIndex: frame.stmtIndex}
	return nil
}

// findForFrame returns the innermost frame matching name ("" = innermost
// overall), per spec.md §4.4's "NEXT with no counter matches the innermost
// FOR frame" rule.
func (in *Interpreter) findForFrame(name string) (int, error) {
	if name == "" {
		if len(in.forStack) == 0 {
			return 0, newError(ErrNextWithoutFor, in.curLine, "NEXT without FOR")
		}
		return len(in.forStack) - 1, nil
	}
	canon := CanonicalName(name)
	for i := len(in.forStack) - 1; i >= 0; i-- {
		if in.forStack[i].counter == canon {
			return i, nil
		}
	}
	return 0, newError(ErrNextWithoutFor, in.curLine, "NEXT %s without matching FOR", name)
}

func (in *Interpreter) execDim(s DimStmt) error {
	for _, decl := range s.Decls {
		dims, err := in.evalIndices(decl.Dims)
		if err != nil {
			return err
		}
		if err := in.arrays.Dim(decl.Name, dims, in.curLine); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) execRead(s ReadStmt) error {
	for _, target := range s.Targets {
		if in.dataCursor >= len(in.data) {
			return newError(ErrOutOfData, in.curLine, "READ past end of DATA")
		}
		val := in.data[in.dataCursor]
		in.dataCursor++
		if err := in.assign(target, val); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) execPoke(s PokeStmt) error {
	addrVal, err := in.eval(s.Addr)
	if err != nil {
		return err
	}
	valueVal, err := in.eval(s.Value)
	if err != nil {
		return err
	}
	if addrVal.IsString() || valueVal.IsString() {
		return newError(ErrTypeMismatch, in.curLine, "POKE requires numeric address and value")
	}
	addr := int(addrVal.Float())
	value := ((int(valueVal.Float()) % 256) + 256) % 256
	in.screen.PokeColor(addr, value)
	return nil
}

func (in *Interpreter) execOn(s OnStmt) error {
	val, err := in.eval(s.Expr)
	if err != nil {
		return err
	}
	selector := int(math.Floor(val.Float()))
	if selector < 1 || selector > len(s.Targets) {
		return nil // out of range: fall through to the next statement
	}
	target := s.Targets[selector-1]
	if s.IsGosub {
		if len(in.gosubStack) >= gosubStackLimit {
			return newError(ErrStackOverflow, in.curLine, "GOSUB stack overflow")
		}
		in.gosubStack = append(in.gosubStack, gosubFrame{lineIndex: in.pc.lineIndex, stmtIndex: in.pc.stmtIndex})
	}
	return in.jumpTo(target)
}

func (in *Interpreter) peek(addr int) int {
	return in.screen.Peek(addr)
}

const printZoneWidth = 10

func (in *Interpreter) execPrint(s PrintStmt) error {
	trailingSep := byte(0)
	for _, item := range s.Items {
		if item.Expr == nil {
			in.printSeparator(item.Sep)
			trailingSep = item.Sep
			continue
		}
		if err := in.printItem(item.Expr); err != nil {
			return err
		}
		trailingSep = item.Sep
		if item.Sep != 0 {
			in.printSeparator(item.Sep)
		}
	}
	if trailingSep == 0 {
		in.screen.Newline()
	}
	return nil
}

func (in *Interpreter) printItem(e Expr) error {
	switch n := e.(type) {
	case TabExpr:
		arg, err := in.eval(n.Arg)
		if err != nil {
			return err
		}
		in.screen.Tab(int(arg.Float()))
		return nil
	case SpcExpr:
		arg, err := in.eval(n.Arg)
		if err != nil {
			return err
		}
		in.screen.Spc(int(arg.Float()))
		return nil
	default:
		val, err := in.eval(e)
		if err != nil {
			return err
		}
		text := val.Format()
		in.screen.Print(text)
		if !val.IsString() {
			in.screen.Print(" ")
		}
		return nil
	}
}

// printSeparator advances to the next comma zone or does nothing for a
// semicolon (spec.md §4.5): the semicolon's "no separator" behavior is
// already satisfied by not inserting anything between items.
func (in *Interpreter) printSeparator(sep byte) {
	if sep != ',' {
		return
	}
	_, col := in.screen.Cursor()
	next := ((col / printZoneWidth) + 1) * printZoneWidth
	if next > ScreenCols-printZoneWidth {
		in.screen.Newline()
		return
	}
	in.screen.Tab(next)
}

func (in *Interpreter) execInput(ctx context.Context, s InputStmt) error {
	prompt := s.Prompt
	if s.HasText {
		in.screen.Print(prompt)
	}
	in.screen.Print("? ")

	for {
		line, ok := in.screen.ReadLine(ctx)
		if !ok {
			in.done = true
			return nil
		}
		parts := strings.Split(line, ",")
		if len(parts) != len(s.Targets) {
			glog.Warningf("line %d: INPUT expected %d values, got %d; re-prompting", in.curLine, len(s.Targets), len(parts))
			in.screen.Print("?REDO FROM START\n")
			in.screen.Print("? ")
			continue
		}
		vals := make([]Value, len(s.Targets))
		redo := false
		for i, target := range s.Targets {
			raw := strings.TrimSpace(parts[i])
			if strings.HasSuffix(CanonicalName(target.Name), "$") {
				vals[i] = Str(raw)
				continue
			}
			if raw == "" || !looksNumeric(raw) {
				redo = true
				break
			}
			vals[i] = Num(parseNumericPrefix(raw))
		}
		if redo {
			in.screen.Print("?REDO FROM START\n")
			in.screen.Print("? ")
			continue
		}
		for i, target := range s.Targets {
			if err := in.assign(target, vals[i]); err != nil {
				return err
			}
		}
		return nil
	}
}

func looksNumeric(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	sawDigit := false
	for i < len(s) && isDigitByte(s[i]) {
		i++
		sawDigit = true
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigitByte(s[i]) {
			i++
			sawDigit = true
		}
	}
	return sawDigit && i == len(s)
}
