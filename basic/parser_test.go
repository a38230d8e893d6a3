package basic

import "testing"

// These are the six literal keyword-collision acceptance lines from
// spec.md §8; each must parse without error regardless of line number.
func TestParserAcceptsKeywordCollisionLines(t *testing.T) {
	lines := []string{
		`10 IFI=5THENPRINT"OK"`,
		`20 FOR PZ=HZTOHZ+15:NEXT`,
		`30 IF A$<>"N"ANDA$<>"S"THEN 10`,
		`40 L=1::IFI>ZTHENWW=INT(RND(1)*2)+1`,
		`50 IFRND(1)>.5THENA(PZ)=A(PZ)+1`,
		`60 PRINTCHR$(142):GOSUB2000`,
	}
	for _, l := range lines {
		if _, err := Parse(l); err != nil {
			t.Errorf("Parse(%q) failed: %v", l, err)
		}
	}
}

func TestParserDuplicateLineNumberFails(t *testing.T) {
	src := "10 PRINT \"A\"\n10 PRINT \"B\"\n"
	if _, err := Parse(src); err == nil {
		t.Fatal("expected an error for duplicate line numbers")
	}
}

func TestParserIfWithLineNumberJump(t *testing.T) {
	prog, err := Parse("10 IF 1<2 THEN 30\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, stmts := prog.LineAt(0)
	ifs, ok := stmts[0].(IfStmt)
	if !ok {
		t.Fatalf("statement = %T, want IfStmt", stmts[0])
	}
	if ifs.GotoLine != 30 {
		t.Errorf("GotoLine = %d, want 30", ifs.GotoLine)
	}
}

func TestParserIfWithStatementBody(t *testing.T) {
	prog, err := Parse(`10 IF 1<2 THEN PRINT "Y":GOTO 30` + "\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, stmts := prog.LineAt(0)
	ifs, ok := stmts[0].(IfStmt)
	if !ok {
		t.Fatalf("statement = %T, want IfStmt", stmts[0])
	}
	if len(ifs.Then) != 2 {
		t.Fatalf("Then = %v, want 2 statements", ifs.Then)
	}
	if _, ok := ifs.Then[0].(PrintStmt); !ok {
		t.Errorf("Then[0] = %T, want PrintStmt", ifs.Then[0])
	}
	if _, ok := ifs.Then[1].(GotoStmt); !ok {
		t.Errorf("Then[1] = %T, want GotoStmt", ifs.Then[1])
	}
}

func TestParserForStepDefault(t *testing.T) {
	prog, err := Parse("10 FOR I=1 TO 3\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, stmts := prog.LineAt(0)
	f, ok := stmts[0].(ForStmt)
	if !ok {
		t.Fatalf("statement = %T, want ForStmt", stmts[0])
	}
	if f.Step != nil {
		t.Errorf("Step = %v, want nil (default 1)", f.Step)
	}
}

func TestParserPrintZonesAndSeparators(t *testing.T) {
	prog, err := Parse(`10 PRINT A,B;C` + "\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, stmts := prog.LineAt(0)
	p, ok := stmts[0].(PrintStmt)
	if !ok {
		t.Fatalf("statement = %T, want PrintStmt", stmts[0])
	}
	if len(p.Items) != 3 {
		t.Fatalf("items = %v, want 3", p.Items)
	}
	if p.Items[0].Sep != ',' || p.Items[1].Sep != ';' || p.Items[2].Sep != 0 {
		t.Errorf("separators = %q %q %q", p.Items[0].Sep, p.Items[1].Sep, p.Items[2].Sep)
	}
}

func TestParserOnGoto(t *testing.T) {
	prog, err := Parse("10 ON X GOTO 100,200,300\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, stmts := prog.LineAt(0)
	on, ok := stmts[0].(OnStmt)
	if !ok {
		t.Fatalf("statement = %T, want OnStmt", stmts[0])
	}
	if on.IsGosub {
		t.Error("IsGosub = true, want false for ON...GOTO")
	}
	if len(on.Targets) != 3 || on.Targets[2] != 300 {
		t.Errorf("Targets = %v", on.Targets)
	}
}

func TestParserExpressionPrecedence(t *testing.T) {
	prog, err := Parse("10 X=2+3*4\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, stmts := prog.LineAt(0)
	let, ok := stmts[0].(LetStmt)
	if !ok {
		t.Fatalf("statement = %T, want LetStmt", stmts[0])
	}
	bin, ok := let.Expr.(BinaryExpr)
	if !ok || bin.Op != "+" {
		t.Fatalf("top-level op = %+v, want '+' at the root (loosest binds last)", let.Expr)
	}
	rhs, ok := bin.Right.(BinaryExpr)
	if !ok || rhs.Op != "*" {
		t.Fatalf("right operand = %+v, want a '*' subexpression", bin.Right)
	}
}
