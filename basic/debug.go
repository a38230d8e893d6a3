package basic

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DebugConsole runs an Interpreter one command at a time from a line-
// oriented stdio protocol, the way the teacher's debug console drives a
// CPU/PPU pair: s/step, p/print, br/breakpoint, r/reset, q/quit.
type DebugConsole struct {
	interp      *Interpreter
	prog        *Program
	screen      *Screen
	seed        int64
	breakpoints map[int]bool
	out         io.Writer
}

// NewDebugConsole builds a console over prog/screen, ready to accept
// commands from in and write responses to out.
func NewDebugConsole(prog *Program, screen *Screen, seed int64, out io.Writer) *DebugConsole {
	return &DebugConsole{
		interp:      NewInterpreter(prog, screen, seed),
		prog:        prog,
		screen:      screen,
		seed:        seed,
		breakpoints: make(map[int]bool),
		out:         out,
	}
}

func (c *DebugConsole) basePrint() {
	fmt.Fprintln(c.out, "--------------------------------------------------")
	fmt.Fprintf(c.out, "line=%d done=%v gosub_depth=%d for_depth=%d\n",
		c.interp.curLine, c.interp.done, len(c.interp.gosubStack), len(c.interp.forStack))
	for _, row := range c.screen.Snapshot() {
		if row != "" {
			fmt.Fprintln(c.out, row)
		}
	}
}

func (c *DebugConsole) checkBreak() bool {
	if c.breakpoints[c.interp.curLine] {
		fmt.Fprintf(c.out, "break at line %d\n", c.interp.curLine)
		return true
	}
	return false
}

func (c *DebugConsole) stepCommand(ctx context.Context, args []string) error {
	n := 1
	if len(args) >= 2 {
		if v, err := strconv.Atoi(args[1]); err == nil {
			n = v
		}
	}
	for i := 0; i < n && !c.interp.Done(); i++ {
		if err := c.interp.Step(ctx); err != nil {
			return err
		}
		if c.checkBreak() {
			break
		}
	}
	return nil
}

func (c *DebugConsole) printCommand(args []string) {
	if len(args) < 2 {
		c.basePrint()
		return
	}
	switch args[1] {
	case "v", "vars":
		for name, val := range c.interp.vars.m {
			fmt.Fprintf(c.out, "%s = %s\n", name, val.Format())
		}
	case "d", "data":
		fmt.Fprintf(c.out, "data cursor %d/%d\n", c.interp.dataCursor, len(c.interp.data))
	default:
		c.basePrint()
	}
}

func (c *DebugConsole) breakpointCommand(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("breakpoint requires a line number")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad line number %q", args[1])
	}
	c.breakpoints[n] = true
	return nil
}

func (c *DebugConsole) resetCommand() {
	c.interp = NewInterpreter(c.prog, c.screen, c.seed)
}

// RunREPL reads commands from r, one per line, until "q"/"quit" or EOF.
func (c *DebugConsole) RunREPL(ctx context.Context, r io.Reader) error {
	fmt.Fprint(c.out, "debug mode, 'q' to quit\n>> ")
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			fmt.Fprint(c.out, ">> ")
			continue
		}
		switch args[0] {
		case "s", "step":
			if err := c.stepCommand(ctx, args); err != nil {
				return err
			}
			c.basePrint()
		case "p", "print":
			c.printCommand(args)
		case "br", "breakpoint":
			if err := c.breakpointCommand(args); err != nil {
				fmt.Fprintln(c.out, err)
			}
		case "r", "reset":
			c.resetCommand()
		case "q", "quit":
			fmt.Fprintln(c.out, "quitting.")
			return nil
		default:
			fmt.Fprintf(c.out, "unknown command %q\n", args[0])
		}
		if c.interp.Done() {
			fmt.Fprintln(c.out, "program ended.")
			return nil
		}
		fmt.Fprint(c.out, ">> ")
	}
	return scanner.Err()
}
