package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"

	"github.com/rcode5/c64basic/basic"
	"github.com/rcode5/c64basic/term"
)

// pollInterval is the interpreter's own step throttle (spec.md §5); the
// term frontend has its own independent redraw/poll cadence.
const pollInterval = 100 * time.Microsecond

func main() {
	prg := flag.Bool("prg", false, "decode the source file as a tokenized PRG binary")
	debug := flag.Bool("debug", false, "run a line-oriented debug console on stdin/stdout instead of the terminal frontend")
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: c64basic [--prg] [--debug] <source-file>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	prog, err := load(path, *prg)
	if err != nil {
		glog.Errorf("loading %s: %v", path, err)
		fmt.Fprintln(os.Stderr, err)
		glog.Flush()
		if be, ok := err.(*basic.Error); ok && !be.LoadTime() {
			os.Exit(2)
		}
		os.Exit(1)
	}

	screen := basic.NewScreen()
	seed := seedFromEnv()

	ctx := context.Background()
	if *debug {
		console := basic.NewDebugConsole(prog, screen, seed, os.Stdout)
		if err := console.RunREPL(ctx, os.Stdin); err != nil {
			glog.Errorf("debug console: %v", err)
			fmt.Fprintln(os.Stderr, err)
			glog.Flush()
			os.Exit(2)
		}
		return
	}

	host := term.NewHost(screen)
	if err := host.Start(ctx); err != nil {
		glog.Errorf("starting terminal host: %v", err)
		fmt.Fprintln(os.Stderr, err)
		glog.Flush()
		os.Exit(2)
	}
	defer host.Stop()

	interp := basic.NewInterpreter(prog, screen, seed)
	for !interp.Done() {
		if err := interp.Step(ctx); err != nil {
			screen.Quit()
			host.Stop()
			glog.Errorf("runtime error: %v", err)
			fmt.Fprintln(os.Stderr, err)
			glog.Flush()
			os.Exit(2)
		}
		time.Sleep(pollInterval)
	}
}

func load(path string, isPRG bool) (*basic.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if isPRG {
		lines, err := basic.Detokenize(data)
		if err != nil {
			return nil, err
		}
		glog.Infof("detokenized %d lines from %s", len(lines), path)
		return basic.ParseLines(lines)
	}
	return basic.Parse(string(data))
}

// seedFromEnv implements spec.md §6's SEED environment variable, falling
// back to the current time for a non-deterministic run.
func seedFromEnv() int64 {
	if s := os.Getenv("SEED"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		glog.Warningf("SEED=%q is not a decimal integer; ignoring", s)
	}
	return time.Now().UnixNano()
}
