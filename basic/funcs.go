package basic

import (
	"math"
	"strconv"
	"strings"
)

func (in *Interpreter) evalCall(c CallExpr) (Value, error) {
	args := make([]Value, len(c.Args))
	for i, a := range c.Args {
		v, err := in.eval(a)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	switch c.Name {
	case "SGN":
		n, err := in.num1(c.Name, args)
		if err != nil {
			return Value{}, err
		}
		switch {
		case n > 0:
			return Num(1), nil
		case n < 0:
			return Num(-1), nil
		default:
			return Num(0), nil
		}
	case "INT":
		n, err := in.num1(c.Name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(math.Floor(n)), nil
	case "ABS":
		n, err := in.num1(c.Name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(math.Abs(n)), nil
	case "RND":
		if _, err := in.num1(c.Name, args); err != nil {
			return Value{}, err
		}
		return Num(in.rng.Float64()), nil
	case "SQR":
		n, err := in.num1(c.Name, args)
		if err != nil {
			return Value{}, err
		}
		if n < 0 {
			return Value{}, newError(ErrNumericOverflow, in.curLine, "SQR of a negative number")
		}
		return Num(math.Sqrt(n)), nil
	case "LOG":
		n, err := in.num1(c.Name, args)
		if err != nil {
			return Value{}, err
		}
		if n <= 0 {
			return Value{}, newError(ErrNumericOverflow, in.curLine, "LOG of a non-positive number")
		}
		return Num(math.Log(n)), nil
	case "EXP":
		n, err := in.num1(c.Name, args)
		if err != nil {
			return Value{}, err
		}
		r := math.Exp(n)
		if math.IsInf(r, 0) {
			return Value{}, newError(ErrNumericOverflow, in.curLine, "EXP overflow")
		}
		return Num(r), nil
	case "COS":
		n, err := in.num1(c.Name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(math.Cos(n)), nil
	case "SIN":
		n, err := in.num1(c.Name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(math.Sin(n)), nil
	case "TAN":
		n, err := in.num1(c.Name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(math.Tan(n)), nil
	case "ATN":
		n, err := in.num1(c.Name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(math.Atan(n)), nil
	case "PEEK":
		n, err := in.num1(c.Name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(float64(in.peek(int(n)))), nil
	case "LEN":
		s, err := in.str1(c.Name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(float64(len(s))), nil
	case "STR$":
		n, err := in.num1(c.Name, args)
		if err != nil {
			return Value{}, err
		}
		return Str(formatNumber(n)), nil
	case "VAL":
		s, err := in.str1(c.Name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(parseNumericPrefix(s)), nil
	case "ASC":
		s, err := in.str1(c.Name, args)
		if err != nil {
			return Value{}, err
		}
		if s == "" {
			return Value{}, newError(ErrTypeMismatch, in.curLine, "ASC of an empty string")
		}
		return Num(float64(s[0])), nil
	case "CHR$":
		n, err := in.num1(c.Name, args)
		if err != nil {
			return Value{}, err
		}
		return Str(string(rune(int(n) % 256))), nil
	case "LEFT$":
		return in.builtinLeft(args)
	case "RIGHT$":
		return in.builtinRight(args)
	case "MID$":
		return in.builtinMid(args)
	case "FRE":
		// No memory model is emulated (spec.md Non-goals); report a large
		// constant so programs that gate behavior on low memory proceed.
		return Num(65535), nil
	case "POS":
		_, col := in.screen.Cursor()
		return Num(float64(col)), nil
	case "USR":
		return Value{}, newError(ErrTypeMismatch, in.curLine, "USR has no machine-language routine to call")
	}
	return Value{}, newError(ErrParseError, in.curLine, "unknown function %s", c.Name)
}

func (in *Interpreter) num1(name string, args []Value) (float64, error) {
	if len(args) != 1 {
		return 0, newError(ErrParseError, in.curLine, "%s expects one argument", name)
	}
	if args[0].IsString() {
		return 0, newError(ErrTypeMismatch, in.curLine, "%s expects a number", name)
	}
	return args[0].Float(), nil
}

func (in *Interpreter) str1(name string, args []Value) (string, error) {
	if len(args) != 1 {
		return "", newError(ErrParseError, in.curLine, "%s expects one argument", name)
	}
	if !args[0].IsString() {
		return "", newError(ErrTypeMismatch, in.curLine, "%s expects a string", name)
	}
	return args[0].Text(), nil
}

func (in *Interpreter) builtinLeft(args []Value) (Value, error) {
	if len(args) != 2 || !args[0].IsString() || args[1].IsString() {
		return Value{}, newError(ErrParseError, in.curLine, "LEFT$ expects (string, number)")
	}
	s := args[0].Text()
	n := int(args[1].Float())
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	return Str(s[:n]), nil
}

func (in *Interpreter) builtinRight(args []Value) (Value, error) {
	if len(args) != 2 || !args[0].IsString() || args[1].IsString() {
		return Value{}, newError(ErrParseError, in.curLine, "RIGHT$ expects (string, number)")
	}
	s := args[0].Text()
	n := int(args[1].Float())
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	return Str(s[len(s)-n:]), nil
}

func (in *Interpreter) builtinMid(args []Value) (Value, error) {
	if len(args) < 2 || len(args) > 3 || !args[0].IsString() || args[1].IsString() {
		return Value{}, newError(ErrParseError, in.curLine, "MID$ expects (string, number[, number])")
	}
	s := args[0].Text()
	start := int(args[1].Float())
	if start < 1 {
		start = 1
	}
	if start > len(s) {
		return Str(""), nil
	}
	end := len(s)
	if len(args) == 3 {
		if args[2].IsString() {
			return Value{}, newError(ErrTypeMismatch, in.curLine, "MID$ length must be numeric")
		}
		n := int(args[2].Float())
		if n < 0 {
			n = 0
		}
		if start-1+n < end {
			end = start - 1 + n
		}
	}
	return Str(s[start-1 : end]), nil
}

// parseNumericPrefix parses a leading optional sign, digits, and optional
// fractional part, stopping at the first character that doesn't extend a
// valid number; returns 0 if no digits are found at all (spec.md §4.5).
func parseNumericPrefix(s string) float64 {
	s = strings.TrimLeft(s, " ")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isDigitByte(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigitByte(s[i]) {
			i++
		}
	}
	if i == start {
		return 0
	}
	n, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0
	}
	return n
}
