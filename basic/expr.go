package basic

import "math"

// eval evaluates an expression tree against the interpreter's current
// variable/array state, in the precedence already baked in by the parser
// (spec.md §4.5: unary/NOT tightest, then ^, * /, + -, relational, AND, OR).
func (in *Interpreter) eval(e Expr) (Value, error) {
	switch n := e.(type) {
	case NumberLit:
		return Num(n.Value), nil
	case StringLit:
		return Str(n.Value), nil
	case VarRef:
		return in.evalVarRef(n)
	case UnaryExpr:
		operand, err := in.eval(n.Operand)
		if err != nil {
			return Value{}, err
		}
		switch n.Op {
		case "-":
			return Neg(operand, in.curLine)
		case "NOT":
			return Not(operand, in.curLine)
		}
		return Value{}, newError(ErrParseError, in.curLine, "unknown unary operator %q", n.Op)
	case BinaryExpr:
		return in.evalBinary(n)
	case CallExpr:
		return in.evalCall(n)
	case TabExpr, SpcExpr:
		// Only meaningful as a PRINT item; evaluating it as a plain value
		// (e.g. nested in another expression) has no defined behavior.
		return Value{}, newError(ErrTypeMismatch, in.curLine, "TAB/SPC used outside PRINT")
	}
	return Value{}, newError(ErrParseError, in.curLine, "unknown expression node %T", e)
}

func (in *Interpreter) evalVarRef(ref VarRef) (Value, error) {
	if len(ref.Indices) == 0 {
		return in.vars.Get(ref.Name), nil
	}
	subs, err := in.evalIndices(ref.Indices)
	if err != nil {
		return Value{}, err
	}
	arr := in.arrays.Get(ref.Name, len(subs))
	return arr.Get(subs, in.curLine)
}

func (in *Interpreter) evalIndices(exprs []Expr) ([]int, error) {
	subs := make([]int, len(exprs))
	for i, e := range exprs {
		v, err := in.eval(e)
		if err != nil {
			return nil, err
		}
		if v.IsString() {
			return nil, newError(ErrTypeMismatch, in.curLine, "array subscript must be numeric")
		}
		subs[i] = int(math.Floor(v.Float()))
	}
	return subs, nil
}

func (in *Interpreter) evalBinary(n BinaryExpr) (Value, error) {
	left, err := in.eval(n.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := in.eval(n.Right)
	if err != nil {
		return Value{}, err
	}
	switch n.Op {
	case "+":
		return Add(left, right, in.curLine)
	case "-":
		return Sub(left, right, in.curLine)
	case "*":
		return Mul(left, right, in.curLine)
	case "/":
		return Div(left, right, in.curLine)
	case "^":
		return Pow(left, right, in.curLine)
	case "=", "<>", "<", "<=", ">", ">=":
		return Compare(left, right, n.Op, in.curLine)
	case "AND":
		return And(left, right, in.curLine)
	case "OR":
		return Or(left, right, in.curLine)
	}
	return Value{}, newError(ErrParseError, in.curLine, "unknown binary operator %q", n.Op)
}
