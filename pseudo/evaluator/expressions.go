package evaluator

import (
	"context"
	"math"

	"github.com/Jax0312/pseudoengine-sub000/pseudo/ast"
	"github.com/Jax0312/pseudoengine-sub000/pseudo/object"
)

// operator spellings accepted besides the symbolic ones.
var operatorAliases = map[string]string{
	"AND": "&&",
	"OR":  "||",
	"NOT": "!",
	"<>":  "!=",
	"DIV": "//",
	"MOD": "%",
}

func canonicalOp(op string) string {
	if c, ok := operatorAliases[op]; ok {
		return c
	}
	return op
}

// evalExpr runs a postfix sequence on a value stack.
func (e *Evaluator) evalExpr(ctx context.Context, expr *ast.Expr) object.Object {
	if expr == nil || len(expr.Items) == 0 {
		return e.newError(ctx, ast.Pos{}, object.InternalError, "empty expression")
	}
	stack := make([]object.Object, 0, len(expr.Items))
	for _, item := range expr.Items {
		op, ok := item.(*ast.Operator)
		if !ok {
			val := e.evalItem(ctx, item)
			if isError(val) {
				return val
			}
			stack = append(stack, val)
			continue
		}

		if op.Unary {
			if len(stack) < 1 {
				return e.newError(ctx, op.At, object.InternalError, "operator %s has no operand", op.Op)
			}
			right := stack[len(stack)-1]
			res := e.evalPrefix(ctx, op, right)
			if isError(res) {
				return res
			}
			stack[len(stack)-1] = res
			continue
		}

		if len(stack) < 2 {
			return e.newError(ctx, op.At, object.InternalError, "operator %s needs two operands, have %d", op.Op, len(stack))
		}
		left, right := stack[len(stack)-2], stack[len(stack)-1]
		res := e.evalInfix(ctx, op, left, right)
		if isError(res) {
			return res
		}
		stack = stack[:len(stack)-1]
		stack[len(stack)-1] = res
	}
	if len(stack) != 1 {
		return e.newError(ctx, expr.At, object.InternalError, "malformed expression leaves %d values", len(stack))
	}
	return stack[0]
}

// evalItem evaluates an operand.
func (e *Evaluator) evalItem(ctx context.Context, item ast.Item) object.Object {
	switch n := item.(type) {
	case *ast.IntegerLit:
		return &object.Integer{Value: n.Value}
	case *ast.RealLit:
		return &object.Real{Value: n.Value}
	case *ast.StringLit:
		return &object.String{Value: n.Value}
	case *ast.BooleanLit:
		return object.NativeBool(n.Value)
	case *ast.DateLit:
		d, ok := object.NewDate(n.Day, n.Month, n.Year)
		if !ok {
			return e.newError(ctx, n.At, object.InvalidArgument, "%02d-%02d-%04d is not a calendar date", n.Day, n.Month, n.Year)
		}
		return d
	case *ast.Ident:
		return e.evalIdent(ctx, n)
	case *ast.IndexExpr, *ast.ChainExpr:
		r, errObj := e.resolve(ctx, item)
		if errObj != nil {
			return errObj
		}
		return r.load()
	case *ast.CallExpr:
		return e.evalCall(ctx, n, true)
	case *ast.NewExpr:
		return e.construct(ctx, n)
	}
	return e.newError(ctx, item.Pos(), object.InternalError, "unexpected expression item %T", item)
}

func (e *Evaluator) evalIdent(ctx context.Context, n *ast.Ident) object.Object {
	v, err := e.env.Lookup(n.Name)
	if err == nil {
		return v.Value()
	}
	if m, ok := e.defs.EnumMember(n.Name); ok {
		return m
	}
	return e.at(ctx, n.At, err)
}

func (e *Evaluator) evalPrefix(ctx context.Context, op *ast.Operator, right object.Object) object.Object {
	switch canonicalOp(op.Op) {
	case "!":
		b, ok := right.(*object.Boolean)
		if !ok {
			return e.newError(ctx, op.At, object.InvalidOperation, "operator ! needs a BOOLEAN, got %s", object.Describe(right))
		}
		return object.NativeBool(!b.Value)
	case "-":
		switch r := right.(type) {
		case *object.Integer:
			return &object.Integer{Value: -r.Value}
		case *object.Real:
			return &object.Real{Value: -r.Value}
		}
	case "+":
		switch right.(type) {
		case *object.Integer, *object.Real:
			return right
		}
	default:
		return e.newError(ctx, op.At, object.InvalidOperation, "unknown unary operator %s", op.Op)
	}
	return e.newError(ctx, op.At, object.InvalidOperation, "unary %s needs a number, got %s", op.Op, object.Describe(right))
}

func (e *Evaluator) evalInfix(ctx context.Context, op *ast.Operator, left, right object.Object) object.Object {
	switch o := canonicalOp(op.Op); o {
	case "+", "-", "*", "/", "%", "//":
		return e.evalArithmetic(ctx, op.At, o, left, right)
	case "<", ">", "<=", ">=":
		return e.evalComparison(ctx, op.At, o, left, right)
	case "=", "!=":
		eq := e.equals(ctx, op.At, left, right)
		if isError(eq) {
			return eq
		}
		if o == "!=" {
			return object.NativeBool(!eq.(*object.Boolean).Value)
		}
		return eq
	case "&&", "||":
		l, lok := left.(*object.Boolean)
		r, rok := right.(*object.Boolean)
		if !lok || !rok {
			return e.newError(ctx, op.At, object.InvalidOperation, "operator %s needs BOOLEAN operands, got %s and %s", op.Op, object.Describe(left), object.Describe(right))
		}
		if o == "&&" {
			return object.NativeBool(l.Value && r.Value)
		}
		return object.NativeBool(l.Value || r.Value)
	case "&":
		l, lok := left.(*object.String)
		r, rok := right.(*object.String)
		if !lok || !rok {
			return e.newError(ctx, op.At, object.InvalidOperation, "operator & needs STRING operands, got %s and %s", object.Describe(left), object.Describe(right))
		}
		return &object.String{Value: l.Value + r.Value}
	}
	return e.newError(ctx, op.At, object.InvalidOperation, "unknown operator %s", op.Op)
}

// numeric returns the value of an INTEGER or REAL as a float, and whether it
// is an INTEGER.
func numeric(obj object.Object) (f float64, isInt bool, ok bool) {
	switch v := obj.(type) {
	case *object.Integer:
		return float64(v.Value), true, true
	case *object.Real:
		return v.Value, false, true
	}
	return 0, false, false
}

func (e *Evaluator) evalArithmetic(ctx context.Context, pos ast.Pos, op string, left, right object.Object) object.Object {
	lf, lInt, lok := numeric(left)
	rf, rInt, rok := numeric(right)
	if !lok || !rok {
		return e.newError(ctx, pos, object.InvalidOperation, "operator %s needs numeric operands, got %s and %s", op, object.Describe(left), object.Describe(right))
	}
	if (op == "/" || op == "%" || op == "//") && rf == 0 {
		return e.newError(ctx, pos, object.DivisionByZero, "division by zero")
	}

	if lInt && rInt {
		l := left.(*object.Integer).Value
		r := right.(*object.Integer).Value
		var v int64
		switch op {
		case "+":
			v = l + r
		case "-":
			v = l - r
		case "*":
			v = l * r
		case "/":
			v = l / r
		case "%":
			v = l % r
		case "//":
			v = l / r
			if l%r != 0 && (l < 0) != (r < 0) {
				v--
			}
		}
		return &object.Integer{Value: v}
	}

	var v float64
	switch op {
	case "+":
		v = lf + rf
	case "-":
		v = lf - rf
	case "*":
		v = lf * rf
	case "/":
		v = lf / rf
	case "%":
		v = math.Mod(lf, rf)
	case "//":
		v = math.Floor(lf / rf)
	}
	return &object.Real{Value: v}
}

func (e *Evaluator) evalComparison(ctx context.Context, pos ast.Pos, op string, left, right object.Object) object.Object {
	lf, lInt, lok := numeric(left)
	rf, rInt, rok := numeric(right)
	if !lok || !rok {
		return e.newError(ctx, pos, object.InvalidOperation, "operator %s needs numeric operands, got %s and %s", op, object.Describe(left), object.Describe(right))
	}
	var cmp int
	if lInt && rInt {
		l, r := left.(*object.Integer).Value, right.(*object.Integer).Value
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		}
	} else {
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		}
	}
	switch op {
	case "<":
		return object.NativeBool(cmp < 0)
	case ">":
		return object.NativeBool(cmp > 0)
	case "<=":
		return object.NativeBool(cmp <= 0)
	default:
		return object.NativeBool(cmp >= 0)
	}
}

// equals compares two primitive values of the same type.
func (e *Evaluator) equals(ctx context.Context, pos ast.Pos, left, right object.Object) object.Object {
	for _, v := range []object.Object{left, right} {
		switch v.(type) {
		case *object.Array, *object.Instance:
			return e.newError(ctx, pos, object.InvalidOperation, "cannot compare values of type %s", object.Describe(v))
		}
	}
	if left.Type() != right.Type() {
		return e.newError(ctx, pos, object.TypeMismatch, "cannot compare %s with %s", object.Describe(left), object.Describe(right))
	}
	switch l := left.(type) {
	case *object.Integer:
		return object.NativeBool(l.Value == right.(*object.Integer).Value)
	case *object.Real:
		return object.NativeBool(l.Value == right.(*object.Real).Value)
	case *object.Boolean:
		return object.NativeBool(l.Value == right.(*object.Boolean).Value)
	case *object.String:
		return object.NativeBool(l.Value == right.(*object.String).Value)
	case *object.Date:
		return object.NativeBool(l.Value.Equal(right.(*object.Date).Value))
	case *object.EnumValue:
		r := right.(*object.EnumValue)
		if l.TypeName != r.TypeName {
			return e.newError(ctx, pos, object.TypeMismatch, "cannot compare %s with %s", l.TypeName, r.TypeName)
		}
		return object.NativeBool(l.Name == r.Name)
	}
	return e.newError(ctx, pos, object.InvalidOperation, "cannot compare values of type %s", object.Describe(left))
}

// evalBool evaluates a condition, which must be a BOOLEAN.
func (e *Evaluator) evalBool(ctx context.Context, expr *ast.Expr, what string) (bool, *object.Error) {
	val := e.evalExpr(ctx, expr)
	if err, ok := val.(*object.Error); ok {
		return false, err
	}
	b, ok := val.(*object.Boolean)
	if !ok {
		return false, e.newError(ctx, expr.At, object.TypeMismatch, "%s must be BOOLEAN, got %s", what, object.Describe(val))
	}
	return b.Value, nil
}

// evalInteger evaluates an expression that must produce an INTEGER.
func (e *Evaluator) evalInteger(ctx context.Context, expr *ast.Expr, what string) (int64, *object.Error) {
	val := e.evalExpr(ctx, expr)
	if err, ok := val.(*object.Error); ok {
		return 0, err
	}
	i, ok := val.(*object.Integer)
	if !ok {
		return 0, e.newError(ctx, expr.At, object.TypeMismatch, "%s must be INTEGER, got %s", what, object.Describe(val))
	}
	return i.Value, nil
}

// evalString evaluates an expression that must produce a STRING.
func (e *Evaluator) evalString(ctx context.Context, expr *ast.Expr, what string) (string, *object.Error) {
	val := e.evalExpr(ctx, expr)
	if err, ok := val.(*object.Error); ok {
		return "", err
	}
	s, ok := val.(*object.String)
	if !ok {
		return "", e.newError(ctx, expr.At, object.TypeMismatch, "%s must be STRING, got %s", what, object.Describe(val))
	}
	return s.Value, nil
}
