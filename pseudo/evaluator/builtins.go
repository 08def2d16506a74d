package evaluator

import (
	"context"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/Jax0312/pseudoengine-sub000/pseudo/ast"
	"github.com/Jax0312/pseudoengine-sub000/pseudo/object"
)

// builtin is an entry of the library table. Arguments are checked against
// params and handed to fn in their textual form. A dynamic entry takes the
// expected type of its single numeric parameter from the argument itself.
type builtin struct {
	params  []object.ObjectType
	dynamic bool
	fn      func(e *Evaluator, args []string) (object.Object, *object.Error)
}

const (
	tInt  = object.INTEGER_OBJ
	tReal = object.REAL_OBJ
	tStr  = object.STRING_OBJ
	tDate = object.DATE_OBJ
)

var builtins = map[string]*builtin{
	"LEFT": {params: []object.ObjectType{tStr, tInt}, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		s, n := []rune(args[0]), atoi(args[1])
		if n < 0 || n > int64(len(s)) {
			return nil, object.NewError(object.InvalidArgument, "LEFT length %d is out of range for a string of length %d", n, len(s))
		}
		return &object.String{Value: string(s[:n])}, nil
	}},
	"RIGHT": {params: []object.ObjectType{tStr, tInt}, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		s, n := []rune(args[0]), atoi(args[1])
		if n < 0 || n > int64(len(s)) {
			return nil, object.NewError(object.InvalidArgument, "RIGHT length %d is out of range for a string of length %d", n, len(s))
		}
		return &object.String{Value: string(s[int64(len(s))-n:])}, nil
	}},
	"MID": {params: []object.ObjectType{tStr, tInt, tInt}, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		s, start, n := []rune(args[0]), atoi(args[1]), atoi(args[2])
		if start < 1 || n < 0 || start-1 > int64(len(s)) || n > int64(len(s))-(start-1) {
			return nil, object.NewError(object.InvalidArgument, "MID(%d, %d) is out of range for a string of length %d", start, n, len(s))
		}
		return &object.String{Value: string(s[start-1 : start-1+n])}, nil
	}},
	"LENGTH": {params: []object.ObjectType{tStr}, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		return &object.Integer{Value: int64(utf8.RuneCountInString(args[0]))}, nil
	}},
	"TO_UPPER": {params: []object.ObjectType{tStr}, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		return &object.String{Value: strings.ToUpper(args[0])}, nil
	}},
	"TO_LOWER": {params: []object.ObjectType{tStr}, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		return &object.String{Value: strings.ToLower(args[0])}, nil
	}},
	"UCASE": {params: []object.ObjectType{tStr}, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		r, err := singleRune("UCASE", args[0])
		if err != nil {
			return nil, err
		}
		return &object.String{Value: string(unicode.ToUpper(r))}, nil
	}},
	"LCASE": {params: []object.ObjectType{tStr}, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		r, err := singleRune("LCASE", args[0])
		if err != nil {
			return nil, err
		}
		return &object.String{Value: string(unicode.ToLower(r))}, nil
	}},
	"NUM_TO_STR": {params: []object.ObjectType{tReal}, dynamic: true, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		return &object.String{Value: args[0]}, nil
	}},
	"STR_TO_NUM": {params: []object.ObjectType{tStr}, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		if v, ok := parseNumber(args[0]); ok {
			return v, nil
		}
		return nil, object.NewError(object.InvalidArgument, "STR_TO_NUM: %q is not a number", args[0])
	}},
	"IS_NUM": {params: []object.ObjectType{tStr}, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		_, ok := parseNumber(args[0])
		return object.NativeBool(ok), nil
	}},
	"ASC": {params: []object.ObjectType{tStr}, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		r, err := singleRune("ASC", args[0])
		if err != nil {
			return nil, err
		}
		return &object.Integer{Value: int64(r)}, nil
	}},
	"CHR": {params: []object.ObjectType{tInt}, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		n := atoi(args[0])
		if n < 0 || n > 255 {
			return nil, object.NewError(object.InvalidArgument, "CHR: %d is out of range 0:255", n)
		}
		return &object.String{Value: string(rune(n))}, nil
	}},
	"INT": {params: []object.ObjectType{tReal}, dynamic: true, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		if v, err := strconv.ParseInt(args[0], 10, 64); err == nil {
			return &object.Integer{Value: v}, nil
		}
		f, err := strconv.ParseFloat(args[0], 64)
		if err != nil || math.IsNaN(f) || math.Abs(f) >= 1<<63 {
			return nil, object.NewError(object.InvalidArgument, "INT: %s is out of the INTEGER range", args[0])
		}
		return &object.Integer{Value: int64(f)}, nil
	}},
	"RAND": {params: []object.ObjectType{tInt}, fn: func(e *Evaluator, args []string) (object.Object, *object.Error) {
		n := atoi(args[0])
		if n < 1 {
			return nil, object.NewError(object.InvalidArgument, "RAND: upper bound %d must be at least 1", n)
		}
		return &object.Real{Value: e.rand() * float64(n)}, nil
	}},
	"DAY": {params: []object.ObjectType{tDate}, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		d, _, _, ok := ast.ParseDate(args[0])
		if !ok {
			return nil, object.NewError(object.InvalidArgument, "DAY: %s is not a calendar date", args[0])
		}
		return &object.Integer{Value: int64(d)}, nil
	}},
	"MONTH": {params: []object.ObjectType{tDate}, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		_, m, _, ok := ast.ParseDate(args[0])
		if !ok {
			return nil, object.NewError(object.InvalidArgument, "MONTH: %s is not a calendar date", args[0])
		}
		return &object.Integer{Value: int64(m)}, nil
	}},
	"YEAR": {params: []object.ObjectType{tDate}, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		_, _, y, ok := ast.ParseDate(args[0])
		if !ok {
			return nil, object.NewError(object.InvalidArgument, "YEAR: %s is not a calendar date", args[0])
		}
		return &object.Integer{Value: int64(y)}, nil
	}},
	"DAYINDEX": {params: []object.ObjectType{tDate}, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		d, m, y, _ := ast.ParseDate(args[0])
		date, ok := object.NewDate(d, m, y)
		if !ok {
			return nil, object.NewError(object.InvalidArgument, "DAYINDEX: %s is not a calendar date", args[0])
		}
		return &object.Integer{Value: int64(date.Value.Weekday()) + 1}, nil
	}},
	"SETDATE": {params: []object.ObjectType{tInt, tInt, tInt}, fn: func(_ *Evaluator, args []string) (object.Object, *object.Error) {
		d, m, y := atoi(args[0]), atoi(args[1]), atoi(args[2])
		date, ok := object.NewDate(int(d), int(m), int(y))
		if !ok {
			return nil, object.NewError(object.InvalidArgument, "SETDATE: %d-%d-%d is not a calendar date", d, m, y)
		}
		return date, nil
	}},
	"TODAY": {fn: func(e *Evaluator, _ []string) (object.Object, *object.Error) {
		now := e.now()
		date, _ := object.NewDate(now.Day(), int(now.Month()), now.Year())
		return date, nil
	}},
	"EOF": {params: []object.ObjectType{tStr}, fn: func(e *Evaluator, args []string) (object.Object, *object.Error) {
		eof, err := e.files.EOF(args[0])
		if err != nil {
			return nil, object.NewError(fileErrorKind(err), "%v", err)
		}
		return object.NativeBool(eof), nil
	}},
}

// callBuiltin checks the arguments of a library call against its table entry
// and invokes it.
func (e *Evaluator) callBuiltin(ctx context.Context, n *ast.CallExpr, b *builtin) object.Object {
	name := strings.ToUpper(n.Name)
	if len(n.Args) != len(b.params) {
		return e.newError(ctx, n.At, object.InvalidArgumentCount, "%s expects %d arguments, got %d", name, len(b.params), len(n.Args))
	}
	vals := make([]object.Object, len(n.Args))
	for i, x := range n.Args {
		v := e.evalExpr(ctx, x)
		if isError(v) {
			return v
		}
		want := b.params[i]
		if b.dynamic {
			switch v.Type() {
			case object.INTEGER_OBJ, object.REAL_OBJ:
				want = v.Type()
			}
		}
		if v.Type() != want {
			return e.newError(ctx, x.At, object.ParameterTypeMismatch, "argument %d of %s must be %s, got %s", i+1, name, want, object.Describe(v))
		}
		vals[i] = v
	}

	args := lo.Map(vals, func(v object.Object, _ int) string { return v.Inspect() })
	res, err := b.fn(e, args)
	if err != nil {
		return e.at(ctx, n.At, err)
	}
	return res
}

// atoi parses an argument already checked to be an INTEGER.
func atoi(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func singleRune(fn, s string) (rune, *object.Error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, object.NewError(object.InvalidArgument, "%s expects a single character, got %q", fn, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// parseNumber tries INTEGER, then REAL.
func parseNumber(s string) (object.Object, bool) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &object.Integer{Value: v}, true
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return &object.Real{Value: v}, true
	}
	return nil, false
}
