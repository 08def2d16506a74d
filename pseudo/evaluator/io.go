package evaluator

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Jax0312/pseudoengine-sub000/pseudo/ast"
	"github.com/Jax0312/pseudoengine-sub000/pseudo/object"
)

// storeText parses a line read by INPUT or from a file according to the
// declared type of r and stores it through the assignment path.
func (e *Evaluator) storeText(ctx context.Context, pos ast.Pos, r *ref, text string) object.Object {
	if r.typ == nil {
		return e.newError(ctx, pos, object.InvalidOperation, "cannot read into %s", r.name)
	}
	val, err := e.parseText(text, r.typ)
	if err != nil {
		return e.at(ctx, pos, err)
	}
	if err := e.assign(ctx, pos, r, val); err != nil {
		return err
	}
	return nil
}

// parseText converts text into a value of type t.
func (e *Evaluator) parseText(text string, t *object.VariableType) (object.Object, *object.Error) {
	switch t.Kind {
	case object.StringKind:
		return &object.String{Value: text}, nil
	case object.CharKind:
		if utf8.RuneCountInString(text) != 1 {
			return nil, object.NewError(object.InvalidInputValue, "input is not CHAR: %q", text)
		}
		return &object.String{Value: text}, nil
	case object.IntegerKind:
		v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, object.NewError(object.InvalidInputValue, "input is not INTEGER: %q", text)
		}
		return &object.Integer{Value: v}, nil
	case object.RealKind:
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, object.NewError(object.InvalidInputValue, "input is not REAL: %q", text)
		}
		return &object.Real{Value: v}, nil
	case object.BooleanKind:
		switch strings.ToUpper(strings.TrimSpace(text)) {
		case "TRUE":
			return object.TRUE, nil
		case "FALSE":
			return object.FALSE, nil
		}
		return nil, object.NewError(object.InvalidInputValue, "input is not BOOLEAN: %q", text)
	case object.DateKind:
		if d, m, y, ok := ast.ParseDate(text); ok {
			if date, ok := object.NewDate(d, m, y); ok {
				return date, nil
			}
		}
		return nil, object.NewError(object.InvalidInputValue, "input is not DATE: %q", text)
	case object.CustomKind:
		if m, ok := e.defs.EnumMember(strings.TrimSpace(text)); ok && m.TypeName == t.Name {
			return m, nil
		}
	}
	return nil, object.NewError(object.InvalidInputValue, "input is not %s: %q", t, text)
}
