package evaluator

import (
	"context"
	"strings"

	"github.com/Jax0312/pseudoengine-sub000/pseudo/ast"
	"github.com/Jax0312/pseudoengine-sub000/pseudo/object"
)

// evalCall resolves a direct call: a method of the current receiver, then a
// user definition, then a builtin. With wantValue the callee must be a function.
func (e *Evaluator) evalCall(ctx context.Context, n *ast.CallExpr, wantValue bool) object.Object {
	if f := e.currentFrame(); f != nil && f.class != nil {
		if _, ok := f.class.Method(n.Name); ok {
			return e.callMethod(ctx, n.At, f.receiver, !f.readOnly, n.Name, n.Args, wantValue)
		}
	}

	if def, ok := e.defs.Lookup(n.Name); ok {
		switch d := def.(type) {
		case *object.FunctionDef:
			return e.invoke(ctx, n.At, &d.Routine, n.Args, &frame{name: d.Name})
		case *object.ProcedureDef:
			if wantValue {
				return e.newError(ctx, n.At, object.InvalidOperation, "procedure %s does not return a value", d.Name)
			}
			return e.invoke(ctx, n.At, &d.Routine, n.Args, &frame{name: d.Name})
		default:
			return e.newError(ctx, n.At, object.InvalidOperation, "%s is a %s and cannot be called", n.Name, def.Kind())
		}
	}

	if b, ok := builtins[strings.ToUpper(n.Name)]; ok {
		return e.callBuiltin(ctx, n, b)
	}
	return e.newError(ctx, n.At, object.NotDeclared, "%s is not declared", n.Name)
}

// argument is an evaluated actual parameter: a value, or the variable a
// BYREF parameter aliases.
type argument struct {
	value object.Object
	ref   *object.Variable
}

// invoke calls a routine. Arguments are evaluated in the caller's scope;
// by-value arguments are copied into the new scope and BYREF arguments are
// bound as aliases of the caller's variables.
func (e *Evaluator) invoke(ctx context.Context, pos ast.Pos, r *object.Routine, args []*ast.Expr, f *frame) object.Object {
	if len(args) != len(r.Params) {
		return e.newError(ctx, pos, object.InvalidArgumentCount, "%s expects %d arguments, got %d", f.name, len(r.Params), len(args))
	}

	actuals := make([]argument, len(args))
	for i, p := range r.Params {
		if p.ByRef {
			v, err := e.byRefArgument(ctx, f.name, i, p, args[i])
			if err != nil {
				return err
			}
			actuals[i] = argument{ref: v}
			continue
		}
		val := e.evalExpr(ctx, args[i])
		if isError(val) {
			return val
		}
		if !object.Conforms(p.Type, val) {
			return e.newError(ctx, args[i].At, object.ParameterTypeMismatch, "argument %d (%s) of %s must be %s, got %s", i+1, p.Name, f.name, p.Type, object.Describe(val))
		}
		actuals[i] = argument{value: val}
	}

	if err := e.pushFrame(ctx, pos, f); err != nil {
		return err
	}
	defer e.popFrame(ctx)

	if f.receiver != nil {
		if err := e.bindReceiver(ctx, pos, f); err != nil {
			return err
		}
	}
	for i, p := range r.Params {
		var err *object.Error
		if a := actuals[i]; a.ref != nil {
			err = e.env.Bind(p.Name, a.ref.Cell(), p.Type, true)
		} else {
			err = e.env.Declare(p.Name, object.Copy(a.value), p.Type, true)
		}
		if err != nil {
			return e.at(ctx, args[i].At, err)
		}
	}

	res := e.execBlock(ctx, r.Body)
	if isError(res) {
		return res
	}
	rv, returned := res.(*object.ReturnValue)

	if !r.IsFunction() {
		if returned && rv.Value != object.NULL {
			return e.newError(ctx, r.Pos, object.InvalidOperation, "procedure %s cannot return a value", f.name)
		}
		return object.NULL
	}
	if !returned || rv.Value == object.NULL {
		return e.newError(ctx, r.Pos, object.MissingReturn, "function %s ended without returning a value", f.name)
	}
	if !object.Conforms(r.Returns, rv.Value) {
		return e.newError(ctx, r.Pos, object.TypeMismatch, "function %s must return %s, got %s", f.name, r.Returns, object.Describe(rv.Value))
	}
	return object.Copy(rv.Value)
}

// byRefArgument resolves the caller's variable for a BYREF parameter. Only a
// plain, mutable variable of exactly the parameter's type can be passed.
func (e *Evaluator) byRefArgument(ctx context.Context, fn string, i int, p *object.Param, arg *ast.Expr) (*object.Variable, *object.Error) {
	var id *ast.Ident
	if len(arg.Items) == 1 {
		id, _ = arg.Items[0].(*ast.Ident)
	}
	if id == nil {
		return nil, e.newError(ctx, arg.At, object.ParameterTypeMismatch, "argument %d (%s) of %s is BYREF and must be a variable", i+1, p.Name, fn)
	}
	v, err := e.env.Lookup(id.Name)
	if err != nil {
		return nil, e.at(ctx, id.At, err)
	}
	if !v.Mutable {
		return nil, e.newError(ctx, id.At, object.ImmutableAssignment, "constant %s cannot be passed BYREF", id.Name)
	}
	if !v.Type.Equal(p.Type) {
		return nil, e.newError(ctx, id.At, object.ParameterTypeMismatch, "argument %d (%s) of %s must be %s, got %s", i+1, p.Name, fn, p.Type, v.Type)
	}
	return v, nil
}
