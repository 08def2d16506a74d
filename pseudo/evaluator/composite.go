package evaluator

import (
	"context"

	"github.com/Jax0312/pseudoengine-sub000/pseudo/ast"
	"github.com/Jax0312/pseudoengine-sub000/pseudo/object"
)

// ref is a resolved storage location: a variable, an array element, an
// object field, or the temporary result of a call (which cannot be stored to).
type ref struct {
	name    string
	typ     *object.VariableType
	mutable bool
	load    func() object.Object
	store   func(object.Object)
}

func variableRef(name string, v *object.Variable) *ref {
	return &ref{name: name, typ: v.Type, mutable: v.Mutable, load: v.Value, store: v.Set}
}

func cellRef(name string, typ *object.VariableType, mutable bool, cell *object.Cell) *ref {
	return &ref{
		name:    name,
		typ:     typ,
		mutable: mutable,
		load:    func() object.Object { return cell.Value },
		store:   func(v object.Object) { cell.Value = v },
	}
}

func elementRef(name string, arr *object.Array, off int64, mutable bool) *ref {
	return &ref{
		name:    name,
		typ:     arr.Elem,
		mutable: mutable,
		load:    func() object.Object { return arr.Elements[off] },
		store:   func(v object.Object) { arr.Elements[off] = v },
	}
}

func valueRef(name string, val object.Object) *ref {
	return &ref{name: name, typ: object.TypeOf(val), load: func() object.Object { return val }}
}

// assign stores a copy of val through r after checking mutability and type.
func (e *Evaluator) assign(ctx context.Context, pos ast.Pos, r *ref, val object.Object) *object.Error {
	if r.store == nil {
		return e.newError(ctx, pos, object.InvalidOperation, "cannot assign to the result of %s", r.name)
	}
	if !r.mutable {
		return e.newError(ctx, pos, object.ImmutableAssignment, "cannot assign to constant %s", r.name)
	}
	if !object.Conforms(r.typ, val) {
		return e.newError(ctx, pos, object.TypeMismatch, "cannot assign %s to %s of type %s", object.Describe(val), r.name, r.typ)
	}
	r.store(object.Copy(val))
	return nil
}

// resolve turns a target item into a storage location: *ast.Ident,
// *ast.IndexExpr or *ast.ChainExpr.
func (e *Evaluator) resolve(ctx context.Context, item ast.Item) (*ref, *object.Error) {
	switch n := item.(type) {
	case *ast.Ident:
		v, err := e.env.Lookup(n.Name)
		if err != nil {
			return nil, e.at(ctx, n.At, err)
		}
		return variableRef(n.Name, v), nil
	case *ast.IndexExpr:
		v, err := e.env.Lookup(n.Name)
		if err != nil {
			return nil, e.at(ctx, n.At, err)
		}
		return e.index(ctx, n.At, variableRef(n.Name, v), n.Indices)
	case *ast.ChainExpr:
		return e.resolveChain(ctx, n, false)
	}
	return nil, e.newError(ctx, item.Pos(), object.InvalidOperation, "expression is not a storage location")
}

// index applies array indexing to the array stored at base.
func (e *Evaluator) index(ctx context.Context, pos ast.Pos, base *ref, exprs []*ast.Expr) (*ref, *object.Error) {
	arr, ok := base.load().(*object.Array)
	if !ok {
		return nil, e.newError(ctx, pos, object.TypeMismatch, "%s is not an array", base.name)
	}
	indices := make([]int64, len(exprs))
	for i, x := range exprs {
		v, err := e.evalInteger(ctx, x, "array index")
		if err != nil {
			return nil, err
		}
		indices[i] = v
	}
	off, err := Offset(arr.Shape, indices)
	if err != nil {
		return nil, e.at(ctx, pos, err)
	}
	return elementRef(base.name, arr, off, base.mutable), nil
}

// Offset maps indices onto the flat position of an array element. Dimensions
// are processed from last to first; the last index varies fastest.
func Offset(shape []object.Bound, indices []int64) (int64, *object.Error) {
	if len(indices) != len(shape) {
		return 0, object.NewError(object.MissingIndices, "array has %d dimensions, got %d indices", len(shape), len(indices))
	}
	var offset int64
	stride := int64(1)
	for d := len(shape) - 1; d >= 0; d-- {
		b, i := shape[d], indices[d]
		if i < b.Lower || i > b.Upper {
			return 0, object.NewError(object.IndexOutOfBounds, "index %d is out of range %d:%d", i, b.Lower, b.Upper)
		}
		offset += (i - b.Lower) * stride
		stride *= b.Len()
	}
	return offset, nil
}

// resolveChain walks a composite chain. With call set the last step must be a
// method call, which may be a procedure; otherwise every call must yield a value.
func (e *Evaluator) resolveChain(ctx context.Context, c *ast.ChainExpr, call bool) (*ref, *object.Error) {
	var cur *ref
	switch b := c.Base.(type) {
	case *ast.CallExpr:
		val := e.evalCall(ctx, b, true)
		if err, ok := val.(*object.Error); ok {
			return nil, err
		}
		cur = valueRef(b.Name, val)
	default:
		r, err := e.resolve(ctx, b)
		if err != nil {
			return nil, err
		}
		cur = r
	}

	for i, step := range c.Steps {
		last := i == len(c.Steps)-1
		inst, ok := cur.load().(*object.Instance)
		if !ok {
			return nil, e.newError(ctx, step.At, object.InvalidPropertyAccess, "%s is not an object, cannot access .%s", cur.name, step.Name)
		}

		if step.IsCall {
			val := e.callMethod(ctx, step.At, inst, cur.mutable, step.Name, step.Args, !(call && last))
			if err, ok := val.(*object.Error); ok {
				return nil, err
			}
			cur = valueRef(step.Name, val)
			continue
		}
		if call && last {
			return nil, e.newError(ctx, step.At, object.InvalidOperation, ".%s is not a method call", step.Name)
		}

		field, err := e.field(ctx, step.At, inst, step.Name)
		if err != nil {
			return nil, err
		}
		cur = cellRef(cur.name+"."+step.Name, field.Type, cur.mutable, inst.Fields[step.Name])
		if len(step.Indices) > 0 {
			if cur, err = e.index(ctx, step.At, cur, step.Indices); err != nil {
				return nil, err
			}
		}
	}
	return cur, nil
}

// members returns the property table of the class or record of inst.
func (e *Evaluator) members(inst *object.Instance) (*object.Members, *object.ClassDef) {
	def, _ := e.defs.Lookup(inst.TypeName)
	switch d := def.(type) {
	case *object.ClassDef:
		return &d.Members, d
	case *object.RecordDef:
		return &d.Members, nil
	}
	return nil, nil
}

// field finds a data property of inst that is accessible from here.
func (e *Evaluator) field(ctx context.Context, pos ast.Pos, inst *object.Instance, name string) (*object.VarProperty, *object.Error) {
	m, _ := e.members(inst)
	if m == nil {
		return nil, e.newError(ctx, pos, object.NotDeclared, "type %s is not declared", inst.TypeName)
	}
	vp, ok := m.Field(name)
	if !ok {
		return nil, e.newError(ctx, pos, object.InvalidPropertyAccess, "%s has no field %s", inst.TypeName, name)
	}
	if vp.Private && !e.inClass(inst.TypeName) {
		return nil, e.newError(ctx, pos, object.InvalidPropertyAccess, "field %s of %s is private", name, inst.TypeName)
	}
	return vp, nil
}

// callMethod invokes a method of inst by name. A receiver reached through a
// constant is bound read-only.
func (e *Evaluator) callMethod(ctx context.Context, pos ast.Pos, inst *object.Instance, mutable bool, name string, args []*ast.Expr, wantValue bool) object.Object {
	m, class := e.members(inst)
	if class == nil {
		return e.newError(ctx, pos, object.InvalidPropertyAccess, "%s has no methods", inst.TypeName)
	}
	mp, ok := m.Method(name)
	if !ok {
		return e.newError(ctx, pos, object.InvalidPropertyAccess, "%s has no method %s", inst.TypeName, name)
	}
	if mp.Private && !e.inClass(inst.TypeName) {
		return e.newError(ctx, pos, object.InvalidPropertyAccess, "method %s of %s is private", name, inst.TypeName)
	}
	if wantValue && !mp.IsFunction() {
		return e.newError(ctx, pos, object.InvalidOperation, "procedure %s.%s does not return a value", inst.TypeName, name)
	}
	return e.invoke(ctx, pos, &mp.Routine, args, &frame{name: inst.TypeName + "." + name, receiver: inst, class: class, readOnly: !mutable})
}

// construct evaluates NEW Class(args...).
func (e *Evaluator) construct(ctx context.Context, n *ast.NewExpr) object.Object {
	def, ok := e.defs.Lookup(n.Class)
	if !ok {
		return e.newError(ctx, n.At, object.NotDeclared, "class %s is not declared", n.Class)
	}
	class, ok := def.(*object.ClassDef)
	if !ok {
		if _, isRecord := def.(*object.RecordDef); isRecord {
			return e.newError(ctx, n.At, object.ConstructorMissing, "record %s has no constructor", n.Class)
		}
		return e.newError(ctx, n.At, object.TypeMismatch, "%s is a %s, not a class", n.Class, def.Kind())
	}
	ctor, ok := class.Constructor()
	if !ok {
		return e.newError(ctx, n.At, object.ConstructorMissing, "class %s has no NEW constructor", n.Class)
	}
	if ctor.Private {
		return e.newError(ctx, n.At, object.ConstructorPrivate, "constructor of %s is private", n.Class)
	}

	inst := class.Instantiate()
	res := e.invoke(ctx, n.At, &ctor.Routine, n.Args, &frame{name: n.Class + ".NEW", receiver: inst, class: class})
	if isError(res) {
		return res
	}
	return inst
}

// bindReceiver aliases every field of the receiver in the current scope so
// that the method body reads and writes the object's own cells.
func (e *Evaluator) bindReceiver(ctx context.Context, pos ast.Pos, f *frame) *object.Error {
	for _, name := range f.receiver.Order {
		vp, _ := f.class.Field(name)
		if err := e.env.Bind(name, f.receiver.Fields[name], vp.Type, !f.readOnly); err != nil {
			return e.at(ctx, pos, err)
		}
	}
	return nil
}
