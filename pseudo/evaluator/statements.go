package evaluator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/Jax0312/pseudoengine-sub000/pseudo/ast"
	"github.com/Jax0312/pseudoengine-sub000/pseudo/object"
	"github.com/Jax0312/pseudoengine-sub000/pseudo/xfile"
)

// execBlock runs statements in order. It stops at the first error or RETURN
// and hands that object back to the caller.
func (e *Evaluator) execBlock(ctx context.Context, stmts []ast.Stmt) object.Object {
	for _, s := range stmts {
		if err := ctx.Err(); err != nil {
			return e.newError(ctx, s.Pos(), object.InternalError, "execution cancelled: %v", err)
		}
		res := e.exec(ctx, s)
		if res != nil {
			switch res.Type() {
			case object.ERROR_OBJ, object.RETURN_VALUE_OBJ:
				return res
			}
		}
	}
	return nil
}

func (e *Evaluator) exec(ctx context.Context, stmt ast.Stmt) object.Object {
	switch s := stmt.(type) {
	case *ast.DeclareStmt:
		return e.execDeclare(ctx, s)
	case *ast.ConstantStmt:
		return e.execConstant(ctx, s)
	case *ast.AssignStmt:
		val := e.evalExpr(ctx, s.Value)
		if isError(val) {
			return val
		}
		r, err := e.resolve(ctx, s.Target)
		if err != nil {
			return err
		}
		if err := e.assign(ctx, s.At, r, val); err != nil {
			return err
		}
		return nil
	case *ast.IfStmt:
		cond, err := e.evalBool(ctx, s.Cond, "IF condition")
		if err != nil {
			return err
		}
		if cond {
			return e.execBlock(ctx, s.Then)
		}
		return e.execBlock(ctx, s.Else)
	case *ast.WhileStmt:
		return e.execWhile(ctx, s)
	case *ast.RepeatStmt:
		return e.execRepeat(ctx, s)
	case *ast.ForStmt:
		return e.execFor(ctx, s)
	case *ast.SwitchStmt:
		return e.execSwitch(ctx, s)
	case *ast.OutputStmt:
		return e.execOutput(ctx, s)
	case *ast.InputStmt:
		r, err := e.resolve(ctx, s.Target)
		if err != nil {
			return err
		}
		line, rerr := e.input.ReadLine()
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return e.newError(ctx, s.At, object.InvalidInputValue, "no more input for %s", r.name)
			}
			return e.newError(ctx, s.At, object.FileIOError, "reading input: %v", rerr)
		}
		return e.storeText(ctx, s.At, r, line)
	case *ast.RoutineDecl:
		return e.execRoutineDecl(ctx, s)
	case *ast.ClassDecl:
		return e.execClassDecl(ctx, s)
	case *ast.RecordDecl:
		return e.execRecordDecl(ctx, s)
	case *ast.TypeDecl:
		if len(s.Values) == 0 {
			return e.newError(ctx, s.At, object.InvalidOperation, "type %s has no values", s.Name)
		}
		return e.define(ctx, s.At, object.NewEnumDef(s.Name, s.Values))
	case *ast.CallStmt:
		return e.execCallStmt(ctx, s)
	case *ast.ReturnStmt:
		if len(e.frames) == 0 {
			return e.newError(ctx, s.At, object.InvalidOperation, "RETURN outside of a function or procedure")
		}
		if s.Value == nil {
			return &object.ReturnValue{Value: object.NULL}
		}
		val := e.evalExpr(ctx, s.Value)
		if isError(val) {
			return val
		}
		return &object.ReturnValue{Value: val}
	case *ast.OpenFileStmt, *ast.CloseFileStmt, *ast.ReadFileStmt, *ast.WriteFileStmt,
		*ast.SeekStmt, *ast.GetRecordStmt, *ast.PutRecordStmt:
		return e.execFile(ctx, stmt)
	}
	return e.newError(ctx, stmt.Pos(), object.InternalError, "unexpected statement %T", stmt)
}

// resolveType converts a type expression. Custom names are checked when a
// value of the type is built, so routines may mention types declared later.
func (e *Evaluator) resolveType(t *ast.TypeExpr) *object.VariableType {
	if t.IsArray() {
		elem := e.resolveType(t.Of)
		for i := len(t.Bounds) - 1; i >= 0; i-- {
			elem = object.ArrayOf(elem, t.Bounds[i].Lower, t.Bounds[i].Upper)
		}
		return elem
	}
	if p, ok := object.PrimitiveType(strings.ToUpper(t.Name)); ok {
		return p
	}
	return object.CustomType(t.Name)
}

func (e *Evaluator) execDeclare(ctx context.Context, s *ast.DeclareStmt) object.Object {
	typ := e.resolveType(s.Type)
	for _, name := range s.Names {
		val, err := object.DefaultValue(typ, e.defs)
		if err != nil {
			return e.at(ctx, s.At, err)
		}
		if err := e.env.Declare(name, val, typ, true); err != nil {
			return e.at(ctx, s.At, err)
		}
	}
	return nil
}

func (e *Evaluator) execConstant(ctx context.Context, s *ast.ConstantStmt) object.Object {
	val := e.evalExpr(ctx, s.Value)
	if isError(val) {
		return val
	}
	typ := object.TypeOf(val)
	if typ == nil {
		return e.newError(ctx, s.At, object.TypeMismatch, "constant %s has no value", s.Name)
	}
	if err := e.env.Declare(s.Name, object.Copy(val), typ, false); err != nil {
		return e.at(ctx, s.At, err)
	}
	return nil
}

func (e *Evaluator) execWhile(ctx context.Context, s *ast.WhileStmt) object.Object {
	for {
		cond, err := e.evalBool(ctx, s.Cond, "WHILE condition")
		if err != nil {
			return err
		}
		if !cond {
			return nil
		}
		if res := e.execBlock(ctx, s.Body); res != nil {
			return res
		}
	}
}

func (e *Evaluator) execRepeat(ctx context.Context, s *ast.RepeatStmt) object.Object {
	for {
		if res := e.execBlock(ctx, s.Body); res != nil {
			return res
		}
		done, err := e.evalBool(ctx, s.Until, "UNTIL condition")
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// execFor runs a counted loop. The loop variable is reused when the current
// scope already declares it as an INTEGER and is left declared afterwards.
func (e *Evaluator) execFor(ctx context.Context, s *ast.ForStmt) object.Object {
	start, err := e.evalInteger(ctx, s.Start, "FOR start")
	if err != nil {
		return err
	}
	end, err := e.evalInteger(ctx, s.End, "FOR end")
	if err != nil {
		return err
	}
	step := int64(1)
	if s.Step != nil {
		if step, err = e.evalInteger(ctx, s.Step, "FOR step"); err != nil {
			return err
		}
	}
	if step == 0 {
		return e.newError(ctx, s.At, object.InvalidOperation, "FOR step cannot be zero")
	}

	v, ok := e.env.DeclaredHere(s.Var)
	if ok {
		if !v.Mutable || !v.Type.Equal(object.IntegerType) {
			return e.newError(ctx, s.At, object.TypeMismatch, "loop variable %s must be a mutable INTEGER", s.Var)
		}
	} else {
		if err := e.env.Declare(s.Var, &object.Integer{Value: start}, object.IntegerType, true); err != nil {
			return e.at(ctx, s.At, err)
		}
		v, _ = e.env.DeclaredHere(s.Var)
	}

	for i := start; (step > 0 && i <= end) || (step < 0 && i >= end); i += step {
		v.Set(&object.Integer{Value: i})
		if res := e.execBlock(ctx, s.Body); res != nil {
			return res
		}
		// the distance to end is exact in uint64; stop before i+step overflows
		if step > 0 && uint64(end)-uint64(i) < uint64(step) {
			break
		}
		if step < 0 && uint64(i)-uint64(end) < uint64(-step) {
			break
		}
	}
	return nil
}

func (e *Evaluator) execSwitch(ctx context.Context, s *ast.SwitchStmt) object.Object {
	subject := e.evalExpr(ctx, s.Subject)
	if isError(subject) {
		return subject
	}
	for _, c := range s.Cases {
		val := e.evalExpr(ctx, c.Value)
		if isError(val) {
			return val
		}
		eq := e.equals(ctx, c.At, subject, val)
		if isError(eq) {
			return eq
		}
		if eq == object.TRUE {
			return e.execBlock(ctx, c.Body)
		}
	}
	return e.execBlock(ctx, s.Otherwise)
}

func (e *Evaluator) execOutput(ctx context.Context, s *ast.OutputStmt) object.Object {
	var b strings.Builder
	for _, x := range s.Values {
		val := e.evalExpr(ctx, x)
		if isError(val) {
			return val
		}
		b.WriteString(val.Inspect())
	}
	b.WriteString("\n")
	if _, err := io.WriteString(e.stdout, b.String()); err != nil {
		return e.newError(ctx, s.At, object.FileIOError, "writing output: %v", err)
	}
	return nil
}

func (e *Evaluator) execCallStmt(ctx context.Context, s *ast.CallStmt) object.Object {
	switch c := s.Call.(type) {
	case *ast.CallExpr:
		res := e.evalCall(ctx, c, false)
		if isError(res) {
			return res
		}
	case *ast.ChainExpr:
		if _, err := e.resolveChain(ctx, c, true); err != nil {
			return err
		}
	default:
		return e.newError(ctx, s.At, object.InternalError, "unexpected call target %T", s.Call)
	}
	return nil
}

// --- Definitions ---

func (e *Evaluator) define(ctx context.Context, pos ast.Pos, def object.Definition) object.Object {
	if err := e.defs.Define(def); err != nil {
		return e.at(ctx, pos, err)
	}
	e.logc(ctx, slog.LevelDebug, "define", "kind", def.Kind(), "name", def.DefinitionName())
	return nil
}

func (e *Evaluator) routine(d *ast.RoutineDecl) object.Routine {
	r := object.Routine{Name: d.Name, Body: d.Body, Pos: d.At}
	for _, p := range d.Params {
		r.Params = append(r.Params, &object.Param{Name: p.Name, Type: e.resolveType(p.Type), ByRef: p.ByRef})
	}
	if d.Returns != nil {
		r.Returns = e.resolveType(d.Returns)
	}
	return r
}

func (e *Evaluator) execRoutineDecl(ctx context.Context, d *ast.RoutineDecl) object.Object {
	if d.IsFunction() {
		return e.define(ctx, d.At, &object.FunctionDef{Routine: e.routine(d)})
	}
	return e.define(ctx, d.At, &object.ProcedureDef{Routine: e.routine(d)})
}

// addFields builds the default value of every declared field.
func (e *Evaluator) addFields(ctx context.Context, m *object.Members, fields []*ast.FieldDecl) *object.Error {
	for _, f := range fields {
		typ := e.resolveType(f.Type)
		for _, name := range f.Names {
			val, err := object.DefaultValue(typ, e.defs)
			if err != nil {
				return e.at(ctx, f.At, err)
			}
			if err := m.Add(&object.VarProperty{Name: name, Type: typ, Value: val, Private: f.Private}); err != nil {
				return e.at(ctx, f.At, err)
			}
		}
	}
	return nil
}

func (e *Evaluator) execClassDecl(ctx context.Context, d *ast.ClassDecl) object.Object {
	class := &object.ClassDef{Name: d.Name}
	if err := e.addFields(ctx, &class.Members, d.Fields); err != nil {
		return err
	}
	for _, md := range d.Methods {
		if err := class.Add(&object.MethodProperty{Routine: e.routine(md), Private: md.Private}); err != nil {
			return e.at(ctx, md.At, err)
		}
	}
	return e.define(ctx, d.At, class)
}

func (e *Evaluator) execRecordDecl(ctx context.Context, d *ast.RecordDecl) object.Object {
	record := &object.RecordDef{Name: d.Name}
	if err := e.addFields(ctx, &record.Members, d.Fields); err != nil {
		return err
	}
	return e.define(ctx, d.At, record)
}

// --- Files ---

func (e *Evaluator) execFile(ctx context.Context, stmt ast.Stmt) object.Object {
	switch s := stmt.(type) {
	case *ast.OpenFileStmt:
		name, err := e.evalString(ctx, s.File, "file name")
		if err != nil {
			return err
		}
		mode, perr := xfile.ParseMode(s.Mode)
		if perr != nil {
			return e.newError(ctx, s.At, object.InvalidArgument, "%v", perr)
		}
		return e.fileError(ctx, s.At, e.files.Open(name, mode))

	case *ast.CloseFileStmt:
		name, err := e.evalString(ctx, s.File, "file name")
		if err != nil {
			return err
		}
		return e.fileError(ctx, s.At, e.files.Close(name))

	case *ast.ReadFileStmt:
		name, err := e.evalString(ctx, s.File, "file name")
		if err != nil {
			return err
		}
		r, err := e.resolve(ctx, s.Target)
		if err != nil {
			return err
		}
		line, ferr := e.files.ReadLine(name)
		if ferr != nil {
			return e.fileError(ctx, s.At, ferr)
		}
		return e.storeText(ctx, s.At, r, line)

	case *ast.WriteFileStmt:
		name, err := e.evalString(ctx, s.File, "file name")
		if err != nil {
			return err
		}
		val := e.evalExpr(ctx, s.Value)
		if isError(val) {
			return val
		}
		return e.fileError(ctx, s.At, e.files.WriteLine(name, val.Inspect()))

	case *ast.SeekStmt:
		name, err := e.evalString(ctx, s.File, "file name")
		if err != nil {
			return err
		}
		addr, err := e.evalInteger(ctx, s.Address, "record address")
		if err != nil {
			return err
		}
		return e.fileError(ctx, s.At, e.files.Seek(name, addr))

	case *ast.GetRecordStmt:
		name, err := e.evalString(ctx, s.File, "file name")
		if err != nil {
			return err
		}
		r, err := e.resolve(ctx, s.Target)
		if err != nil {
			return err
		}
		text, ferr := e.files.GetRecord(name)
		if ferr != nil {
			return e.fileError(ctx, s.At, ferr)
		}
		return e.storeText(ctx, s.At, r, text)

	case *ast.PutRecordStmt:
		name, err := e.evalString(ctx, s.File, "file name")
		if err != nil {
			return err
		}
		val := e.evalExpr(ctx, s.Value)
		if isError(val) {
			return val
		}
		return e.fileError(ctx, s.At, e.files.PutRecord(name, val.Inspect()))
	}
	return e.newError(ctx, stmt.Pos(), object.InternalError, "unexpected file statement %T", stmt)
}

// fileError maps a file manager failure onto a runtime error. A nil error
// yields nil.
func (e *Evaluator) fileError(ctx context.Context, pos ast.Pos, err error) object.Object {
	if err == nil {
		return nil
	}
	return e.newError(ctx, pos, fileErrorKind(err), "%v", err)
}

func fileErrorKind(err error) object.ErrorKind {
	switch {
	case errors.Is(err, xfile.ErrAlreadyOpen):
		return object.FileAlreadyOpen
	case errors.Is(err, xfile.ErrNotOpen):
		return object.FileNotOpen
	case errors.Is(err, xfile.ErrModeMismatch):
		return object.FileModeMismatch
	case errors.Is(err, xfile.ErrEndOfFile):
		return object.InvalidOperation
	}
	return object.FileIOError
}
