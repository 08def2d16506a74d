package object

// Variable is a named binding in a scope.
// An alias binding shares the cell of another binding instead of owning one.
type Variable struct {
	cell    *Cell
	Type    *VariableType
	Mutable bool
	Alias   bool
}

// Value returns the value currently stored in the variable's cell.
func (v *Variable) Value() Object { return v.cell.Value }

// Cell returns the variable's storage cell.
func (v *Variable) Cell() *Cell { return v.cell }

// Scope owns the variables declared in one frame.
type Scope struct {
	vars   map[string]*Variable
	global bool
}

func newScope(global bool) *Scope {
	return &Scope{vars: make(map[string]*Variable), global: global}
}

// Environment is the scope stack: one global scope at the bottom and one
// local scope per call in progress.
type Environment struct {
	scopes   []*Scope
	isolated bool
}

// NewEnvironment creates an environment holding only the global scope.
func NewEnvironment() *Environment {
	return &Environment{scopes: []*Scope{newScope(true)}}
}

// SetIsolated switches lookup between searching every scope on the stack
// (false, the default) and searching only the innermost scope and the
// global scope (true).
func (e *Environment) SetIsolated(isolated bool) {
	e.isolated = isolated
}

// Depth returns the number of scopes on the stack, the global one included.
func (e *Environment) Depth() int { return len(e.scopes) }

func (e *Environment) current() *Scope { return e.scopes[len(e.scopes)-1] }

// EnterScope pushes a fresh local scope.
func (e *Environment) EnterScope() {
	e.scopes = append(e.scopes, newScope(false))
}

// ExitScope pops the innermost local scope. The global scope is never popped.
func (e *Environment) ExitScope() {
	if len(e.scopes) == 1 {
		return
	}
	e.scopes[len(e.scopes)-1] = nil
	e.scopes = e.scopes[:len(e.scopes)-1]
}

// Declare creates a variable in the current scope with its own cell.
func (e *Environment) Declare(name string, val Object, typ *VariableType, mutable bool) *Error {
	return e.bind(name, &Variable{cell: &Cell{Value: val}, Type: typ, Mutable: mutable})
}

// Bind creates an alias in the current scope: the new name refers to an
// existing cell, so writes through either name are seen through both.
func (e *Environment) Bind(name string, cell *Cell, typ *VariableType, mutable bool) *Error {
	return e.bind(name, &Variable{cell: cell, Type: typ, Mutable: mutable, Alias: true})
}

func (e *Environment) bind(name string, v *Variable) *Error {
	scope := e.current()
	if _, ok := scope.vars[name]; ok {
		return NewError(AlreadyDeclared, "%s is already declared in this scope", name)
	}
	scope.vars[name] = v
	return nil
}

// DeclaredHere reports whether name is declared in the current scope.
func (e *Environment) DeclaredHere(name string) (*Variable, bool) {
	v, ok := e.current().vars[name]
	return v, ok
}

// Lookup finds the nearest visible binding of name.
func (e *Environment) Lookup(name string) (*Variable, *Error) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		scope := e.scopes[i]
		if e.isolated && i != len(e.scopes)-1 && !scope.global {
			continue
		}
		if v, ok := scope.vars[name]; ok {
			return v, nil
		}
	}
	return nil, NewError(NotDeclared, "%s is not declared", name)
}

// Has reports whether name is visible from the current scope.
func (e *Environment) Has(name string) bool {
	_, err := e.Lookup(name)
	return err == nil
}

// LookupMut is Lookup for a binding that is about to be written.
func (e *Environment) LookupMut(name string) (*Variable, *Error) {
	v, err := e.Lookup(name)
	if err != nil {
		return nil, err
	}
	if !v.Mutable {
		return nil, NewError(ImmutableAssignment, "cannot assign to constant %s", name)
	}
	return v, nil
}

// Assign stores val into the variable name. The value's runtime type must
// equal the declared type exactly.
func (e *Environment) Assign(name string, val Object) *Error {
	v, err := e.LookupMut(name)
	if err != nil {
		return err
	}
	if !Conforms(v.Type, val) {
		return NewError(TypeMismatch, "cannot assign %s to %s of type %s", Describe(val), name, v.Type)
	}
	v.cell.Value = Copy(val)
	return nil
}

// Set overwrites the variable's cell without any checks.
func (v *Variable) Set(val Object) { v.cell.Value = val }

// Describe names the runtime type of a value for error messages.
func Describe(obj Object) string {
	if t := TypeOf(obj); t != nil {
		return t.String()
	}
	return string(obj.Type())
}
