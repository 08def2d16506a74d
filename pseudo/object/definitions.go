package object

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/Jax0312/pseudoengine-sub000/pseudo/ast"
)

// Definition is a globally registered named entity.
type Definition interface {
	DefinitionName() string
	// Kind is the keyword used in messages: FUNCTION, PROCEDURE, CLASS, RECORD, TYPE.
	Kind() string
}

// Param is a formal parameter of a routine.
type Param struct {
	Name  string
	Type  *VariableType
	ByRef bool
}

// Routine is the callable part shared by functions, procedures and methods.
// Returns is nil for procedures.
type Routine struct {
	Name    string
	Params  []*Param
	Returns *VariableType
	Body    []ast.Stmt
	Pos     ast.Pos
}

// IsFunction reports whether the routine must produce a value.
func (r *Routine) IsFunction() bool { return r.Returns != nil }

// FunctionDef is a free function.
type FunctionDef struct {
	Routine
}

// ProcedureDef is a free procedure.
type ProcedureDef struct {
	Routine
}

func (d *FunctionDef) DefinitionName() string  { return d.Name }
func (d *FunctionDef) Kind() string            { return "FUNCTION" }
func (d *ProcedureDef) DefinitionName() string { return d.Name }
func (d *ProcedureDef) Kind() string           { return "PROCEDURE" }

// --- Properties ---

// Property is a member of a class or record.
type Property interface {
	PropertyName() string
	IsPrivate() bool
}

// VarProperty is a data field; Value holds the default for new instances.
type VarProperty struct {
	Name    string
	Type    *VariableType
	Value   Object
	Private bool
}

// MethodProperty is a procedure or function member of a class.
type MethodProperty struct {
	Routine
	Private bool
}

func (p *VarProperty) PropertyName() string    { return p.Name }
func (p *VarProperty) IsPrivate() bool         { return p.Private }
func (p *MethodProperty) PropertyName() string { return p.Name }
func (p *MethodProperty) IsPrivate() bool      { return p.Private }

// Members holds the properties of a class or record in declaration order.
type Members struct {
	Order      []string
	Properties map[string]Property
}

// Add registers a property; it fails if the name is already taken.
func (m *Members) Add(p Property) *Error {
	if m.Properties == nil {
		m.Properties = make(map[string]Property)
	}
	if _, ok := m.Properties[p.PropertyName()]; ok {
		return NewError(AlreadyDeclared, "property %s is already declared", p.PropertyName())
	}
	m.Properties[p.PropertyName()] = p
	m.Order = append(m.Order, p.PropertyName())
	return nil
}

// Method finds a method property by name.
func (m *Members) Method(name string) (*MethodProperty, bool) {
	mp, ok := m.Properties[name].(*MethodProperty)
	return mp, ok
}

// Field finds a data property by name.
func (m *Members) Field(name string) (*VarProperty, bool) {
	vp, ok := m.Properties[name].(*VarProperty)
	return vp, ok
}

// Constructor returns the NEW procedure of a class; the keyword is matched
// case-insensitively.
func (m *Members) Constructor() (*MethodProperty, bool) {
	for _, name := range m.Order {
		if strings.EqualFold(name, "new") {
			return m.Method(name)
		}
	}
	return nil, false
}

// instantiate builds an instance whose fields hold copies of the defaults.
func (m *Members) instantiate(typeName string) *Instance {
	inst := &Instance{TypeName: typeName, Fields: make(map[string]*Cell)}
	for _, name := range m.Order {
		if vp, ok := m.Field(name); ok {
			inst.Order = append(inst.Order, name)
			inst.Fields[name] = &Cell{Value: Copy(vp.Value)}
		}
	}
	return inst
}

// ClassDef is a class: fields plus methods.
type ClassDef struct {
	Name string
	Members
}

// RecordDef is a record: public fields only.
type RecordDef struct {
	Name string
	Members
}

func (d *ClassDef) DefinitionName() string  { return d.Name }
func (d *ClassDef) Kind() string            { return "CLASS" }
func (d *RecordDef) DefinitionName() string { return d.Name }
func (d *RecordDef) Kind() string           { return "RECORD" }

// Instantiate builds a fresh instance with default field values.
func (d *ClassDef) Instantiate() *Instance { return d.instantiate(d.Name) }

// Instantiate builds a fresh instance with default field values.
func (d *RecordDef) Instantiate() *Instance { return d.instantiate(d.Name) }

// EnumDef is an enumeration type.
type EnumDef struct {
	Name    string
	Members []*EnumValue
}

func (d *EnumDef) DefinitionName() string { return d.Name }
func (d *EnumDef) Kind() string           { return "TYPE" }

// NewEnumDef creates an enumeration with members in declaration order.
func NewEnumDef(name string, values []string) *EnumDef {
	d := &EnumDef{Name: name}
	for i, v := range values {
		d.Members = append(d.Members, &EnumValue{TypeName: name, Name: v, Ordinal: i})
	}
	return d
}

// --- Definitions ---

// Definitions is the global table of functions, procedures, classes,
// records and enumerations. A name is defined at most once.
type Definitions struct {
	table       map[string]Definition
	enumMembers map[string]*EnumValue
}

// NewDefinitions creates an empty table.
func NewDefinitions() *Definitions {
	return &Definitions{
		table:       make(map[string]Definition),
		enumMembers: make(map[string]*EnumValue),
	}
}

// Define registers a definition; redefinition of a name fails.
func (d *Definitions) Define(def Definition) *Error {
	name := def.DefinitionName()
	if prev, ok := d.table[name]; ok {
		return NewError(AlreadyDeclared, "%s is already declared as a %s", name, prev.Kind())
	}
	if enum, ok := def.(*EnumDef); ok {
		for _, m := range enum.Members {
			if prev, ok := d.enumMembers[m.Name]; ok {
				return NewError(AlreadyDeclared, "%s is already a member of %s", m.Name, prev.TypeName)
			}
		}
		for _, m := range enum.Members {
			d.enumMembers[m.Name] = m
		}
	}
	d.table[name] = def
	return nil
}

// Lookup finds a definition by name.
func (d *Definitions) Lookup(name string) (Definition, bool) {
	def, ok := d.table[name]
	return def, ok
}

// EnumMember finds an enumeration member by its bare name.
func (d *Definitions) EnumMember(name string) (*EnumValue, bool) {
	v, ok := d.enumMembers[name]
	return v, ok
}

// Names returns every defined name, sorted.
func (d *Definitions) Names() []string {
	names := lo.Keys(d.table)
	sort.Strings(names)
	return names
}
