package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ObjectType is a string representation of an object's type.
type ObjectType string

const (
	INTEGER_OBJ      ObjectType = "INTEGER"
	REAL_OBJ         ObjectType = "REAL"
	BOOLEAN_OBJ      ObjectType = "BOOLEAN"
	STRING_OBJ       ObjectType = "STRING"
	DATE_OBJ         ObjectType = "DATE"
	ARRAY_OBJ        ObjectType = "ARRAY"
	INSTANCE_OBJ     ObjectType = "OBJECT"
	ENUM_OBJ         ObjectType = "ENUM"
	NULL_OBJ         ObjectType = "NULL"
	RETURN_VALUE_OBJ ObjectType = "RETURN_VALUE"
	ERROR_OBJ        ObjectType = "ERROR"
)

// Object is the interface that all runtime values implement.
type Object interface {
	// Type returns the type of the object.
	Type() ObjectType
	// Inspect returns the textual form of the value, as OUTPUT prints it.
	Inspect() string
}

// --- Integer Object ---

// Integer represents an INTEGER value.
type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

// --- Real Object ---

// Real represents a REAL value.
type Real struct {
	Value float64
}

func (r *Real) Type() ObjectType { return REAL_OBJ }
func (r *Real) Inspect() string  { return FormatReal(r.Value) }

// FormatReal renders a float in its shortest natural form (3.5, 3, 0.1).
func FormatReal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// --- Boolean Object ---

// Boolean represents a BOOLEAN value. Use TRUE and FALSE.
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }

func (b *Boolean) Inspect() string {
	if b.Value {
		return "TRUE"
	}
	return "FALSE"
}

// --- String Object ---

// String represents a STRING (or CHAR) value.
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// --- Date Object ---

// Date represents a calendar date. Only the year, month and day are meaningful.
type Date struct {
	Value time.Time
}

// NewDate returns the date for the given fields, or false if they do not
// name a real calendar day in the years 1 to 9999.
func NewDate(day, month, year int) (*Date, bool) {
	if year < 1 || year > 9999 {
		return nil, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return nil, false
	}
	return &Date{Value: t}, true
}

func (d *Date) Type() ObjectType { return DATE_OBJ }
func (d *Date) Inspect() string  { return d.Value.Format("02-01-2006") }

// --- Array Object ---

// Array is a (possibly multi-dimensional) array stored as a flat slice.
// Shape holds one inclusive bound per dimension in declaration order.
type Array struct {
	Elem     *VariableType
	Shape    []Bound
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }

func (a *Array) Inspect() string {
	parts := make([]string, len(a.Elements))
	for i, el := range a.Elements {
		parts[i] = el.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// --- Instance Object ---

// Instance is an object of a class or a record. Every field lives in its own
// cell so that a method scope can alias it.
type Instance struct {
	TypeName string
	Order    []string
	Fields   map[string]*Cell
}

func (o *Instance) Type() ObjectType { return INSTANCE_OBJ }

func (o *Instance) Inspect() string {
	var out bytes.Buffer
	out.WriteString(o.TypeName)
	out.WriteString("{")
	for i, name := range o.Order {
		if i > 0 {
			out.WriteString(", ")
		}
		fmt.Fprintf(&out, "%s: %s", name, o.Fields[name].Value.Inspect())
	}
	out.WriteString("}")
	return out.String()
}

// --- EnumValue Object ---

// EnumValue is a member of a user-declared enumeration.
type EnumValue struct {
	TypeName string
	Name     string
	Ordinal  int
}

func (e *EnumValue) Type() ObjectType { return ENUM_OBJ }
func (e *EnumValue) Inspect() string  { return e.Name }

// --- Null Object ---

// Null is the uninitialized filler. Declared variables never keep it.
type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "NULL" }

// --- Return Value Object ---

// ReturnValue wraps the value produced by a RETURN statement so that it can
// unwind the enclosing statement lists.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// --- Cell ---

// Cell is a storage slot. Variables and object fields hold their value in a
// cell; an alias binding shares another binding's cell.
type Cell struct {
	Value Object
}

// --- Global Instances ---

var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
	NULL  = &Null{}
)

// NativeBool converts a Go bool into the shared Boolean instance.
func NativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// Copy returns an independent copy of a value. Arrays and instances are
// copied deeply; every other value is immutable and returned as is.
func Copy(obj Object) Object {
	switch o := obj.(type) {
	case *Array:
		elems := make([]Object, len(o.Elements))
		for i, el := range o.Elements {
			elems[i] = Copy(el)
		}
		return &Array{Elem: o.Elem, Shape: append([]Bound(nil), o.Shape...), Elements: elems}
	case *Instance:
		fields := make(map[string]*Cell, len(o.Fields))
		for name, cell := range o.Fields {
			fields[name] = &Cell{Value: Copy(cell.Value)}
		}
		return &Instance{TypeName: o.TypeName, Order: append([]string(nil), o.Order...), Fields: fields}
	default:
		return obj
	}
}
