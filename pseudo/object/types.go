package object

import (
	"fmt"
	"unicode/utf8"

	"github.com/samber/lo"
)

// TypeKind classifies a VariableType.
type TypeKind int

const (
	BooleanKind TypeKind = iota
	IntegerKind
	RealKind
	CharKind
	StringKind
	DateKind
	ArrayKind
	CustomKind
)

// Bound is an inclusive (lower, upper) bound of one array dimension.
type Bound struct {
	Lower int64
	Upper int64
}

// Len is the number of indices the bound admits.
func (b Bound) Len() int64 { return b.Upper - b.Lower + 1 }

// VariableType is the declared type of a variable, parameter or field.
// An array type has one dimension; N-dimensional arrays nest N array types.
type VariableType struct {
	Kind  TypeKind
	Elem  *VariableType // ArrayKind only
	Lower int64         // ArrayKind only
	Upper int64         // ArrayKind only
	Name  string        // CustomKind only
}

var (
	BooleanType = &VariableType{Kind: BooleanKind}
	IntegerType = &VariableType{Kind: IntegerKind}
	RealType    = &VariableType{Kind: RealKind}
	CharType    = &VariableType{Kind: CharKind}
	StringType  = &VariableType{Kind: StringKind}
	DateType    = &VariableType{Kind: DateKind}
)

// ArrayOf returns a single-dimension array type.
func ArrayOf(elem *VariableType, lower, upper int64) *VariableType {
	return &VariableType{Kind: ArrayKind, Elem: elem, Lower: lower, Upper: upper}
}

// CustomType refers to a class, record or enumeration by name.
func CustomType(name string) *VariableType {
	return &VariableType{Kind: CustomKind, Name: name}
}

// PrimitiveType maps a primitive type keyword to its type.
func PrimitiveType(name string) (*VariableType, bool) {
	switch name {
	case "BOOLEAN":
		return BooleanType, true
	case "INTEGER":
		return IntegerType, true
	case "REAL":
		return RealType, true
	case "CHAR":
		return CharType, true
	case "STRING":
		return StringType, true
	case "DATE":
		return DateType, true
	}
	return nil, false
}

func (t *VariableType) String() string {
	switch t.Kind {
	case BooleanKind:
		return "BOOLEAN"
	case IntegerKind:
		return "INTEGER"
	case RealKind:
		return "REAL"
	case CharKind:
		return "CHAR"
	case StringKind:
		return "STRING"
	case DateKind:
		return "DATE"
	case ArrayKind:
		shape, elem := t.Shape()
		s := "ARRAY["
		for i, b := range shape {
			if i > 0 {
				s += ", "
			}
			s += fmt.Sprintf("%d:%d", b.Lower, b.Upper)
		}
		return s + "] OF " + elem.String()
	case CustomKind:
		return t.Name
	}
	return "UNKNOWN"
}

// Equal reports whether two types are identical, including array bounds.
func (t *VariableType) Equal(o *VariableType) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case ArrayKind:
		return t.Lower == o.Lower && t.Upper == o.Upper && t.Elem.Equal(o.Elem)
	case CustomKind:
		return t.Name == o.Name
	}
	return true
}

// Shape flattens nested array types into their dimensions and the innermost
// element type.
func (t *VariableType) Shape() ([]Bound, *VariableType) {
	var shape []Bound
	cur := t
	for cur.Kind == ArrayKind {
		shape = append(shape, Bound{Lower: cur.Lower, Upper: cur.Upper})
		cur = cur.Elem
	}
	return shape, cur
}

// MaxArrayCells bounds the number of cells a single array may hold.
const MaxArrayCells = 1 << 24

// Capacity is the number of cells an array of the given shape holds. It
// reports false when a dimension or the total exceeds MaxArrayCells.
func Capacity(shape []Bound) (int64, bool) {
	const overflow = -1
	n := lo.Reduce(shape, func(acc int64, b Bound, _ int) int64 {
		span := b.Upper - b.Lower
		if acc == overflow || span < 0 || span >= MaxArrayCells {
			return overflow
		}
		if acc > MaxArrayCells/(span+1) {
			return overflow
		}
		return acc * (span + 1)
	}, int64(1))
	return n, n != overflow
}

// arrayType rebuilds the nested array type for a shape.
func arrayType(shape []Bound, elem *VariableType) *VariableType {
	t := elem
	for i := len(shape) - 1; i >= 0; i-- {
		t = ArrayOf(t, shape[i].Lower, shape[i].Upper)
	}
	return t
}

// TypeOf returns the runtime type of a value, or nil for values that have
// no variable type (Null and internal markers).
func TypeOf(obj Object) *VariableType {
	switch o := obj.(type) {
	case *Integer:
		return IntegerType
	case *Real:
		return RealType
	case *Boolean:
		return BooleanType
	case *String:
		return StringType
	case *Date:
		return DateType
	case *Array:
		return arrayType(o.Shape, o.Elem)
	case *Instance:
		return CustomType(o.TypeName)
	case *EnumValue:
		return CustomType(o.TypeName)
	}
	return nil
}

// Conforms reports whether a value may be stored in a slot of type t.
// The value's runtime type must equal t exactly; a CHAR slot takes a
// one-character STRING.
func Conforms(t *VariableType, obj Object) bool {
	if t.Kind == CharKind {
		s, ok := obj.(*String)
		return ok && utf8.RuneCountInString(s.Value) == 1
	}
	return t.Equal(TypeOf(obj))
}

// DefaultValue builds the initial value of a freshly declared variable of
// type t. Custom types are resolved through defs.
func DefaultValue(t *VariableType, defs *Definitions) (Object, *Error) {
	switch t.Kind {
	case BooleanKind:
		return FALSE, nil
	case IntegerKind:
		return &Integer{Value: 0}, nil
	case RealKind:
		return &Real{Value: 0}, nil
	case CharKind, StringKind:
		return &String{Value: ""}, nil
	case DateKind:
		d, _ := NewDate(1, 1, 1970)
		return d, nil
	case ArrayKind:
		shape, elem := t.Shape()
		n, ok := Capacity(shape)
		if !ok {
			return nil, NewError(InvalidOperation, "array %s exceeds %d cells", t, MaxArrayCells)
		}
		elems := make([]Object, n)
		for i := range elems {
			v, err := DefaultValue(elem, defs)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &Array{Elem: elem, Shape: shape, Elements: elems}, nil
	case CustomKind:
		def, ok := defs.Lookup(t.Name)
		if !ok {
			return nil, NewError(NotDeclared, "type %s is not declared", t.Name)
		}
		switch d := def.(type) {
		case *ClassDef:
			return d.Instantiate(), nil
		case *RecordDef:
			return d.Instantiate(), nil
		case *EnumDef:
			return d.Members[0], nil
		default:
			return nil, NewError(TypeMismatch, "%s is not a type", t.Name)
		}
	}
	return NULL, nil
}
