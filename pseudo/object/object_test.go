package object

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInspect(t *testing.T) {
	date, _ := NewDate(5, 3, 2024)
	inst := &Instance{
		TypeName: "Point",
		Order:    []string{"X", "Y"},
		Fields:   map[string]*Cell{"X": {Value: &Integer{Value: 1}}, "Y": {Value: &Real{Value: 2.5}}},
	}

	tests := []struct {
		name  string
		input Object
		want  string
	}{
		{"integer", &Integer{Value: -4}, "-4"},
		{"whole real", &Real{Value: 3}, "3"},
		{"fractional real", &Real{Value: 0.1}, "0.1"},
		{"true", TRUE, "TRUE"},
		{"false", FALSE, "FALSE"},
		{"date", date, "05-03-2024"},
		{"null", NULL, "NULL"},
		{"array", &Array{Elements: []Object{&Integer{Value: 1}, &String{Value: "a"}}}, "[1, a]"},
		{"instance", inst, "Point{X: 1, Y: 2.5}"},
		{"enum", &EnumValue{TypeName: "Colour", Name: "Red"}, "Red"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.input.Inspect()); diff != "" {
				t.Errorf("Inspect() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewDateRejectsInvalidDays(t *testing.T) {
	if _, ok := NewDate(29, 2, 2023); ok {
		t.Error("29-02-2023 accepted")
	}
	if _, ok := NewDate(29, 2, 2024); !ok {
		t.Error("29-02-2024 rejected")
	}
	if _, ok := NewDate(1, 13, 2024); ok {
		t.Error("month 13 accepted")
	}
	for _, year := range []int{-5, 0, 10000} {
		if _, ok := NewDate(1, 1, year); ok {
			t.Errorf("year %d accepted", year)
		}
	}
}

func TestCapacityLimits(t *testing.T) {
	tests := []struct {
		name  string
		shape []Bound
		want  bool
	}{
		{"at the limit", []Bound{{Lower: 1, Upper: MaxArrayCells}}, true},
		{"one dimension too long", []Bound{{Lower: 0, Upper: MaxArrayCells}}, false},
		{"product overflows", []Bound{{Lower: 1, Upper: 1 << 32}, {Lower: 1, Upper: 1 << 32}}, false},
		{"span overflows", []Bound{{Lower: -1 << 62, Upper: 1 << 62}}, false},
		{"product over the limit", []Bound{{Lower: 1, Upper: 1 << 13}, {Lower: 1, Upper: 1 << 12}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := Capacity(tt.shape); ok != tt.want {
				t.Errorf("Capacity() ok = %v, want %v", ok, tt.want)
			}
		})
	}

	_, err := DefaultValue(ArrayOf(ArrayOf(IntegerType, 1, 1<<32), 1, 1<<32), NewDefinitions())
	if err == nil || err.Kind != InvalidOperation {
		t.Errorf("DefaultValue(huge array) error = %v, want InvalidOperation", err)
	}
}

func TestCopyIsDeep(t *testing.T) {
	orig := &Instance{
		TypeName: "Box",
		Order:    []string{"Items"},
		Fields: map[string]*Cell{"Items": {Value: &Array{
			Elem:     IntegerType,
			Shape:    []Bound{{Lower: 1, Upper: 2}},
			Elements: []Object{&Integer{Value: 1}, &Integer{Value: 2}},
		}}},
	}
	cp := Copy(orig).(*Instance)
	cp.Fields["Items"].Value.(*Array).Elements[0] = &Integer{Value: 99}

	if diff := cmp.Diff("Box{Items: [1, 2]}", orig.Inspect()); diff != "" {
		t.Errorf("original changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("Box{Items: [99, 2]}", cp.Inspect()); diff != "" {
		t.Errorf("copy mismatch (-want +got):\n%s", diff)
	}
}

func TestTypes(t *testing.T) {
	grid := ArrayOf(ArrayOf(IntegerType, 1, 2), 1, 3)

	shape, elem := grid.Shape()
	if diff := cmp.Diff([]Bound{{Lower: 1, Upper: 3}, {Lower: 1, Upper: 2}}, shape); diff != "" {
		t.Errorf("Shape() mismatch (-want +got):\n%s", diff)
	}
	if !elem.Equal(IntegerType) {
		t.Errorf("element type = %s, want INTEGER", elem)
	}
	if n, ok := Capacity(shape); !ok || n != 6 {
		t.Errorf("Capacity() = %d, %v, want 6, true", n, ok)
	}
	if diff := cmp.Diff("ARRAY[1:3, 1:2] OF INTEGER", grid.String()); diff != "" {
		t.Errorf("String() mismatch (-want +got):\n%s", diff)
	}
	if grid.Equal(ArrayOf(ArrayOf(IntegerType, 1, 2), 0, 2)) {
		t.Error("arrays with different bounds compare equal")
	}
}

func TestConforms(t *testing.T) {
	tests := []struct {
		name string
		typ  *VariableType
		val  Object
		want bool
	}{
		{"integer", IntegerType, &Integer{Value: 1}, true},
		{"no widening", RealType, &Integer{Value: 1}, false},
		{"string", StringType, &String{Value: "abc"}, true},
		{"char", CharType, &String{Value: "a"}, true},
		{"char too long", CharType, &String{Value: "ab"}, false},
		{"char empty", CharType, &String{Value: ""}, false},
		{"custom", CustomType("Point"), &Instance{TypeName: "Point"}, true},
		{"other custom", CustomType("Point"), &Instance{TypeName: "Line"}, false},
		{"null", IntegerType, NULL, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Conforms(tt.typ, tt.val); got != tt.want {
				t.Errorf("Conforms(%s, %s) = %v, want %v", tt.typ, tt.val.Inspect(), got, tt.want)
			}
		})
	}
}

func TestDefaultValue(t *testing.T) {
	defs := NewDefinitions()
	rec := &RecordDef{Name: "Pair"}
	rec.Add(&VarProperty{Name: "A", Type: IntegerType, Value: &Integer{}})
	rec.Add(&VarProperty{Name: "B", Type: StringType, Value: &String{}})
	if err := defs.Define(rec); err != nil {
		t.Fatal(err)
	}
	if err := defs.Define(NewEnumDef("Dir", []string{"North", "South"})); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		typ  *VariableType
		want string
	}{
		{"integer", IntegerType, "0"},
		{"real", RealType, "0"},
		{"boolean", BooleanType, "FALSE"},
		{"date", DateType, "01-01-1970"},
		{"array", ArrayOf(ArrayOf(BooleanType, 0, 1), 1, 2), "[FALSE, FALSE, FALSE, FALSE]"},
		{"record", CustomType("Pair"), "Pair{A: 0, B: }"},
		{"enum", CustomType("Dir"), "North"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DefaultValue(tt.typ, defs)
			if err != nil {
				t.Fatalf("DefaultValue() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got.Inspect()); diff != "" {
				t.Errorf("DefaultValue() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := DefaultValue(CustomType("Missing"), defs); err == nil || err.Kind != NotDeclared {
		t.Errorf("DefaultValue(Missing) error = %v, want NotDeclared", err)
	}
}

func TestDefinitions(t *testing.T) {
	defs := NewDefinitions()
	if err := defs.Define(&ProcedureDef{Routine: Routine{Name: "Run"}}); err != nil {
		t.Fatal(err)
	}
	if err := defs.Define(&FunctionDef{Routine: Routine{Name: "Run", Returns: IntegerType}}); err == nil || err.Kind != AlreadyDeclared {
		t.Errorf("redefinition error = %v, want AlreadyDeclared", err)
	}
	if err := defs.Define(NewEnumDef("A", []string{"X"})); err != nil {
		t.Fatal(err)
	}
	if err := defs.Define(NewEnumDef("B", []string{"X"})); err == nil || err.Kind != AlreadyDeclared {
		t.Errorf("duplicate enum member error = %v, want AlreadyDeclared", err)
	}
	if diff := cmp.Diff([]string{"A", "Run"}, defs.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	class := &ClassDef{Name: "C"}
	class.Add(&MethodProperty{Routine: Routine{Name: "New"}})
	if ctor, ok := class.Constructor(); !ok || ctor.Name != "New" {
		t.Errorf("Constructor() = %v, %v", ctor, ok)
	}
}

func TestEnvironment(t *testing.T) {
	t.Run("redeclaration", func(t *testing.T) {
		env := NewEnvironment()
		if err := env.Declare("x", &Integer{}, IntegerType, true); err != nil {
			t.Fatalf("first declaration: %v", err)
		}
		env.EnterScope()
		if err := env.Declare("y", &Integer{}, IntegerType, true); err != nil {
			t.Fatalf("declaration in local scope: %v", err)
		}
		if err := env.Declare("y", &Integer{}, IntegerType, true); err == nil || err.Kind != AlreadyDeclared {
			t.Fatalf("redeclaration in the same scope: got %v, want AlreadyDeclared", err)
		}
		env.ExitScope()
		env.EnterScope()
		if err := env.Declare("y", &Integer{}, IntegerType, true); err != nil {
			t.Fatalf("declaration after the previous scope exited: %v", err)
		}
	})

	t.Run("assign checks the declared type", func(t *testing.T) {
		env := NewEnvironment()
		env.Declare("n", &Integer{}, IntegerType, true)
		if err := env.Assign("n", &String{Value: "3"}); err == nil || err.Kind != TypeMismatch {
			t.Errorf("Assign(STRING) error = %v, want TypeMismatch", err)
		}
		if err := env.Assign("n", &Integer{Value: 3}); err != nil {
			t.Fatalf("Assign(INTEGER): %v", err)
		}
		v, err := env.Lookup("n")
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(&Integer{Value: 3}, v.Value()); diff != "" {
			t.Errorf("value mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("constants", func(t *testing.T) {
		env := NewEnvironment()
		env.Declare("K", &Integer{Value: 1}, IntegerType, false)
		if err := env.Assign("K", &Integer{Value: 2}); err == nil || err.Kind != ImmutableAssignment {
			t.Errorf("Assign(constant) error = %v, want ImmutableAssignment", err)
		}
	})

	t.Run("alias shares the cell", func(t *testing.T) {
		env := NewEnvironment()
		env.Declare("x", &Integer{Value: 1}, IntegerType, true)
		outer, _ := env.Lookup("x")
		env.EnterScope()
		if err := env.Bind("ref", outer.Cell(), IntegerType, true); err != nil {
			t.Fatal(err)
		}
		if err := env.Assign("ref", &Integer{Value: 7}); err != nil {
			t.Fatal(err)
		}
		env.ExitScope()
		if diff := cmp.Diff("7", outer.Value().Inspect()); diff != "" {
			t.Errorf("value mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("lookup modes", func(t *testing.T) {
		env := NewEnvironment()
		env.Declare("g", &Integer{}, IntegerType, true)
		env.EnterScope()
		env.Declare("callerLocal", &Integer{}, IntegerType, true)
		env.EnterScope()

		if !env.Has("callerLocal") || !env.Has("g") {
			t.Error("flat lookup must see every scope")
		}
		env.SetIsolated(true)
		if env.Has("callerLocal") {
			t.Error("isolated lookup must not see the caller's scope")
		}
		if !env.Has("g") {
			t.Error("isolated lookup must see the global scope")
		}
		if _, err := env.Lookup("callerLocal"); err == nil || err.Kind != NotDeclared {
			t.Errorf("Lookup() error = %v, want NotDeclared", err)
		}
	})

	t.Run("global scope is never popped", func(t *testing.T) {
		env := NewEnvironment()
		env.ExitScope()
		if diff := cmp.Diff(1, env.Depth()); diff != "" {
			t.Errorf("Depth() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestErrorIs(t *testing.T) {
	var err error = NewError(TypeMismatch, "bad %s", "value")
	if !errors.Is(err, &Error{Kind: TypeMismatch}) {
		t.Error("errors.Is must match on kind")
	}
	if errors.Is(err, &Error{Kind: NotDeclared}) {
		t.Error("errors.Is must not match another kind")
	}
	if diff := cmp.Diff("TypeMismatch: bad value", err.Error()); diff != "" {
		t.Errorf("Error() mismatch (-want +got):\n%s", diff)
	}
}
