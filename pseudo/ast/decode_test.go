package ast

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	src := `
- declare: {names: [x, y], type: INTEGER}
- assign:
    target: {var: x}
    value: [{int: 1}, {int: 2}, {op: "+"}]
- declare:
    names: grid
    type: {array: {bounds: [[1, 3], [0, 1]], of: REAL}}
- for:
    var: i
    start: [{int: 1}]
    end: [{int: 3}]
    body:
      - output: [{var: i}, {string: " "}]
- call: {chain: {base: {var: c}, steps: [Data, {name: Run, args: [[{bool: true}]]}]}}
`
	got, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	want := &Main{
		Body: []Stmt{
			&DeclareStmt{Names: []string{"x", "y"}, Type: &TypeExpr{Name: "INTEGER"}},
			&AssignStmt{
				Target: &Ident{Name: "x"},
				Value:  &Expr{Items: []Item{&IntegerLit{Value: 1}, &IntegerLit{Value: 2}, &Operator{Op: "+"}}},
			},
			&DeclareStmt{Names: []string{"grid"}, Type: &TypeExpr{
				Bounds: []Bound{{Lower: 1, Upper: 3}, {Lower: 0, Upper: 1}},
				Of:     &TypeExpr{Name: "REAL"},
			}},
			&ForStmt{
				Var:   "i",
				Start: &Expr{Items: []Item{&IntegerLit{Value: 1}}},
				End:   &Expr{Items: []Item{&IntegerLit{Value: 3}}},
				Body: []Stmt{&OutputStmt{Values: []*Expr{
					{Items: []Item{&Ident{Name: "i"}}},
					{Items: []Item{&StringLit{Value: " "}}},
				}}},
			},
			&CallStmt{Call: &ChainExpr{
				Base: &Ident{Name: "c"},
				Steps: []*Step{
					{Name: "Data"},
					{Name: "Run", IsCall: true, Args: []*Expr{{Items: []Item{&BooleanLit{Value: true}}}}},
				},
			}},
		},
	}

	ignorePos := cmp.FilterPath(func(p cmp.Path) bool {
		return p.Last().String() == ".At"
	}, cmp.Ignore())
	if diff := cmp.Diff(want, got, ignorePos); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodePositions(t *testing.T) {
	got, err := Decode(strings.NewReader("- output: [{var: x}]\n- return: ~\n"))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if diff := cmp.Diff(Pos{Line: 1, Column: 3}, got.Body[0].Pos()); diff != "" {
		t.Errorf("position mismatch (-want +got):\n%s", diff)
	}
	ret, ok := got.Body[1].(*ReturnStmt)
	if !ok || ret.Value != nil {
		t.Errorf("bare return decoded as %#v", got.Body[1])
	}
}

func TestDecodeEmpty(t *testing.T) {
	got, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(got.Body) != 0 {
		t.Errorf("Body = %v, want empty", got.Body)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown statement", "- jump: {}\n", `unknown statement kind "jump"`},
		{"two keys", "- {output: [], input: {var: x}}\n", "exactly one key"},
		{"function without return type", "- function: {name: F}\n", "must declare a return type"},
		{"procedure with return type", "- procedure: {name: P, returns: INTEGER}\n", "cannot declare a return type"},
		{"bad bounds", "- declare: {names: [a], type: {array: {bounds: [[3, 1]], of: INTEGER}}}\n", "exceeds upper bound"},
		{"bad date", "- output: [{date: yesterday}]\n", "invalid date literal"},
		{"literal target", "- input: {int: 1}\n", "expected a variable"},
		{"call statement on a variable", "- call: {var: x}\n", "call expects a call"},
		{"empty expression", "- output: [[]]\n", "non-empty postfix expression"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("expected an error")
			}
			var derr *DecodeError
			if !errors.As(err, &derr) {
				t.Fatalf("error %v is not a *DecodeError", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.want)
			}
			if !derr.Pos.IsValid() {
				t.Errorf("error %q has no position", err.Error())
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in    string
		day   int
		month int
		year  int
		ok    bool
	}{
		{"05-03-2024", 5, 3, 2024, true},
		{"5/3/2024", 5, 3, 2024, true},
		{"2024-03", 0, 0, 0, false},
		{"aa-bb-cccc", 0, 0, 0, false},
	}
	for _, tt := range tests {
		d, m, y, ok := ParseDate(tt.in)
		if diff := cmp.Diff([]any{tt.day, tt.month, tt.year, tt.ok}, []any{d, m, y, ok}); diff != "" {
			t.Errorf("ParseDate(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}
