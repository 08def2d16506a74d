// Package ast defines the syntax tree consumed by the pseudocode runtime.
//
// The tree is produced by a front end that is not part of this module.
// Statements are ordinary tree nodes; expressions are flat sequences already
// arranged in postfix order, so the evaluator can run them on a value stack.
package ast

import "fmt"

// Pos is a source position (1-based line and column).
type Pos struct {
	Line   int
	Column int
}

// IsValid reports whether the position points into a source document.
func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node is implemented by every node of the tree.
type Node interface {
	Pos() Pos
}

// Stmt is a statement or declaration node.
type Stmt interface {
	Node
	stmtNode()
}

// Item is one element of a postfix expression sequence: an operand or an operator marker.
type Item interface {
	Node
	itemNode()
}

// Main is the root of a program.
type Main struct {
	At   Pos
	Body []Stmt
}

func (m *Main) Pos() Pos { return m.At }

// --- Expressions ---

// Expr holds an expression as a postfix sequence of items.
type Expr struct {
	At    Pos
	Items []Item
}

func (e *Expr) Pos() Pos { return e.At }

// IntegerLit is an INTEGER literal.
type IntegerLit struct {
	At    Pos
	Value int64
}

// RealLit is a REAL literal.
type RealLit struct {
	At    Pos
	Value float64
}

// StringLit is a STRING literal.
type StringLit struct {
	At    Pos
	Value string
}

// BooleanLit is a BOOLEAN literal.
type BooleanLit struct {
	At    Pos
	Value bool
}

// DateLit is a DATE literal.
type DateLit struct {
	At    Pos
	Day   int
	Month int
	Year  int
}

// Ident refers to a variable, a constant or an enumeration member.
type Ident struct {
	At   Pos
	Name string
}

// IndexExpr is an indexed variable, e.g. grid[i, j].
type IndexExpr struct {
	At      Pos
	Name    string
	Indices []*Expr
}

// CallExpr is a direct call of a function, procedure or builtin.
type CallExpr struct {
	At   Pos
	Name string
	Args []*Expr
}

// NewExpr constructs an object: NEW Class(args...).
type NewExpr struct {
	At    Pos
	Class string
	Args  []*Expr
}

// Step is one segment of a composite chain.
// A step with IsCall set is a method call; a step with Indices is an
// array-property access; otherwise it is a plain property access.
type Step struct {
	At      Pos
	Name    string
	Indices []*Expr
	Args    []*Expr
	IsCall  bool
}

// ChainExpr is a composite access rooted at Base, e.g. a.b[i].c(x).
type ChainExpr struct {
	At    Pos
	Base  Item // *Ident, *IndexExpr or *CallExpr
	Steps []*Step
}

// Operator is an operator marker in a postfix sequence.
type Operator struct {
	At    Pos
	Op    string
	Unary bool
}

func (n *IntegerLit) Pos() Pos { return n.At }
func (n *RealLit) Pos() Pos    { return n.At }
func (n *StringLit) Pos() Pos  { return n.At }
func (n *BooleanLit) Pos() Pos { return n.At }
func (n *DateLit) Pos() Pos    { return n.At }
func (n *Ident) Pos() Pos      { return n.At }
func (n *IndexExpr) Pos() Pos  { return n.At }
func (n *CallExpr) Pos() Pos   { return n.At }
func (n *NewExpr) Pos() Pos    { return n.At }
func (n *ChainExpr) Pos() Pos  { return n.At }
func (n *Operator) Pos() Pos   { return n.At }
func (n *Step) Pos() Pos       { return n.At }

func (*IntegerLit) itemNode() {}
func (*RealLit) itemNode()    {}
func (*StringLit) itemNode()  {}
func (*BooleanLit) itemNode() {}
func (*DateLit) itemNode()    {}
func (*Ident) itemNode()      {}
func (*IndexExpr) itemNode()  {}
func (*CallExpr) itemNode()   {}
func (*NewExpr) itemNode()    {}
func (*ChainExpr) itemNode()  {}
func (*Operator) itemNode()   {}

// --- Types ---

// Bound is an inclusive (lower, upper) array bound.
type Bound struct {
	Lower int64
	Upper int64
}

// TypeExpr names a type. When Bounds is non-empty it is an array type whose
// element type is Of; otherwise Name is a primitive or a custom type name.
type TypeExpr struct {
	At     Pos
	Name   string
	Bounds []Bound
	Of     *TypeExpr
}

func (t *TypeExpr) Pos() Pos { return t.At }

// IsArray reports whether the type expression describes an array.
func (t *TypeExpr) IsArray() bool { return len(t.Bounds) > 0 }

// --- Statements ---

// DeclareStmt declares one or more variables of the same type.
type DeclareStmt struct {
	At    Pos
	Names []string
	Type  *TypeExpr
}

// ConstantStmt declares an immutable variable.
type ConstantStmt struct {
	At    Pos
	Name  string
	Value *Expr
}

// AssignStmt stores Value into Target (*Ident, *IndexExpr or *ChainExpr).
type AssignStmt struct {
	At     Pos
	Target Item
	Value  *Expr
}

type IfStmt struct {
	At   Pos
	Cond *Expr
	Then []Stmt
	Else []Stmt
}

type WhileStmt struct {
	At   Pos
	Cond *Expr
	Body []Stmt
}

// RepeatStmt runs Body until Until is true; the body runs at least once.
type RepeatStmt struct {
	At    Pos
	Body  []Stmt
	Until *Expr
}

// ForStmt is a counted loop. Step is nil when the source gave no STEP.
type ForStmt struct {
	At    Pos
	Var   string
	Start *Expr
	End   *Expr
	Step  *Expr
	Body  []Stmt
}

type CaseClause struct {
	At    Pos
	Value *Expr
	Body  []Stmt
}

// SwitchStmt runs the first case whose value equals Subject, or Otherwise.
type SwitchStmt struct {
	At        Pos
	Subject   *Expr
	Cases     []*CaseClause
	Otherwise []Stmt
}

type OutputStmt struct {
	At     Pos
	Values []*Expr
}

// InputStmt reads one line into Target (*Ident, *IndexExpr or *ChainExpr).
type InputStmt struct {
	At     Pos
	Target Item
}

// Param is a formal parameter of a routine.
type Param struct {
	At    Pos
	Name  string
	Type  *TypeExpr
	ByRef bool
}

// RoutineDecl declares a function (Returns != nil) or a procedure.
// Private only matters for class methods.
type RoutineDecl struct {
	At      Pos
	Name    string
	Params  []*Param
	Returns *TypeExpr
	Body    []Stmt
	Private bool
}

// IsFunction reports whether the routine declares a return type.
func (r *RoutineDecl) IsFunction() bool { return r.Returns != nil }

// FieldDecl declares one or more fields of a class or record.
type FieldDecl struct {
	At      Pos
	Names   []string
	Type    *TypeExpr
	Private bool
}

type ClassDecl struct {
	At      Pos
	Name    string
	Fields  []*FieldDecl
	Methods []*RoutineDecl
}

type RecordDecl struct {
	At     Pos
	Name   string
	Fields []*FieldDecl
}

// TypeDecl declares an enumeration.
type TypeDecl struct {
	At     Pos
	Name   string
	Values []string
}

// CallStmt invokes a procedure; Call is a *CallExpr or a *ChainExpr.
type CallStmt struct {
	At   Pos
	Call Item
}

// ReturnStmt leaves the current routine. Value is nil for a bare RETURN.
type ReturnStmt struct {
	At    Pos
	Value *Expr
}

type OpenFileStmt struct {
	At   Pos
	File *Expr
	Mode string
}

type CloseFileStmt struct {
	At   Pos
	File *Expr
}

type ReadFileStmt struct {
	At     Pos
	File   *Expr
	Target Item
}

type WriteFileStmt struct {
	At    Pos
	File  *Expr
	Value *Expr
}

type SeekStmt struct {
	At      Pos
	File    *Expr
	Address *Expr
}

type GetRecordStmt struct {
	At     Pos
	File   *Expr
	Target Item
}

type PutRecordStmt struct {
	At    Pos
	File  *Expr
	Value *Expr
}

func (s *DeclareStmt) Pos() Pos   { return s.At }
func (s *ConstantStmt) Pos() Pos  { return s.At }
func (s *AssignStmt) Pos() Pos    { return s.At }
func (s *IfStmt) Pos() Pos        { return s.At }
func (s *WhileStmt) Pos() Pos     { return s.At }
func (s *RepeatStmt) Pos() Pos    { return s.At }
func (s *ForStmt) Pos() Pos       { return s.At }
func (s *SwitchStmt) Pos() Pos    { return s.At }
func (s *CaseClause) Pos() Pos    { return s.At }
func (s *OutputStmt) Pos() Pos    { return s.At }
func (s *InputStmt) Pos() Pos     { return s.At }
func (s *Param) Pos() Pos         { return s.At }
func (s *RoutineDecl) Pos() Pos   { return s.At }
func (s *FieldDecl) Pos() Pos     { return s.At }
func (s *ClassDecl) Pos() Pos     { return s.At }
func (s *RecordDecl) Pos() Pos    { return s.At }
func (s *TypeDecl) Pos() Pos      { return s.At }
func (s *CallStmt) Pos() Pos      { return s.At }
func (s *ReturnStmt) Pos() Pos    { return s.At }
func (s *OpenFileStmt) Pos() Pos  { return s.At }
func (s *CloseFileStmt) Pos() Pos { return s.At }
func (s *ReadFileStmt) Pos() Pos  { return s.At }
func (s *WriteFileStmt) Pos() Pos { return s.At }
func (s *SeekStmt) Pos() Pos      { return s.At }
func (s *GetRecordStmt) Pos() Pos { return s.At }
func (s *PutRecordStmt) Pos() Pos { return s.At }

func (*DeclareStmt) stmtNode()   {}
func (*ConstantStmt) stmtNode()  {}
func (*AssignStmt) stmtNode()    {}
func (*IfStmt) stmtNode()        {}
func (*WhileStmt) stmtNode()     {}
func (*RepeatStmt) stmtNode()    {}
func (*ForStmt) stmtNode()       {}
func (*SwitchStmt) stmtNode()    {}
func (*OutputStmt) stmtNode()    {}
func (*InputStmt) stmtNode()     {}
func (*RoutineDecl) stmtNode()   {}
func (*ClassDecl) stmtNode()     {}
func (*RecordDecl) stmtNode()    {}
func (*TypeDecl) stmtNode()      {}
func (*CallStmt) stmtNode()      {}
func (*ReturnStmt) stmtNode()    {}
func (*OpenFileStmt) stmtNode()  {}
func (*CloseFileStmt) stmtNode() {}
func (*ReadFileStmt) stmtNode()  {}
func (*WriteFileStmt) stmtNode() {}
func (*SeekStmt) stmtNode()      {}
func (*GetRecordStmt) stmtNode() {}
func (*PutRecordStmt) stmtNode() {}
