package object

import (
	"bytes"
	"fmt"

	"github.com/Jax0312/pseudoengine-sub000/pseudo/ast"
)

// ErrorKind classifies a runtime error.
type ErrorKind string

const (
	AlreadyDeclared       ErrorKind = "AlreadyDeclared"
	NotDeclared           ErrorKind = "NotDeclared"
	ImmutableAssignment   ErrorKind = "ImmutableAssignment"
	TypeMismatch          ErrorKind = "TypeMismatch"
	InvalidOperation      ErrorKind = "InvalidOperation"
	DivisionByZero        ErrorKind = "DivisionByZero"
	IndexOutOfBounds      ErrorKind = "IndexOutOfBounds"
	MissingIndices        ErrorKind = "MissingIndices"
	InvalidPropertyAccess ErrorKind = "InvalidPropertyAccess"
	ConstructorMissing    ErrorKind = "ConstructorMissing"
	ConstructorPrivate    ErrorKind = "ConstructorPrivate"
	InvalidArgumentCount  ErrorKind = "InvalidArgumentCount"
	ParameterTypeMismatch ErrorKind = "ParameterTypeMismatch"
	InvalidArgument       ErrorKind = "InvalidArgument"
	MissingReturn         ErrorKind = "MissingReturn"
	FileAlreadyOpen       ErrorKind = "FileAlreadyOpen"
	FileNotOpen           ErrorKind = "FileNotOpen"
	FileModeMismatch      ErrorKind = "FileModeMismatch"
	FileIOError           ErrorKind = "FileIOError"
	InvalidInputValue     ErrorKind = "InvalidInputValue"
	InternalError         ErrorKind = "InternalError"
)

// CallFrame represents a single frame in the call stack.
type CallFrame struct {
	Pos      ast.Pos
	Function string
}

// Format formats the call frame into a readable string.
func (cf *CallFrame) Format(filename string) string {
	return fmt.Sprintf("\t%s:%s:\tin %s", filename, cf.Pos, cf.Function)
}

// --- Error Object ---

// Error represents a runtime error. It carries the source position of the
// offending node and a copy of the call stack at the time it was raised.
type Error struct {
	Kind      ErrorKind
	Message   string
	Pos       ast.Pos
	Filename  string
	CallStack []*CallFrame
}

// NewError creates an error without position; the evaluator attaches it.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }

// Inspect returns the error with its position and call stack, most recent call first.
func (e *Error) Inspect() string {
	var out bytes.Buffer
	fmt.Fprintf(&out, "runtime error: %s: %s", e.Kind, e.Message)
	if e.Pos.IsValid() {
		fmt.Fprintf(&out, "\n\t%s:%s:", e.filename(), e.Pos)
	}
	out.WriteString("\n")
	for i := len(e.CallStack) - 1; i >= 0; i-- {
		out.WriteString(e.CallStack[i].Format(e.filename()))
		out.WriteString("\n")
	}
	return out.String()
}

func (e *Error) filename() string {
	if e.Filename == "" {
		return "<program>"
	}
	return e.Filename
}

// Error makes it a valid Go error.
func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%s: %s: %s", e.filename(), e.Pos, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is lets errors.Is match on the kind: errors.Is(err, &object.Error{Kind: object.TypeMismatch}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
