// Package evaluator executes pseudocode programs by walking their syntax tree.
package evaluator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/Jax0312/pseudoengine-sub000/pseudo/ast"
	"github.com/Jax0312/pseudoengine-sub000/pseudo/object"
	"github.com/Jax0312/pseudoengine-sub000/pseudo/xfile"
)

// DefaultMaxDepth bounds the number of nested calls.
const DefaultMaxDepth = 4096

// LineReader supplies INPUT lines. io.EOF means no more input.
type LineReader interface {
	ReadLine() (string, error)
}

// NewLineReader reads lines from r, without their terminators.
func NewLineReader(r io.Reader) LineReader {
	return &bufioLineReader{r: bufio.NewReader(r)}
}

type bufioLineReader struct {
	r *bufio.Reader
}

func (br *bufioLineReader) ReadLine() (string, error) {
	line, err := br.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Config holds the collaborators of an Evaluator. Zero fields get defaults.
type Config struct {
	Env      *object.Environment
	Defs     *object.Definitions
	Files    *xfile.Manager
	Stdout   io.Writer
	Input    LineReader
	Logger   *slog.Logger
	Rand     func() float64
	Now      func() time.Time
	Filename string
	MaxDepth int
}

// frame is one call in progress. receiver and class are set for methods
// and constructors; readOnly marks a receiver that must not be modified.
type frame struct {
	name     string
	receiver *object.Instance
	class    *object.ClassDef
	readOnly bool
}

// Evaluator is the tree-walking interpreter. It owns the scope stack, the
// definition table and the open files of one program run.
type Evaluator struct {
	env      *object.Environment
	defs     *object.Definitions
	files    *xfile.Manager
	stdout   io.Writer
	input    LineReader
	logger   *slog.Logger
	rand     func() float64
	now      func() time.Time
	filename string
	maxDepth int

	frames    []*frame
	callStack []*object.CallFrame
}

// New creates an evaluator from cfg.
func New(cfg Config) *Evaluator {
	e := &Evaluator{
		env:      cfg.Env,
		defs:     cfg.Defs,
		files:    cfg.Files,
		stdout:   cfg.Stdout,
		input:    cfg.Input,
		logger:   cfg.Logger,
		rand:     cfg.Rand,
		now:      cfg.Now,
		filename: cfg.Filename,
		maxDepth: cfg.MaxDepth,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.env == nil {
		e.env = object.NewEnvironment()
	}
	if e.defs == nil {
		e.defs = object.NewDefinitions()
	}
	if e.files == nil {
		e.files = xfile.NewManager("", e.logger)
	}
	if e.stdout == nil {
		e.stdout = os.Stdout
	}
	if e.input == nil {
		e.input = NewLineReader(os.Stdin)
	}
	if e.rand == nil {
		e.rand = rand.Float64
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.maxDepth <= 0 {
		e.maxDepth = DefaultMaxDepth
	}
	return e
}

// Env returns the scope stack.
func (e *Evaluator) Env() *object.Environment { return e.env }

// Defs returns the definition table.
func (e *Evaluator) Defs() *object.Definitions { return e.defs }

// Files returns the file handle manager.
func (e *Evaluator) Files() *xfile.Manager { return e.files }

// Run executes the top-level statements of a program. It returns nil on
// success or the *object.Error that stopped execution.
func (e *Evaluator) Run(ctx context.Context, program *ast.Main) *object.Error {
	e.logc(ctx, slog.LevelDebug, "run program", "statements", len(program.Body))
	res := e.execBlock(ctx, program.Body)
	if err, ok := res.(*object.Error); ok {
		return err
	}
	return nil
}

func (e *Evaluator) logc(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !e.logger.Enabled(ctx, level) {
		return
	}
	if _, file, line, ok := runtime.Caller(1); ok {
		args = append([]any{slog.String("exec_pos", fmt.Sprintf("%s:%d", file, line))}, args...)
	}
	if len(e.callStack) > 0 {
		top := e.callStack[len(e.callStack)-1]
		args = append([]any{slog.String("in_func", top.Function), slog.String("in_func_pos", top.Pos.String())}, args...)
	}
	e.logger.Log(ctx, level, msg, args...)
}

// newError creates a runtime error at pos with a snapshot of the call stack.
func (e *Evaluator) newError(ctx context.Context, pos ast.Pos, kind object.ErrorKind, format string, args ...any) *object.Error {
	return e.at(ctx, pos, object.NewError(kind, format, args...))
}

// at attaches pos, the file name and the call stack to an error raised by a
// collaborator. An error that already has a position keeps it.
func (e *Evaluator) at(ctx context.Context, pos ast.Pos, err *object.Error) *object.Error {
	if err.Pos.IsValid() {
		return err
	}
	err.Pos = pos
	err.Filename = e.filename
	err.CallStack = make([]*object.CallFrame, len(e.callStack))
	copy(err.CallStack, e.callStack)
	e.logc(ctx, slog.LevelDebug, "runtime error", "kind", err.Kind, "pos", pos.String(), "msg", err.Message)
	return err
}

func isError(obj object.Object) bool {
	if obj != nil {
		return obj.Type() == object.ERROR_OBJ
	}
	return false
}

func (e *Evaluator) currentFrame() *frame {
	if len(e.frames) == 0 {
		return nil
	}
	return e.frames[len(e.frames)-1]
}

// inClass reports whether execution is inside a method of the named class.
func (e *Evaluator) inClass(name string) bool {
	f := e.currentFrame()
	return f != nil && f.class != nil && f.class.Name == name
}

func (e *Evaluator) pushFrame(ctx context.Context, pos ast.Pos, f *frame) *object.Error {
	if len(e.frames) >= e.maxDepth {
		return e.newError(ctx, pos, object.InvalidOperation, "call depth exceeds %d while calling %s", e.maxDepth, f.name)
	}
	e.frames = append(e.frames, f)
	e.callStack = append(e.callStack, &object.CallFrame{Pos: pos, Function: f.name})
	e.env.EnterScope()
	e.logc(ctx, slog.LevelDebug, "enter scope", "func", f.name, "depth", e.env.Depth())
	return nil
}

func (e *Evaluator) popFrame(ctx context.Context) {
	e.env.ExitScope()
	e.frames = e.frames[:len(e.frames)-1]
	e.callStack = e.callStack[:len(e.callStack)-1]
	e.logc(ctx, slog.LevelDebug, "exit scope", "depth", e.env.Depth())
}
