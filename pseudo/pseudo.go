// Package pseudo is the entry point for running pseudocode programs.
//
// A program arrives as a syntax-tree document (see package ast), is loaded
// into an Interpreter and executed with Eval:
//
//	interp := pseudo.NewInterpreter(pseudo.WithStdout(os.Stdout))
//	if err := interp.LoadFile("prog.yaml"); err != nil { ... }
//	if err := interp.Eval(ctx); err != nil { ... }
package pseudo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Jax0312/pseudoengine-sub000/pseudo/ast"
	"github.com/Jax0312/pseudoengine-sub000/pseudo/evaluator"
	"github.com/Jax0312/pseudoengine-sub000/pseudo/object"
	"github.com/Jax0312/pseudoengine-sub000/pseudo/xfile"
)

// Interpreter holds the state of one program: its global scope, its
// definitions and its open files.
type Interpreter struct {
	env   *object.Environment
	defs  *object.Definitions
	files *xfile.Manager

	program  *ast.Main
	filename string

	stdout   io.Writer
	input    evaluator.LineReader
	logger   *slog.Logger
	workDir  string
	isolated bool
	maxDepth int
}

// Option is a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithStdin sets the reader INPUT statements consume, one line per INPUT.
func WithStdin(r io.Reader) Option {
	return func(i *Interpreter) {
		i.input = evaluator.NewLineReader(r)
	}
}

// WithInput sets the line source of INPUT statements directly.
func WithInput(lr evaluator.LineReader) Option {
	return func(i *Interpreter) {
		i.input = lr
	}
}

// WithStdout sets the writer OUTPUT statements print to.
func WithStdout(w io.Writer) Option {
	return func(i *Interpreter) {
		i.stdout = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interpreter) {
		i.logger = l
	}
}

// WithFrameIsolation makes a routine see only its own frame and the global
// scope instead of every scope on the stack.
func WithFrameIsolation(isolated bool) Option {
	return func(i *Interpreter) {
		i.isolated = isolated
	}
}

// WithWorkDir sets the directory relative file names are resolved against.
func WithWorkDir(dir string) Option {
	return func(i *Interpreter) {
		i.workDir = dir
	}
}

// WithMaxDepth bounds the number of nested calls.
func WithMaxDepth(n int) Option {
	return func(i *Interpreter) {
		i.maxDepth = n
	}
}

// WithConfig applies the settings of a loaded configuration file.
// Options given after it override it.
func WithConfig(cfg *Config) Option {
	return func(i *Interpreter) {
		if cfg == nil {
			return
		}
		i.isolated = cfg.IsolateFrames
		if cfg.WorkDir != "" {
			i.workDir = cfg.WorkDir
		}
		if cfg.MaxDepth > 0 {
			i.maxDepth = cfg.MaxDepth
		}
	}
}

// NewInterpreter creates a new interpreter instance, configured with options.
func NewInterpreter(options ...Option) *Interpreter {
	i := &Interpreter{
		stdout: os.Stdout,
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(i)
	}
	if i.input == nil {
		i.input = evaluator.NewLineReader(os.Stdin)
	}
	i.env = object.NewEnvironment()
	i.env.SetIsolated(i.isolated)
	i.defs = object.NewDefinitions()
	i.files = xfile.NewManager(i.workDir, i.logger)
	return i
}

// Load reads a program document from r. name is used in error positions.
func (i *Interpreter) Load(r io.Reader, name string) error {
	program, err := ast.Decode(r)
	if err != nil {
		return fmt.Errorf("loading %s: %w", name, err)
	}
	i.program = program
	i.filename = name
	return nil
}

// LoadFile reads a program document from the named file.
func (i *Interpreter) LoadFile(filename string) error {
	program, err := ast.DecodeFile(filename)
	if err != nil {
		return fmt.Errorf("loading %s: %w", filename, err)
	}
	i.program = program
	i.filename = filename
	return nil
}

// Eval runs the loaded program. Files left open are closed afterwards,
// whether the program finished or failed. A runtime fault is returned as
// an *object.Error.
func (i *Interpreter) Eval(ctx context.Context) error {
	if i.program == nil {
		return fmt.Errorf("no program loaded")
	}
	i.logger.InfoContext(ctx, "program started", "file", i.filename, "isolated", i.isolated)

	eval := evaluator.New(evaluator.Config{
		Env:      i.env,
		Defs:     i.defs,
		Files:    i.files,
		Stdout:   i.stdout,
		Input:    i.input,
		Logger:   i.logger,
		Filename: i.filename,
		MaxDepth: i.maxDepth,
	})
	runErr := eval.Run(ctx, i.program)
	closeErr := i.files.CloseAll()

	if runErr != nil {
		i.logger.InfoContext(ctx, "program failed", "file", i.filename, "kind", runErr.Kind)
		return runErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing files: %w", closeErr)
	}
	i.logger.InfoContext(ctx, "program finished", "file", i.filename)
	return nil
}

// GlobalEnvForTest returns the global scope. It is intended for tests.
func (i *Interpreter) GlobalEnvForTest() *object.Environment {
	return i.env
}

// Definitions returns the routines and types the program has declared.
func (i *Interpreter) Definitions() *object.Definitions {
	return i.defs
}
