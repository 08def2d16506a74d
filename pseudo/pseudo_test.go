package pseudo

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Jax0312/pseudoengine-sub000/pseudo/object"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEval(t *testing.T) {
	src := `
- declare: {names: [name], type: STRING}
- input: {var: name}
- output: [[{string: "Hello, "}, {var: name}, {op: "&"}]]
`
	var out bytes.Buffer
	interp := NewInterpreter(
		WithStdin(strings.NewReader("World\n")),
		WithStdout(&out),
		WithLogger(discardLogger()),
	)
	if err := interp.Load(strings.NewReader(src), "hello.yaml"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if err := interp.Eval(context.Background()); err != nil {
		t.Fatalf("Eval() error: %v", err)
	}
	if diff := cmp.Diff("Hello, World\n", out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	v, err := interp.GlobalEnvForTest().Lookup("name")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if diff := cmp.Diff("World", v.Value().Inspect()); diff != "" {
		t.Errorf("global mismatch (-want +got):\n%s", diff)
	}
}

func TestEvalRuntimeError(t *testing.T) {
	src := `
- declare: {names: [x], type: INTEGER}
- assign: {target: {var: x}, value: [{int: 1}, {int: 0}, {op: "/"}]}
`
	interp := NewInterpreter(WithStdout(io.Discard), WithLogger(discardLogger()))
	if err := interp.Load(strings.NewReader(src), "div.yaml"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	err := interp.Eval(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	var rerr *object.Error
	if !errors.As(err, &rerr) {
		t.Fatalf("error %v is not an *object.Error", err)
	}
	if diff := cmp.Diff(object.DivisionByZero, rerr.Kind); diff != "" {
		t.Errorf("kind mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(err.Error(), "div.yaml:3:") {
		t.Errorf("error %q does not start with the program position", err.Error())
	}
}

func TestEvalWithoutProgram(t *testing.T) {
	interp := NewInterpreter(WithLogger(discardLogger()))
	if err := interp.Eval(context.Background()); err == nil {
		t.Error("Eval() without a program succeeded")
	}
}

func TestLoadError(t *testing.T) {
	interp := NewInterpreter(WithLogger(discardLogger()))
	err := interp.Load(strings.NewReader("- jump: {}\n"), "bad.yaml")
	if err == nil || !strings.Contains(err.Error(), "bad.yaml") {
		t.Errorf("Load() error = %v, want it to name the program", err)
	}
}

func TestOpenFilesAreClosed(t *testing.T) {
	dir := t.TempDir()
	src := `
- openfile: {file: [{string: out.txt}], mode: WRITE}
- writefile: {file: [{string: out.txt}], value: [{string: kept}]}
`
	interp := NewInterpreter(WithWorkDir(dir), WithStdout(io.Discard), WithLogger(discardLogger()))
	if err := interp.Load(strings.NewReader(src), "files.yaml"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if err := interp.Eval(context.Background()); err != nil {
		t.Fatalf("Eval() error: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("kept\n", string(got)); diff != "" {
		t.Errorf("file mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pseudo.yaml")
	if err := os.WriteFile(path, []byte("isolate_frames: true\nlog_level: debug\nwork_dir: data\nmax_depth: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	want := &Config{IsolateFrames: true, LogLevel: "debug", WorkDir: "data", MaxDepth: 10}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}
	level, err := cfg.Level()
	if err != nil {
		t.Fatal(err)
	}
	if level != slog.LevelDebug {
		t.Errorf("Level() = %v, want DEBUG", level)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("log_level: loud\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("LoadConfig() accepted an invalid log level")
	}
}

func TestFrameIsolationFromConfig(t *testing.T) {
	src := `
- procedure:
    name: Show
    body:
      - output: [[{var: local}]]
- procedure:
    name: Outer
    body:
      - declare: {names: [local], type: INTEGER}
      - call: {call: {name: Show}}
- call: {call: {name: Outer}}
`
	tests := []struct {
		name     string
		isolated bool
		wantOut  string
		wantErr  object.ErrorKind
	}{
		{"flat lookup sees the caller", false, "0\n", ""},
		{"isolated lookup does not", true, "", object.NotDeclared},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			interp := NewInterpreter(
				WithConfig(&Config{IsolateFrames: tt.isolated}),
				WithStdout(&out),
				WithLogger(discardLogger()),
			)
			if err := interp.Load(strings.NewReader(src), "frames.yaml"); err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			err := interp.Eval(context.Background())
			var got object.ErrorKind
			var rerr *object.Error
			if errors.As(err, &rerr) {
				got = rerr.Kind
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.wantErr, got); diff != "" {
				t.Errorf("error kind mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantOut, out.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMaxDepth(t *testing.T) {
	src := `
- procedure:
    name: Loop
    body:
      - call: {call: {name: Loop}}
- call: {call: {name: Loop}}
`
	interp := NewInterpreter(WithMaxDepth(10), WithStdout(io.Discard), WithLogger(discardLogger()))
	if err := interp.Load(strings.NewReader(src), "deep.yaml"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	err := interp.Eval(context.Background())
	if !errors.Is(err, &object.Error{Kind: object.InvalidOperation}) {
		t.Errorf("Eval() error = %v, want InvalidOperation", err)
	}
	if got := interp.GlobalEnvForTest().Depth(); got != 1 {
		t.Errorf("Depth() after the failed run = %d, want 1", got)
	}
}
