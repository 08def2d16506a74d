// Package pseudotest runs golden-output programs.
//
// A case is a program document NAME.yaml next to the files that describe
// its expected behaviour:
//
//	NAME.out  expected OUTPUT text (required)
//	NAME.in   lines fed to INPUT (optional)
//	NAME.err  expected runtime error kind, e.g. DivisionByZero (optional)
//
// Every case runs in its own interpreter and its own scratch directory, so
// cases may run concurrently.
package pseudotest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	"github.com/Jax0312/pseudoengine-sub000/pseudo"
	"github.com/Jax0312/pseudoengine-sub000/pseudo/object"
)

// Case is one golden program.
type Case struct {
	Name      string
	Program   string
	Input     string
	WantOut   string
	WantError object.ErrorKind
}

// Result is the outcome of one case. Diff is empty when the case passed.
type Result struct {
	Case   *Case
	Output string
	Err    error
	Diff   string
}

// Passed reports whether the program behaved as expected.
func (r *Result) Passed() bool { return r.Diff == "" }

// Discover collects the cases in dir, sorted by name.
func Discover(dir string) ([]*Case, error) {
	programs, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(programs)

	cases := make([]*Case, 0, len(programs))
	for _, program := range programs {
		base := strings.TrimSuffix(program, ".yaml")
		c := &Case{Name: filepath.Base(base), Program: program}

		out, err := os.ReadFile(base + ".out")
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Name, err)
		}
		c.WantOut = string(out)

		in, err := readOptional(base + ".in")
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Name, err)
		}
		c.Input = in
		kind, err := readOptional(base + ".err")
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Name, err)
		}
		c.WantError = object.ErrorKind(strings.TrimSpace(kind))
		cases = append(cases, c)
	}
	return cases, nil
}

func readOptional(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	return string(data), err
}

// Runner executes cases concurrently.
type Runner struct {
	// Limit bounds the number of programs running at once.
	// Zero means GOMAXPROCS.
	Limit int
	// Options are applied to every interpreter after the runner's own.
	Options []pseudo.Option
	Logger  *slog.Logger
}

// Run executes every case and returns the results in case order.
// The error is only set for failures outside the programs themselves,
// such as a cancelled context.
func (r *Runner) Run(ctx context.Context, cases []*Case) ([]*Result, error) {
	limit := r.Limit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	results := make([]*Result, len(cases))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.runCase(ctx, c, logger.With("case", c.Name))
			if err != nil {
				return fmt.Errorf("case %s: %w", c.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) runCase(ctx context.Context, c *Case, logger *slog.Logger) (*Result, error) {
	dir, err := os.MkdirTemp("", "pseudotest-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	var out bytes.Buffer
	opts := append([]pseudo.Option{
		pseudo.WithStdin(strings.NewReader(c.Input)),
		pseudo.WithStdout(&out),
		pseudo.WithWorkDir(dir),
		pseudo.WithLogger(logger),
	}, r.Options...)
	interp := pseudo.NewInterpreter(opts...)

	res := &Result{Case: c}
	if err := interp.LoadFile(c.Program); err != nil {
		res.Err = err
		res.Diff = fmt.Sprintf("load failed: %v", err)
		return res, nil
	}
	res.Err = interp.Eval(ctx)
	res.Output = out.String()

	var gotKind object.ErrorKind
	var rerr *object.Error
	if errors.As(res.Err, &rerr) {
		gotKind = rerr.Kind
	} else if res.Err != nil {
		gotKind = "<error>"
	}

	var diffs []string
	if diff := cmp.Diff(c.WantError, gotKind); diff != "" {
		diffs = append(diffs, fmt.Sprintf("error kind mismatch (-want +got):\n%s", diff))
	}
	if diff := cmp.Diff(c.WantOut, res.Output); diff != "" {
		diffs = append(diffs, fmt.Sprintf("output mismatch (-want +got):\n%s", diff))
	}
	res.Diff = strings.Join(diffs, "\n")
	return res, nil
}

// RunDir discovers and runs the cases in dir.
func (r *Runner) RunDir(ctx context.Context, dir string) ([]*Result, error) {
	cases, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, cases)
}
