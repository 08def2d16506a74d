package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/Jax0312/pseudoengine-sub000/pseudo"
	"github.com/Jax0312/pseudoengine-sub000/pseudo/object"
	"github.com/Jax0312/pseudoengine-sub000/pseudo/pseudotest"
)

const usage = `usage: pseudo <command> [flags] <path>

commands:
  run    execute one program document
  check  run every golden program in a directory
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var code int
	switch os.Args[1] {
	case "run":
		code = cmdRun(ctx, os.Args[2:])
	case "check":
		code = cmdCheck(ctx, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		code = 2
	}
	os.Exit(code)
}

type options struct {
	verbose    bool
	configPath string
	isolate    bool
	workDir    string
}

func (o *options) register(fs *flag.FlagSet) {
	fs.BoolVar(&o.verbose, "v", false, "log at debug level")
	fs.StringVar(&o.configPath, "config", "", "path to a YAML config file")
	fs.BoolVar(&o.isolate, "isolate", false, "routines see only their own frame and the global scope")
	fs.StringVar(&o.workDir, "workdir", "", "directory program files are resolved against")
}

// setup builds the logger and the interpreter options. Flags set on the
// command line override the config file.
func (o *options) setup(fs *flag.FlagSet) (*slog.Logger, []pseudo.Option, error) {
	cfg := &pseudo.Config{}
	if o.configPath != "" {
		loaded, err := pseudo.LoadConfig(o.configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "isolate":
			cfg.IsolateFrames = o.isolate
		case "workdir":
			cfg.WorkDir = o.workDir
		case "v":
			if o.verbose {
				cfg.LogLevel = "debug"
			}
		}
	})

	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return logger, []pseudo.Option{pseudo.WithConfig(cfg), pseudo.WithLogger(logger)}, nil
}

func cmdRun(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var o options
	o.register(fs)
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "run: expected one program file")
		return 2
	}

	logger, opts, err := o.setup(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		return 2
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		ln := liner.NewLiner()
		defer ln.Close()
		ln.SetCtrlCAborts(true)
		opts = append(opts, pseudo.WithInput(&terminalInput{ln: ln}))
	} else {
		opts = append(opts, pseudo.WithStdin(os.Stdin))
	}
	opts = append(opts, pseudo.WithStdout(os.Stdout))

	interp := pseudo.NewInterpreter(opts...)
	if err := interp.LoadFile(fs.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		return 1
	}
	if err := interp.Eval(ctx); err != nil {
		var rerr *object.Error
		if errors.As(err, &rerr) {
			fmt.Fprint(os.Stderr, rerr.Inspect())
		} else {
			fmt.Fprintf(os.Stderr, "run: %v\n", err)
		}
		logger.Debug("exit with error", "error", err)
		return 1
	}
	return 0
}

func cmdCheck(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var o options
	o.register(fs)
	jobs := fs.Int("j", 0, "number of programs run at once (0 means GOMAXPROCS)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "check: expected one directory")
		return 2
	}

	logger, opts, err := o.setup(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "check: %v\n", err)
		return 2
	}

	r := &pseudotest.Runner{Limit: *jobs, Options: opts, Logger: logger}
	results, err := r.RunDir(ctx, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "check: %v\n", err)
		return 1
	}

	failed := 0
	for _, res := range results {
		if res.Passed() {
			fmt.Printf("ok   %s\n", res.Case.Name)
			continue
		}
		failed++
		fmt.Printf("FAIL %s\n%s\n", res.Case.Name, res.Diff)
	}
	fmt.Printf("%d passed, %d failed\n", len(results)-failed, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

// terminalInput reads INPUT lines with line editing.
type terminalInput struct {
	ln *liner.State
}

func (t *terminalInput) ReadLine() (string, error) {
	line, err := t.ln.Prompt("")
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", io.EOF
		}
		return "", err
	}
	t.ln.AppendHistory(line)
	return line, nil
}
