package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	goruntime "runtime"
	"strings"

	"github.com/peterh/liner"

	"github.com/example/loxgo/ast"
	"github.com/example/loxgo/config"
	"github.com/example/loxgo/diag"
	"github.com/example/loxgo/interpreter"
	"github.com/example/loxgo/lexer"
	"github.com/example/loxgo/parser"
	"github.com/example/loxgo/runtime"
)

const version = "0.1.0"

// Exit statuses follow sysexits(3).
const (
	exitOK       = 0
	exitUsage    = 64
	exitDataErr  = 65
	exitNoInput  = 66
	exitSoftware = 70
	exitConfig   = 78
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("loxgo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML config file (default $HOME/"+config.FileName+")")
	dumpAST := fs.Bool("ast", false, "parse only and print the AST as s-expressions")
	evalCode := fs.String("e", "", "run inline source code")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: loxgo [options] [script]\n")
		fmt.Fprintf(stderr, "       loxgo -e \"code\"\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return exitUsage
	}

	evalSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "e" {
			evalSet = true
		}
	})
	if evalSet && fs.NArg() > 0 {
		fs.Usage()
		return exitUsage
	}

	var source string
	haveSource := true
	switch {
	case evalSet:
		source = *evalCode
	case fs.NArg() == 1:
		data, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "Error reading file: %v\n", err)
			return exitNoInput
		}
		source = string(data)
	default:
		haveSource = false
	}

	if *dumpAST && !haveSource {
		fmt.Fprintln(stderr, "loxgo: -ast needs a script or -e")
		fs.Usage()
		return exitUsage
	}
	if haveSource {
		if *dumpAST {
			return printAST(source, stdout, stderr)
		}
		return runSource(source, stdout, stderr)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}
	return runREPL(cfg, stdout, stderr)
}

func runSource(source string, stdout, stderr io.Writer) int {
	interp := interpreter.New(
		interpreter.WithOutput(stdout),
		interpreter.WithReporter(diag.NewReporter(stderr)),
	)
	return exitStatus(interp.Run(source), stderr)
}

// exitStatus maps a Run error to a process status. Static and runtime
// errors have already been reported; faults have not.
func exitStatus(err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, lexer.ErrScan) || errors.Is(err, parser.ErrSyntax) {
		return exitDataErr
	}
	var rtErr *runtime.Error
	if !errors.As(err, &rtErr) {
		fmt.Fprintf(stderr, "Fatal: %v\n", err)
	}
	return exitSoftware
}

func printAST(source string, stdout, stderr io.Writer) int {
	reporter := diag.NewReporter(stderr)
	tokens, scanErr := lexer.Tokenize(source, reporter)
	program, errs := parser.New(tokens, reporter).ParseProgram()
	if scanErr != nil || len(errs) > 0 {
		return exitDataErr
	}
	fmt.Fprint(stdout, ast.PrintProgram(program))
	return exitOK
}

// ---------- REPL ----------

// lineReader is the part of *liner.State the loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func runREPL(cfg *config.Config, stdout, stderr io.Writer) int {
	if cfg.Banner {
		fmt.Fprintf(stdout, "loxgo %s (%s/%s)\n", version, goruntime.GOOS, goruntime.GOARCH)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := cfg.HistoryPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	repl(ln, cfg, stdout, stderr)

	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}
	return exitOK
}

// repl evaluates one line at a time against a single interpreter, so
// globals persist. Errors are reported and the loop continues.
func repl(ln lineReader, cfg *config.Config, stdout, stderr io.Writer) {
	errOut := stderr
	if cfg.Color {
		errOut = redWriter{stderr}
	}
	interp := interpreter.New(
		interpreter.WithOutput(stdout),
		interpreter.WithReporter(diag.NewReporter(errOut)),
	)

	for {
		line, err := ln.Prompt(cfg.Prompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(stdout)
			return
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintf(stderr, "Error reading line: %v\n", err)
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)

		if err := interp.Run(line); err != nil {
			var rtErr *runtime.Error
			if !errors.Is(err, lexer.ErrScan) && !errors.Is(err, parser.ErrSyntax) && !errors.As(err, &rtErr) {
				fmt.Fprintf(errOut, "Fatal: %v\n", err)
			}
		}
		interp.Reporter().Reset()
	}
}

func red(s string) string { return "\x1b[31m" + s + "\x1b[0m" }

// redWriter colors each write. The reporter writes one diagnostic per call.
type redWriter struct{ w io.Writer }

func (r redWriter) Write(p []byte) (int, error) {
	text := strings.TrimSuffix(string(p), "\n")
	suffix := string(p[len(text):])
	if _, err := io.WriteString(r.w, red(text)+suffix); err != nil {
		return 0, err
	}
	return len(p), nil
}
