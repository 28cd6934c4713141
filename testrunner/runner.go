// Package testrunner executes .lox conformance scripts. Each script carries
// its expectations in a YAML frontmatter comment:
//
//	/*---
//	description: closures share captured variables
//	expect: ["1", "2"]
//	error:
//	  phase: runtime
//	  message: Division by zero.
//	---*/
package testrunner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/loxgo/diag"
	"github.com/example/loxgo/interpreter"
	"github.com/example/loxgo/lexer"
	"github.com/example/loxgo/parser"
	"github.com/example/loxgo/runtime"
)

const DefaultTimeout = 5 * time.Second

type Result int

const (
	Pass Result = iota
	Fail
	Skip
	Error
)

func (r Result) String() string {
	switch r {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Skip:
		return "SKIP"
	case Error:
		return "ERROR"
	}
	return "UNKNOWN"
}

type TestResult struct {
	Path    string
	Result  Result
	Message string
	Elapsed time.Duration
}

type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Errors  int
	Elapsed time.Duration
}

type Config struct {
	Dir     string
	Filter  string        // substring of the path relative to Dir
	Limit   int           // 0 = all
	Timeout time.Duration // per script; 0 = DefaultTimeout
	Verbose bool
	Out     io.Writer // verbose progress; nil = os.Stdout
}

// Run discovers and runs every .lox script under cfg.Dir.
func Run(cfg Config) ([]TestResult, Summary, error) {
	files, err := discover(cfg)
	if err != nil {
		return nil, Summary{}, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	start := time.Now()
	var results []TestResult
	var summary Summary
	summary.Total = len(files)

	for _, path := range files {
		rel, _ := filepath.Rel(cfg.Dir, path)
		tr := runSingleTest(path, cfg.Timeout)
		tr.Path = rel
		results = append(results, tr)

		switch tr.Result {
		case Pass:
			summary.Passed++
		case Fail:
			summary.Failed++
		case Skip:
			summary.Skipped++
		case Error:
			summary.Errors++
		}

		if cfg.Verbose {
			fmt.Fprintln(out, tr)
		}
	}

	summary.Elapsed = time.Since(start)
	return results, summary, nil
}

func (tr TestResult) String() string {
	if tr.Message == "" {
		return fmt.Sprintf("%s %s", tr.Result, tr.Path)
	}
	return fmt.Sprintf("%s %s %s", tr.Result, tr.Path, tr.Message)
}

func discover(cfg Config) ([]string, error) {
	var files []string
	err := filepath.WalkDir(cfg.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".lox") {
			return nil
		}
		if cfg.Filter != "" {
			rel, _ := filepath.Rel(cfg.Dir, path)
			if !strings.Contains(rel, cfg.Filter) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("testrunner: walk %s: %w", cfg.Dir, err)
	}
	if cfg.Limit > 0 && len(files) > cfg.Limit {
		files = files[:cfg.Limit]
	}
	return files, nil
}

type evalResult struct {
	stdout      string
	diagnostics []*diag.Diagnostic
	err         error
}

func runSingleTest(path string, timeout time.Duration) TestResult {
	source, err := os.ReadFile(path)
	if err != nil {
		return TestResult{Result: Error, Message: "read error: " + err.Error()}
	}

	meta, err := ParseMetadata(string(source))
	if err != nil {
		return TestResult{Result: Error, Message: err.Error()}
	}
	if meta.Skip != "" {
		return TestResult{Result: Skip, Message: meta.Skip}
	}

	start := time.Now()
	resultCh := make(chan evalResult, 1)
	go func() {
		var stdout bytes.Buffer
		reporter := diag.NewReporter(nil)
		interp := interpreter.New(interpreter.WithOutput(&stdout), interpreter.WithReporter(reporter))
		err := interp.Run(stripFrontmatter(string(source)))
		resultCh <- evalResult{stdout: stdout.String(), diagnostics: reporter.Diagnostics(), err: err}
	}()

	var res evalResult
	select {
	case res = <-resultCh:
	case <-time.After(timeout):
		return TestResult{
			Result:  Error,
			Message: fmt.Sprintf("timeout (%s)", timeout),
			Elapsed: time.Since(start),
		}
	}

	tr := check(meta, res)
	tr.Elapsed = time.Since(start)
	return tr
}

func check(meta Metadata, res evalResult) TestResult {
	if msg := checkError(meta.Error, res); msg != "" {
		return TestResult{Result: Fail, Message: msg}
	}

	got := splitLines(res.stdout)
	want := meta.Expect
	if len(got) != len(want) {
		return TestResult{Result: Fail, Message: fmt.Sprintf("expected %d output line(s), got %d: %q", len(want), len(got), got)}
	}
	for i := range want {
		if got[i] != want[i] {
			return TestResult{Result: Fail, Message: fmt.Sprintf("line %d: expected %q, got %q", i+1, want[i], got[i])}
		}
	}
	return TestResult{Result: Pass}
}

// checkError returns a failure description, or "" when the run ended the way
// the expectation says.
func checkError(want *ErrorExpectation, res evalResult) string {
	if want == nil {
		if res.err != nil {
			return "unexpected error: " + describe(res)
		}
		return ""
	}
	if res.err == nil {
		return fmt.Sprintf("expected %s error %q, got none", want.Phase, want.Message)
	}

	var phaseOK bool
	switch want.Phase {
	case PhaseStatic:
		phaseOK = errors.Is(res.err, lexer.ErrScan) || errors.Is(res.err, parser.ErrSyntax)
	case PhaseRuntime:
		var rtErr *runtime.Error
		phaseOK = errors.As(res.err, &rtErr)
	}
	if !phaseOK {
		return fmt.Sprintf("expected %s error, got: %s", want.Phase, describe(res))
	}
	if want.Message == "" {
		return ""
	}
	for _, d := range res.diagnostics {
		if d.Message == want.Message {
			return ""
		}
	}
	return fmt.Sprintf("expected %s error %q, got: %s", want.Phase, want.Message, describe(res))
}

func describe(res evalResult) string {
	if len(res.diagnostics) == 0 {
		return res.err.Error()
	}
	parts := make([]string, len(res.diagnostics))
	for i, d := range res.diagnostics {
		parts[i] = strings.ReplaceAll(d.Error(), "\n", " ")
	}
	return strings.Join(parts, "; ")
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// ---------- Frontmatter ----------

// stripFrontmatter blanks the frontmatter block, which is not valid source.
// Newlines are kept so diagnostics report the script's own line numbers.
func stripFrontmatter(source string) string {
	startIdx := strings.Index(source, "/*---")
	if startIdx < 0 {
		return source
	}
	endIdx := strings.Index(source[startIdx:], "---*/")
	if endIdx < 0 {
		return source
	}
	end := startIdx + endIdx + len("---*/")
	blank := strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		return ' '
	}, source[startIdx:end])
	return source[:startIdx] + blank + source[end:]
}

const (
	PhaseStatic  = "static"
	PhaseRuntime = "runtime"
)

// Metadata from the script's YAML frontmatter
type Metadata struct {
	Description string            `yaml:"description"`
	Expect      []string          `yaml:"expect"`
	Error       *ErrorExpectation `yaml:"error"`
	Skip        string            `yaml:"skip"` // reason; empty runs the script
}

type ErrorExpectation struct {
	Phase   string `yaml:"phase"`
	Message string `yaml:"message"`
}

// ErrNoFrontmatter is returned for scripts without a /*--- ... ---*/ block.
var ErrNoFrontmatter = errors.New("missing /*--- ---*/ frontmatter")

// ParseMetadata decodes the frontmatter between /*--- and ---*/.
func ParseMetadata(source string) (Metadata, error) {
	var meta Metadata

	startIdx := strings.Index(source, "/*---")
	if startIdx < 0 {
		return meta, ErrNoFrontmatter
	}
	endIdx := strings.Index(source[startIdx:], "---*/")
	if endIdx < 0 {
		return meta, ErrNoFrontmatter
	}
	block := source[startIdx+5 : startIdx+endIdx]

	decoder := yaml.NewDecoder(strings.NewReader(block))
	decoder.KnownFields(true)
	if err := decoder.Decode(&meta); err != nil && !errors.Is(err, io.EOF) {
		return meta, fmt.Errorf("frontmatter: %w", err)
	}
	if meta.Error != nil && meta.Error.Phase != PhaseStatic && meta.Error.Phase != PhaseRuntime {
		return meta, fmt.Errorf("frontmatter: error.phase must be %q or %q, got %q", PhaseStatic, PhaseRuntime, meta.Error.Phase)
	}
	return meta, nil
}
