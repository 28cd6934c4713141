// Package diag collects the diagnostics produced while scanning, parsing and
// running a program. A Reporter replaces a process-wide "had error" flag: each
// run owns one and the caller inspects it to choose an exit status.
package diag

import (
	"fmt"
	"io"

	"github.com/example/loxgo/token"
)

type Phase int

const (
	Static Phase = iota
	Runtime
)

func (p Phase) String() string {
	if p == Runtime {
		return "runtime"
	}
	return "static"
}

// Diagnostic is one reported problem. Where is a location hint such as
// " at 'foo'" or " at end" and may be empty.
type Diagnostic struct {
	Phase   Phase
	Line    int
	Where   string
	Message string
}

func (d *Diagnostic) Error() string {
	if d.Phase == Runtime {
		return fmt.Sprintf("%s\n[line %d]", d.Message, d.Line)
	}
	return fmt.Sprintf("[line %d] Error%s: %s", d.Line, d.Where, d.Message)
}

type Reporter struct {
	out         io.Writer
	diagnostics []*Diagnostic
	hadError    bool
	hadRuntime  bool
}

// NewReporter returns a Reporter writing each diagnostic to out as it
// arrives. A nil out only records.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Error reports a static error with no token context (scanner errors).
func (r *Reporter) Error(line int, message string) {
	r.report(&Diagnostic{Phase: Static, Line: line, Message: message})
}

// ErrorAt reports a static error located at tok.
func (r *Reporter) ErrorAt(tok token.Token, message string) {
	where := fmt.Sprintf(" at '%s'", tok.Lexeme)
	if tok.Type == token.EOF {
		where = " at end"
	}
	r.report(&Diagnostic{Phase: Static, Line: tok.Line, Where: where, Message: message})
}

func (r *Reporter) RuntimeError(line int, message string) {
	r.report(&Diagnostic{Phase: Runtime, Line: line, Message: message})
}

func (r *Reporter) report(d *Diagnostic) {
	if r == nil {
		return
	}
	r.diagnostics = append(r.diagnostics, d)
	if d.Phase == Runtime {
		r.hadRuntime = true
	} else {
		r.hadError = true
	}
	if r.out != nil {
		fmt.Fprintln(r.out, d.Error())
	}
}

// HadError reports whether any static (scan or parse) error was recorded.
func (r *Reporter) HadError() bool { return r != nil && r.hadError }

func (r *Reporter) HadRuntimeError() bool { return r != nil && r.hadRuntime }

func (r *Reporter) Diagnostics() []*Diagnostic {
	if r == nil {
		return nil
	}
	return r.diagnostics
}

// Reset clears recorded diagnostics and flags. The REPL calls it between lines.
func (r *Reporter) Reset() {
	if r == nil {
		return
	}
	r.diagnostics = nil
	r.hadError = false
	r.hadRuntime = false
}
