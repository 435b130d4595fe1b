// Package diag implements the diagnostic engine collaborator of spec.md §6.2:
// a reporter that accepts a severity, a templated message, and a source
// range, and a verifier used by tests to assert on emitted diagnostics.
package diag

import (
	"fmt"
	"strconv"
	"strings"

	"fox/source"
)

type Severity int

const (
	Ignored Severity = iota
	Note
	Warning
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Ignored:
		return "ignored"
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Diagnostic is a single reported message: a severity, a fully-substituted
// message, and the source range it is anchored to.
type Diagnostic struct {
	Severity Severity
	Message  string
	Range    source.Range
}

// Policy controls how the engine treats incoming diagnostics.
type Policy struct {
	WarningsAsErrors bool
	ErrorsAsFatal    bool
	ErrorLimit       int // 0 = unlimited
}

// Engine collects and renders diagnostics. It is owned by one compilation
// unit for its lifetime (spec.md §5).
type Engine struct {
	Policy   Policy
	Sources  *source.Manager
	emitted  []Diagnostic
	errCount int
	sawFatal bool
	verifier *Verifier
}

func NewEngine(sources *source.Manager) *Engine {
	return &Engine{Sources: sources}
}

// SetVerifier installs a DiagnosticVerifier that intercepts every emitted
// diagnostic (see Verify in verifier.go). Used only by tests.
func (e *Engine) SetVerifier(v *Verifier) { e.verifier = v }

// Builder accumulates %N-substituted arguments for a single diagnostic before
// it is emitted on Emit; a Builder that is never emitted records nothing.
type Builder struct {
	engine   *Engine
	severity Severity
	template string
	rng      source.Range
	args     []string
}

// Report begins building a diagnostic of the given severity anchored at rng.
// template may contain numbered placeholders %0, %1, ... substituted by
// AddArg calls, in call order.
func (e *Engine) Report(severity Severity, rng source.Range, template string) *Builder {
	return &Builder{engine: e, severity: severity, template: template, rng: rng}
}

func (b *Builder) AddArg(value any) *Builder {
	b.args = append(b.args, fmt.Sprint(value))
	return b
}

// Emit substitutes placeholders and records the diagnostic, applying engine
// policy (severity escalation, fatal-short-circuit, error cap).
func (b *Builder) Emit() {
	severity := b.severity
	if severity == Warning && b.engine.Policy.WarningsAsErrors {
		severity = Error
	}
	if severity == Error && b.engine.Policy.ErrorsAsFatal {
		severity = Fatal
	}

	if b.engine.sawFatal {
		return
	}
	if severity == Error && b.engine.Policy.ErrorLimit > 0 && b.engine.errCount >= b.engine.Policy.ErrorLimit {
		return
	}

	d := Diagnostic{Severity: severity, Message: substitute(b.template, b.args), Range: b.rng}

	if b.engine.verifier != nil && !b.engine.verifier.Verify(d) {
		return
	}

	b.engine.emitted = append(b.engine.emitted, d)
	if severity == Error {
		b.engine.errCount++
	}
	if severity == Fatal {
		b.engine.sawFatal = true
	}
}

// Emitted returns every diagnostic recorded so far, in emission order.
func (e *Engine) Emitted() []Diagnostic { return e.emitted }

// HasErrors reports whether any Error or Fatal diagnostic was recorded.
func (e *Engine) HasErrors() bool { return e.errCount > 0 || e.sawFatal }

func substitute(template string, args []string) string {
	var b strings.Builder
	for i := 0; i < len(template); i++ {
		if template[i] == '%' && i+1 < len(template) && isDigit(template[i+1]) {
			j := i + 1
			for j < len(template) && isDigit(template[j]) {
				j++
			}
			idx, err := strconv.Atoi(template[i+1 : j])
			if err == nil && idx < len(args) {
				b.WriteString(args[idx])
				i = j - 1
				continue
			}
		}
		b.WriteByte(template[i])
	}
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Render formats a diagnostic the way the CLI driver prints it:
// "path:line:col: severity: message".
func (e *Engine) Render(d Diagnostic) string {
	loc := e.Sources.String(d.Range.Begin)
	return fmt.Sprintf("%s: %s: %s", loc, d.Severity, d.Message)
}
