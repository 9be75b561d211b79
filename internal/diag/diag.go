// Package diag defines the diagnostic interface the core consumes and a
// small in-memory engine that accumulates diagnostics reported against
// it.
//
// Rendering — expanding %select{a|b|c}N / %sN / %ordinalN / %plural{…}N
// substitution slots and formatting a source location into text — is
// explicitly an external collaborator's job: this package only stores
// the level, location, message template, and substitution arguments,
// and forwards them verbatim to whatever Sink the embedder supplies.
// The core never formats a diagnostic into a string itself.
package diag

import (
	"errors"

	"github.com/hashicorp/go-multierror"
)

// Level is a diagnostic's severity.
type Level int

const (
	Note Level = iota
	Warning
	Error
	Fatal
)

func (l Level) String() string {
	switch l {
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

// Loc is a source location. The lexer/parser own real location
// construction; the core only carries locations through to diagnostics
// and AST nodes.
type Loc struct {
	File string
	Line int
	Col  int
}

// Diagnostic is one reported finding, in unrendered form.
type Diagnostic struct {
	Level   Level
	Loc     Loc
	Message string // a format string with %0, %1, ... and %select{}/%sN/... slots
	Args    []any
}

// Sink is the diagnostic interface the core consumes. A renderer
// (out of scope for this core) implements Sink to format and emit
// diagnostics; Engine itself also satisfies Sink so it can be used
// standalone in tests.
type Sink interface {
	Report(d Diagnostic)
}

// Engine accumulates diagnostics reported during one translation unit's
// construction and tracks the persistent "had errors" flag plus an
// optional fatal-diagnostic threshold, whose crossing is reported by
// FatalThresholdExceeded. Reaching the threshold does not by itself stop
// construction.
type Engine struct {
	sink           Sink
	diags          []Diagnostic
	hadErrors      bool
	fatalCount     int
	fatalThreshold int
}

// NewEngine creates an Engine. sink may be nil, in which case
// diagnostics are only buffered (retrievable via Diagnostics) and not
// forwarded anywhere. fatalThreshold <= 0 means "no threshold".
func NewEngine(sink Sink, fatalThreshold int) *Engine {
	return &Engine{sink: sink, fatalThreshold: fatalThreshold}
}

// Report records d, updates hadErrors/fatalCount, and forwards to the
// configured sink if any.
func (e *Engine) Report(level Level, loc Loc, message string, args ...any) {
	d := Diagnostic{Level: level, Loc: loc, Message: message, Args: args}
	e.diags = append(e.diags, d)
	if level == Error || level == Fatal {
		e.hadErrors = true
	}
	if level == Fatal {
		e.fatalCount++
	}
	if e.sink != nil {
		e.sink.Report(d)
	}
}

// HadErrors reports whether any Error or Fatal diagnostic was ever
// reported. A caller checks this before invoking the backend.
func (e *Engine) HadErrors() bool {
	return e.hadErrors
}

// FatalThresholdExceeded reports whether the configured fatal-diagnostic
// threshold has been reached.
func (e *Engine) FatalThresholdExceeded() bool {
	return e.fatalThreshold > 0 && e.fatalCount >= e.fatalThreshold
}

// Diagnostics returns every diagnostic reported so far, in report order:
// construction is single-threaded and sequential, so report order is
// source order.
func (e *Engine) Diagnostics() []Diagnostic {
	return e.diags
}

// Batch combines several independently-reported failure messages into a
// single error, for call sites that need one error value out of a batch
// (e.g. several unresolved labels at scope-unit end). An empty batch
// yields a nil error.
func Batch(messages []string) error {
	if len(messages) == 0 {
		return nil
	}
	var result *multierror.Error
	for _, m := range messages {
		result = multierror.Append(result, errors.New(m))
	}
	return result.ErrorOrNil()
}
