// Package errors carries the diagnostic types shared by every compiler
// phase: the analyzer accumulates them without aborting and the driver
// renders them. I/O failures in the driver abort with plain wrapped Go
// errors, not this envelope.
package errors

import "fmt"

// Kind classifies a diagnostic or failure.
type Kind string

const (
	SyntaxError    Kind = "SyntaxError"
	SemanticError  Kind = "SemanticError"
	TypeError      Kind = "TypeError"
	ReferenceError Kind = "ReferenceError"
	CodegenError   Kind = "CodegenError"
	IOError        Kind = "IOError"
)

// CompiscriptError is a single located diagnostic.
type CompiscriptError struct {
	Kind    Kind
	Line    int
	Message string
}

func (e *CompiscriptError) Error() string {
	return fmt.Sprintf("ERROR L%d: %s", e.Line, e.Message)
}

// New builds a semantic-phase diagnostic; this is the common case callers
// in internal/analyzer reach for.
func New(line int, format string, args ...interface{}) *CompiscriptError {
	return &CompiscriptError{Kind: SemanticError, Line: line, Message: fmt.Sprintf(format, args...)}
}

// NewKind builds a diagnostic of an explicit kind.
func NewKind(kind Kind, line int, format string, args ...interface{}) *CompiscriptError {
	return &CompiscriptError{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
}

// Diagnostics is an append-only, non-aborting error collector. The
// analyzer keeps walking the tree after every recorded violation so that
// one mismatch never prevents later ones from being reported.
type Diagnostics struct {
	errs []*CompiscriptError
}

// Add records a new diagnostic.
func (d *Diagnostics) Add(line int, format string, args ...interface{}) {
	d.errs = append(d.errs, New(line, format, args...))
}

// AddKind records a diagnostic of an explicit kind.
func (d *Diagnostics) AddKind(kind Kind, line int, format string, args ...interface{}) {
	d.errs = append(d.errs, NewKind(kind, line, format, args...))
}

// HasErrors reports whether any diagnostic was recorded.
func (d *Diagnostics) HasErrors() bool { return len(d.errs) > 0 }

// Errors returns the recorded diagnostics in emission order.
func (d *Diagnostics) Errors() []*CompiscriptError { return d.errs }

// Lines renders every diagnostic as `ERROR L<line>: <message>`, the
// format the CLI driver prints and tests match against.
func (d *Diagnostics) Lines() []string {
	lines := make([]string, len(d.errs))
	for i, e := range d.errs {
		lines[i] = e.Error()
	}
	return lines
}
