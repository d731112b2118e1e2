package types

import (
	"errors"
	"fmt"
	"sort"
)

// ErrorCode represents a Molang diagnostic code.
type ErrorCode string

// Diagnostic codes.
const (
	// S01xx: Lexical errors
	ErrStringNotClosed  ErrorCode = "S0101"
	ErrInvalidNumber    ErrorCode = "S0102"
	ErrUnknownCharacter ErrorCode = "S0103"
	ErrCommentNotClosed ErrorCode = "S0106"

	// S02xx: Syntax errors
	ErrExpectedToken       ErrorCode = "S0202"
	ErrExpectedExpression  ErrorCode = "S0203"
	ErrMissingSemicolon    ErrorCode = "S0204"
	ErrInvalidAssignTarget ErrorCode = "S0205"
	ErrEmptyParentheses    ErrorCode = "S0206"
	ErrLoopInExpression    ErrorCode = "S0207"
	ErrForEachVariable     ErrorCode = "S0208"

	// S03xx: Parser limits
	ErrDepthExceeded ErrorCode = "S0301"

	// T0xxx: Semantic errors
	ErrArgumentCountMismatch ErrorCode = "T0410"
	ErrUnknownFunction       ErrorCode = "T0411"
	ErrUnknownNamespace      ErrorCode = "T0412"
	ErrNotCallable           ErrorCode = "T0413"
	ErrNotIndexable          ErrorCode = "T0414"
	ErrMissingIndex          ErrorCode = "T0415"
	ErrUnavailableFunction   ErrorCode = "T0430"
	ErrInvalidTypeOperation  ErrorCode = "T1003"
	ErrContextReadOnly       ErrorCode = "T2002"
	ErrBreakOutsideLoop      ErrorCode = "T3001"
	ErrContinueOutsideLoop   ErrorCode = "T3002"
	ErrEmptyBlock            ErrorCode = "T3003"
)

// Severity is the severity of a diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns a string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is a structured syntax or semantic error.
// It never contains source text; Span locates the problem.
type Diagnostic struct {
	Code     ErrorCode
	Severity Severity
	Span     Span
	Message  string
	Hint     string
}

// NewDiagnostic creates a new error-level diagnostic.
func NewDiagnostic(code ErrorCode, span Span, message string) *Diagnostic {
	return &Diagnostic{
		Code:    code,
		Span:    span,
		Message: message,
	}
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s at %s: %s", d.Code, d.Span, d.Message)
}

// WithHint adds a suggestion to the diagnostic.
func (d *Diagnostic) WithHint(hint string) *Diagnostic {
	d.Hint = hint
	return d
}

// WithSeverity changes the severity of the diagnostic.
func (d *Diagnostic) WithSeverity(s Severity) *Diagnostic {
	d.Severity = s
	return d
}

// Diagnostics is a list of diagnostics in report order.
type Diagnostics []*Diagnostic

// HasErrors reports whether any diagnostic has error severity.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Sort orders the diagnostics by span start, keeping report order for ties.
func (ds Diagnostics) Sort() {
	sort.SliceStable(ds, func(i, j int) bool {
		return ds[i].Span.Start < ds[j].Span.Start
	})
}

// Err joins the diagnostics into a single error, or returns nil when empty.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	errs := make([]error, len(ds))
	for i, d := range ds {
		errs[i] = d
	}
	return errors.Join(errs...)
}
