package common

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord marks a single bad input line. Callers skip and log it.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrConfiguration is fatal and is raised before any locus is processed.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrInputMismatch is fatal: inputs that make the summary meaningless, such as a
	// zero assembly size.
	ErrInputMismatch = errors.New("input mismatch")
)

// RecordError describes why one input line was rejected.
type RecordError struct {
	Source string
	Line   int
	Field  string
	Reason string
}

func (e *RecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s:%d: %s: %s", e.Source, e.Line, e.Field, e.Reason)
}

func (e *RecordError) Unwrap() error {
	return ErrMalformedRecord
}

// ConfigError builds an ErrConfiguration-wrapped error.
func ConfigError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// InputMismatchError builds an ErrInputMismatch-wrapped error.
func InputMismatchError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInputMismatch, fmt.Sprintf(format, args...))
}
