package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidConfig = errors.New("invalid config")
	ErrParse         = errors.New("parse error")
	ErrExecution     = errors.New("execution error")
	ErrTimeout       = errors.New("timeout")
	ErrCheckFailed   = errors.New("check failed")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindInvalidConfig ErrorKind = "invalid_config"
	KindParse         ErrorKind = "parse"
	KindExecution     ErrorKind = "execution"
	KindTimeout       ErrorKind = "timeout"
	KindCheckFailed   ErrorKind = "check_failed"
)

// OpError wraps an underlying error with operation context and a kind.
// Location, when set, is a "file:line:col" reference into module source.
type OpError struct {
	Op       string
	Kind     ErrorKind
	Path     string // Optional: relevant file path
	Location string // Optional: source position of the failure
	Err      error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind helps callers classify errors without depending on infra packages.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// LocationOf returns the source location carried by err, if any.
func LocationOf(err error) string {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Location
	}
	return ""
}

// ExitCode maps an error to the documented process exit codes:
// nil -> 0, a verified check failure -> 1, anything else -> 2.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrCheckFailed) || IsKind(err, KindCheckFailed):
		return 1
	default:
		return 2
	}
}
