package llm

import (
	"fmt"
	"strings"
)

// Error wraps a backend failure with the operation that produced it.
type Error struct {
	// Op is the operation that failed ("complete").
	Op string
	// Err is the underlying error.
	Err error
	// Retryable indicates whether the failure looks transient.
	Retryable bool
}

// NewError creates a backend error.
func NewError(op string, err error, retryable bool) *Error {
	return &Error{Op: op, Err: err, Retryable: retryable}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// isRetryableError checks if an error message indicates a transient failure.
func isRetryableError(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range []string{
		"rate limit",
		"overloaded",
		"timeout",
		"temporarily unavailable",
		"connection refused",
		"connection reset",
		"529",
		"503",
	} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
