// Package apperror defines the error kinds that cross layer boundaries.
// Domain errors wrap one of the kinds with %w; the HTTP boundary maps kinds
// to status codes exactly once.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("authentication error")
	ErrNotFound        = errors.New("not found")
)

// Validation wraps a message as an ErrValidation.
func Validation(format string, args ...interface{}) error {
	return New(ErrValidation, fmt.Sprintf(format, args...))
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// New creates a named domain error belonging to kind. Its Error() is msg alone.
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}
