package services

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStore      = errors.New("store error")
)

// Error carries a message fit for the user alongside its kind and cause.
type Error struct {
	kind    error
	message string
	cause   error
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func newError(kind, cause error, format string, args ...interface{}) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...), cause: cause}
}

func validationError(format string, args ...interface{}) *Error {
	return newError(ErrValidation, nil, format, args...)
}

func notFoundError(format string, args ...interface{}) *Error {
	return newError(ErrNotFound, nil, format, args...)
}

// storeError wraps an unexpected driver failure; the message includes the
// driver's description.
func storeError(action string, cause error) *Error {
	return newError(ErrStore, cause, "Error %s: %v", action, cause)
}
