// Package identity mints generation-qualified identity tokens for objects.
package identity

import (
	"errors"
	"fmt"
)

// Error is a structured library error with a stable error code.
type Error struct {
	Code    string // Error code (e.g., "IDK-KEY-4000")
	Message string // Human-readable message
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support; errors match by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *Error) WithCause(cause error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
	}
}

// IsError checks if err is an Error with the given code.
// If code is empty, it only checks whether err is an Error at all.
func IsError(err error, code string) bool {
	var ie *Error
	if errors.As(err, &ie) {
		if code == "" {
			return true
		}
		return ie.Code == code
	}
	return false
}

var (
	// ErrInvalidKey indicates a key object that cannot carry a stable
	// identity. It is raised synchronously at mint time and never retried.
	ErrInvalidKey = NewError("IDK-KEY-4000", "key object has no stable identity")
)
