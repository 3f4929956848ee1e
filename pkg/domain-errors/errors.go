// Package domainerrors provides coded errors shared across service boundaries.
//
// Services return these (or wrap infrastructure errors into them) so the
// transport layer can translate outcomes into HTTP responses without peeking at
// implementation details. The codes are the externally visible error taxonomy;
// callers never see anything else.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure. The string value is what callers see in
// the response envelope.
type Code string

const (
	CodeValidation     Code = "VALIDATION_ERROR"
	CodeAuthentication Code = "AUTHENTICATION_ERROR"
	CodeRateLimit      Code = "RATE_LIMIT_ERROR"
	CodeUpstream       Code = "UPSTREAM_ERROR"
	CodeTimeout        Code = "TIMEOUT_ERROR"
	CodeInternal       Code = "INTERNAL_ERROR"
)

// Error is a coded error. Message is safe to expose to callers; the wrapped
// error is for logs only.
type Error struct {
	Code    Code
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.err
}

// New creates a coded error with a caller-safe message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and caller-safe message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, err: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readable alias for HasCode in test assertions.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal for
// errors that were never classified.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
