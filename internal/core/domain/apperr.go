package domain

import (
	"fmt"
	"net/http"
)

// AppError is an error with an HTTP status code attached and a flag marking
// it as operational (expected, safe to show the client) as opposed to a
// programming or infrastructure failure.
type AppError struct {
	Code        int
	Message     string
	Operational bool
	Cause       error
}

// NewAppError creates an operational AppError with the given message and code.
func NewAppError(message string, code int) *AppError {
	return &AppError{Code: code, Message: message, Operational: true}
}

func (e *AppError) Error() string { return e.Message }

// Unwrap lets errors.Is and errors.As traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// Status returns the status class derived from the code: "fail" for 4xx,
// "error" for everything else.
func (e *AppError) Status() string {
	if e.Code >= 400 && e.Code < 500 {
		return "fail"
	}
	return "error"
}

// WithCause attaches the underlying error for server-side logging; the cause
// is never rendered to clients.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func BadRequest(format string, args ...any) *AppError {
	return NewAppError(fmt.Sprintf(format, args...), http.StatusBadRequest)
}

func Unauthorized(message string) *AppError {
	return NewAppError(message, http.StatusUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(message, http.StatusForbidden)
}

func NotFound(message string) *AppError {
	return NewAppError(message, http.StatusNotFound)
}

func TooManyRequests(message string) *AppError {
	return NewAppError(message, http.StatusTooManyRequests)
}

// Internal wraps an unexpected error. It is NOT operational: the
// normalization layer logs the cause and renders a generic message.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "Something went very wrong!",
		Cause:   cause,
	}
}
