package domain

import "errors"

// Sentinel errors raised by repositories and services. The error
// normalization layer maps these (and AppError values) to HTTP responses;
// nothing downstream renders errors itself.
var (
	ErrNotFound           = errors.New("document not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("incorrect password or email")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenExpired       = errors.New("token expired")
)

// CastError marks a value that could not be interpreted as the referenced
// field's type, e.g. a malformed object id in a path parameter.
type CastError struct {
	Field string
	Value string
}

func (e *CastError) Error() string {
	return "invalid " + e.Field + ": " + e.Value
}
