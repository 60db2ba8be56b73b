package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of authentication failure
type Code string

// Error codes for the authentication core
const (
	// Credential errors. CodeInvalidCredentials deliberately covers both
	// "unknown identifier" and "wrong password" so callers cannot probe
	// for account existence.
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeAccountLocked      Code = "ACCOUNT_LOCKED"

	// Token errors
	CodeTokenExpired Code = "TOKEN_EXPIRED"
	CodeTokenInvalid Code = "TOKEN_INVALID"
	CodeTokenRevoked Code = "TOKEN_REVOKED"

	// Permission errors (used by the HTTP middleware, not the core)
	CodeForbidden Code = "FORBIDDEN"

	// Collaborator failures
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"

	// Everything else
	CodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error carrying a code, a human-readable message
// and an optional wrapped cause
type Error struct {
	Code    Code   // machine-checkable failure class
	Message string // human-readable error message
	Err     error  // wrapped underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *Error) HTTPStatusCode() int {
	return MapCodeToHTTPStatus(e.Code)
}

// New creates a new Error with the given code and message
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with formatted message
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with code and message
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrapf wraps an existing error with code and formatted message
func Wrapf(err error, code Code, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf extracts the error code from an error.
// Returns CodeInternal if the error is not a structured Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MapCodeToHTTPStatus maps error codes to HTTP status codes
func MapCodeToHTTPStatus(code Code) int {
	switch code {
	// 401 Unauthorized: credential and token failures. AccountLocked keeps
	// the same status as InvalidCredentials; the two are distinguished by
	// code only.
	case CodeInvalidCredentials, CodeAccountLocked,
		CodeTokenExpired, CodeTokenInvalid, CodeTokenRevoked:
		return http.StatusUnauthorized

	// 403 Forbidden: authenticated but insufficient permission
	case CodeForbidden:
		return http.StatusForbidden

	// 503 Service Unavailable: a collaborator (database, cache) is down
	case CodeStoreUnavailable:
		return http.StatusServiceUnavailable

	// 500 Internal Server Error (default)
	case CodeInternal:
		fallthrough
	default:
		return http.StatusInternalServerError
	}
}
