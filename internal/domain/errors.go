package domain

import "errors"

// Code classifies a domain error. The API layer maps each code to one HTTP status.
type Code string

const (
	CodeValidation          Code = "validation"           // Malformed, missing or out-of-range input
	CodeConflict            Code = "conflict"             // Uniqueness violation
	CodeAuthentication      Code = "authentication"       // Bad or missing credentials
	CodeAuthorization       Code = "authorization"        // Insufficient privilege
	CodeNotFound            Code = "not_found"            // Resource absent
	CodeInsufficientBalance Code = "insufficient_balance" // Business rule violation
	CodeStorage             Code = "storage"              // Transient store failure, retryable
)

// Error is the error type returned by every service and store in this module
type Error struct {
	Code    Code   // Machine-readable classification
	Message string // Caller-facing message
	Cause   error  // Wrapped underlying error, never shown to callers
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil && e.Message == "" {
		return string(e.Code) + ": " + e.Cause.Error()
	}
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by code, so errors.Is(err, ErrNotFound) holds for any not-found error
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is checks
var (
	ErrValidation          = &Error{Code: CodeValidation}
	ErrConflict            = &Error{Code: CodeConflict}
	ErrAuthentication      = &Error{Code: CodeAuthentication}
	ErrAuthorization       = &Error{Code: CodeAuthorization}
	ErrNotFound            = &Error{Code: CodeNotFound}
	ErrInsufficientBalance = &Error{Code: CodeInsufficientBalance}
	ErrStorage             = &Error{Code: CodeStorage}
)

func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

func Unauthenticated(message string) *Error {
	return &Error{Code: CodeAuthentication, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Code: CodeAuthorization, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func InsufficientBalance() *Error {
	return &Error{Code: CodeInsufficientBalance, Message: "Insufficient balance"}
}

// Storage wraps a store failure. An existing *Error is returned unchanged.
func Storage(cause error) error {
	if cause == nil {
		return nil
	}
	var de *Error
	if errors.As(cause, &de) {
		return cause
	}
	return &Error{Code: CodeStorage, Message: "Storage unavailable, please retry", Cause: cause}
}

// CodeOf returns the code of err, or "" when err is not a domain error
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
