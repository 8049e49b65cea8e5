package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a tagdrop error code.
type ErrorCode string

const (
	ErrAmbiguousAddressing ErrorCode = "AMBIGUOUS_ADDRESSING" // 400
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"      // 400
	ErrNotFound            ErrorCode = "NOT_FOUND"            // 404
	ErrNameAlreadyExists   ErrorCode = "NAME_ALREADY_EXISTS"  // 409
	ErrInternal            ErrorCode = "INTERNAL"             // 500
)

// TagdropError represents a structured error with code, status, and details.
type TagdropError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TagdropError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAmbiguousAddressing creates a 400 error for when both an ID and a number
// (or slug) are provided for the same lookup.
func NewAmbiguousAddressing(msg string) *TagdropError {
	return &TagdropError{
		Code:    ErrAmbiguousAddressing,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TagdropError {
	return &TagdropError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error. kind names what was looked up
// ("term", "taxonomy", "widget").
func NewNotFound(kind, identifier string) *TagdropError {
	return &TagdropError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewNameAlreadyExists creates a 409 error for slug or name collisions.
func NewNameAlreadyExists(kind, scope, name string) *TagdropError {
	return &TagdropError{
		Code:    ErrNameAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("%s %q already exists in %q", kind, name, scope),
		Details: map[string]any{"kind": kind, "scope": scope, "name": name},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message is generic; the original error is kept in Details for logging.
func NewInternal(err error) *TagdropError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &TagdropError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if err (or anything it wraps) is a TagdropError with the given code.
func Is(err error, code ErrorCode) bool {
	var tErr *TagdropError
	if stderrors.As(err, &tErr) {
		return tErr.Code == code
	}
	return false
}

// As extracts a TagdropError from err, wrapping unknown errors as INTERNAL.
func As(err error) *TagdropError {
	var tErr *TagdropError
	if stderrors.As(err, &tErr) {
		return tErr
	}
	return NewInternal(err)
}
