package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an autord error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"    // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"          // 404
	ErrReadOnly         ErrorCode = "READ_ONLY"          // 409
	ErrArtifactTooLarge ErrorCode = "ARTIFACT_TOO_LARGE" // 413
	ErrInvalidSlide     ErrorCode = "INVALID_SLIDE"      // 422
	ErrUnparseable      ErrorCode = "UNPARSEABLE"        // 422
	ErrExportFailed     ErrorCode = "EXPORT_FAILED"      // 502
	ErrInternal         ErrorCode = "INTERNAL"           // 500
)

// Error is a structured error with code, status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing template or preview.
func NewNotFound(kind, identifier string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewReadOnly creates a 409 error when a built-in template is modified.
func NewReadOnly(id string) *Error {
	return &Error{
		Code:    ErrReadOnly,
		Status:  409,
		Message: fmt.Sprintf("template %q is built in and cannot be modified", id),
		Details: map[string]any{"id": id},
	}
}

// NewArtifactTooLarge creates a 413 error when an exported file exceeds the configured limit.
func NewArtifactTooLarge(max, actual int) *Error {
	return &Error{
		Code:    ErrArtifactTooLarge,
		Status:  413,
		Message: fmt.Sprintf("artifact exceeds maximum size: %d bytes (max %d)", actual, max),
		Details: map[string]any{"max_bytes": max, "actual_bytes": actual},
	}
}

// NewInvalidSlide creates a 422 error listing validation problems.
func NewInvalidSlide(problems []string) *Error {
	return &Error{
		Code:    ErrInvalidSlide,
		Status:  422,
		Message: fmt.Sprintf("invalid slide data: %v", problems),
		Details: map[string]any{"problems": problems},
	}
}

// NewUnparseable creates a 422 error when generated text yields no structured data.
func NewUnparseable(what string) *Error {
	return &Error{
		Code:    ErrUnparseable,
		Status:  422,
		Message: fmt.Sprintf("could not derive structured data from %s", what),
	}
}

// NewExportFailed creates a 502 error when no artifact was produced.
// The caller may retry.
func NewExportFailed() *Error {
	return &Error{
		Code:    ErrExportFailed,
		Status:  502,
		Message: "no preview available: export produced no artifact",
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The cause is kept in Details for logging and never shown to clients.
func NewInternal(err error) *Error {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if err (or anything it wraps) is an *Error with the given code.
func Is(err error, code ErrorCode) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// As extracts an *Error from err, converting anything else to INTERNAL.
func As(err error) *Error {
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return NewInternal(err)
}
