package ecode

import (
	"errors"
	"fmt"
	"net/http"
)

// Category classifies an error condition into a response class.
type Category string

const (
	CategoryValidation    Category = "validation"
	CategoryAuthorization Category = "authorization"
	CategoryBackend       Category = "backend"
	CategoryInvariant     Category = "invariant"
)

// Code identifies one specific error condition.
type Code string

const (
	// Input/validation faults.
	CodeUnknownField             Code = "unknown_field"
	CodeTypeMismatch             Code = "type_mismatch"
	CodeOperatorNotSupported     Code = "operator_not_supported_for_kind"
	CodeMalformedSyntax          Code = "malformed_syntax"
	CodeMalformedOrder           Code = "malformed_order"
	CodeOrderWithCursor          Code = "order_with_cursor"
	CodeFilterMismatch           Code = "filter_mismatch"
	CodeCursorEmpty              Code = "cursor_empty"
	CodeCursorUnsupportedVersion Code = "cursor_unsupported_version"
	CodeCursorCorrupt            Code = "cursor_corrupt"

	// Authorization faults.
	CodeTenantNotInScope Code = "tenant_not_in_scope"
	CodeDenied           Code = "denied"

	// Backend faults.
	CodeBackendFault Code = "backend_fault"

	// Invariant faults.
	CodeInvalidScope       Code = "invalid_scope"
	CodeCursorInconsistent Code = "cursor_inconsistent"
)

// Error is the concrete error type returned by all engine operations.
type Error struct {
	Code     Code
	Category Category
	Message  string
	cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Validation creates a client-caused input fault.
func Validation(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Category: CategoryValidation, Message: fmt.Sprintf(format, args...)}
}

// Authorization creates an access-refused fault.
func Authorization(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Category: CategoryAuthorization, Message: fmt.Sprintf(format, args...)}
}

// Backend wraps a storage failure opaquely.
func Backend(cause error) *Error {
	return &Error{Code: CodeBackendFault, Category: CategoryBackend, Message: "backend query failed", cause: cause}
}

// Invariant creates a programmer-error fault. These indicate an internally
// inconsistent encoder/decoder pair or calling layer, not bad user input.
func Invariant(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Category: CategoryInvariant, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the condition code from an error chain. Returns the
// empty code for errors not produced by this module.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// CategoryOf extracts the category from an error chain.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return ""
}

// IsValidation reports whether err is a client-caused input fault.
func IsValidation(err error) bool { return CategoryOf(err) == CategoryValidation }

// IsAuthorization reports whether err is an access-refused fault.
func IsAuthorization(err error) bool { return CategoryOf(err) == CategoryAuthorization }

// IsBackend reports whether err is a wrapped storage failure. Such
// failures are safe for the caller to retry with backoff.
func IsBackend(err error) bool { return CategoryOf(err) == CategoryBackend }

// IsInvariant reports whether err indicates a programmer error.
func IsInvariant(err error) bool { return CategoryOf(err) == CategoryInvariant }

// HTTPStatus maps an error to the HTTP status of its response class.
func HTTPStatus(err error) int {
	switch CategoryOf(err) {
	case CategoryValidation:
		return http.StatusUnprocessableEntity
	case CategoryAuthorization:
		return http.StatusForbidden
	case CategoryBackend, CategoryInvariant:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
