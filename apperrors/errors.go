// Package apperrors provides the typed errors shared by repositories,
// services and controllers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"storefront/pricing"
)

// Type identifies the category of error
type Type string

const (
	// TypeValidation indicates rejected input
	TypeValidation Type = "VALIDATION_ERROR"

	// TypeNotFound indicates a missing resource or one the caller does not own
	TypeNotFound Type = "NOT_FOUND"

	// TypeConflict indicates a state that forbids the operation
	TypeConflict Type = "CONFLICT"

	// TypeUnauthorized indicates a missing caller identity
	TypeUnauthorized Type = "UNAUTHORIZED"

	// TypeForbidden indicates an identity without the needed role
	TypeForbidden Type = "FORBIDDEN"

	// TypeInternal indicates an unexpected failure
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                 `json:"type"`
	Message string               `json:"message"`
	Fields  []pricing.FieldError `json:"fields,omitempty"`
	Cause   error                `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new error
func New(t Type, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Newf creates a new formatted error
func Newf(t Type, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a type and message
func Wrap(t Type, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause}
}

// Validation creates a validation error
func Validation(message string) *Error {
	return New(TypeValidation, message)
}

// NotFound creates a not found error
func NotFound(resource, id string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resource, id)
}

// InvalidField creates a validation error naming the offending field
func InvalidField(field, message string) *Error {
	return &Error{
		Type:    TypeValidation,
		Message: fmt.Sprintf("%s: %s", field, message),
		Fields:  []pricing.FieldError{{Field: field, Message: message}},
	}
}

// ValidationFields creates a validation error from collected field errors,
// or returns nil when there are none.
func ValidationFields(fields []pricing.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &Error{
		Type:    TypeValidation,
		Message: (&pricing.ValidationError{Fields: fields}).Error(),
		Fields:  fields,
	}
}

// Forbidden creates an error for a caller acting on something it does not own
func Forbidden(message string) *Error {
	return New(TypeForbidden, message)
}

// Unauthorized creates an error for a request without identity
func Unauthorized(message string) *Error {
	return New(TypeUnauthorized, message)
}

// Conflict creates a conflict error
func Conflict(message string) *Error {
	return New(TypeConflict, message)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}

// FromValidation converts a pricing validation failure, keeping its fields.
func FromValidation(err *pricing.ValidationError) *Error {
	return &Error{Type: TypeValidation, Message: err.Error(), Fields: err.Fields, Cause: err}
}

// TypeOf returns the type of the first *Error in err's chain. Pricing
// validation errors count as validation; anything else is internal.
func TypeOf(err error) Type {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	var verr *pricing.ValidationError
	if errors.As(err, &verr) {
		return TypeValidation
	}
	return TypeInternal
}

// IsType checks if an error is of a specific type
func IsType(err error, t Type) bool {
	return err != nil && TypeOf(err) == t
}

// StatusCode maps err to an HTTP status.
func StatusCode(err error) int {
	switch TypeOf(err) {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeUnauthorized:
		return http.StatusUnauthorized
	case TypeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
