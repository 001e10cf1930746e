// Package apperr defines the error kinds surfaced by the workflow layer.
// Every guard failure maps to exactly one kind; the HTTP layer translates
// kinds into status codes and never inspects message strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a workflow failure.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	KindValidation
	KindForbidden
	KindNotFound
	KindConflict
	KindAuthentication
)

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	default:
		return "unknown"
	}
}

// Error carries a kind alongside a human-readable reason.
type Error struct {
	kind    Kind
	message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.message
}

// Unwrap exposes the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Kind returns the classification of the error.
func (e *Error) Kind() Kind {
	return e.kind
}

// New builds an error of the given kind.
func New(kind Kind, message string) error {
	return &Error{kind: kind, message: message}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, cause error, message string) error {
	return &Error{kind: kind, message: message, cause: cause}
}

// Validation reports malformed or business-rule-violating input.
func Validation(message string) error {
	return New(KindValidation, message)
}

// Validationf formats a validation error.
func Validationf(format string, args ...interface{}) error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

// Forbidden reports a denied authorization decision.
func Forbidden(message string) error {
	return New(KindForbidden, message)
}

// NotFound reports a missing entity.
func NotFound(message string) error {
	return New(KindNotFound, message)
}

// Conflict reports a state-transition collision.
func Conflict(message string) error {
	return New(KindConflict, message)
}

// Authentication reports an identity that could not be resolved.
func Authentication(message string) error {
	return New(KindAuthentication, message)
}

// KindOf extracts the kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	return KindUnknown
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
