// Package apperr defines the error taxonomy shared by services and
// handlers. Every user-attributable failure carries a Kind so callers
// can distinguish "not found" from "conflict" from a backend failure
// without string matching.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for HTTP mapping and caller branching.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindValidation
	KindForbidden
	KindUnauthorized
)

// Error is a kinded error with an optional wrapped cause.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Message returns the user-facing message without the wrapped cause.
func (e *Error) Message() string { return e.msg }

// Kind returns the error's classification.
func (e *Error) Kind() Kind { return e.kind }

// New creates a kinded error.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Wrap creates a kinded error wrapping a cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{kind: kind, msg: msg, err: err}
}

// NotFoundf formats a KindNotFound error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

// Conflictf formats a KindConflict error.
func Conflictf(format string, args ...any) *Error {
	return &Error{kind: KindConflict, msg: fmt.Sprintf(format, args...)}
}

// Validationf formats a KindValidation error.
func Validationf(format string, args ...any) *Error {
	return &Error{kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

// Forbiddenf formats a KindForbidden error.
func Forbiddenf(format string, args ...any) *Error {
	return &Error{kind: KindForbidden, msg: fmt.Sprintf(format, args...)}
}

// Unauthorizedf formats a KindUnauthorized error.
func Unauthorizedf(format string, args ...any) *Error {
	return &Error{kind: KindUnauthorized, msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err, or KindUnknown if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
