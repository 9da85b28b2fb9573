package scheduling

import (
	"errors"
	"fmt"
)

// ErrorClass buckets provider and persistence failures so callers can react
// without knowing which backend produced them.
type ErrorClass string

const (
	// ClassValidation marks bad input: non-positive duration, buffer < 0,
	// duration over eight hours, malformed dates.
	ClassValidation ErrorClass = "validation"
	// ClassNotConfigured marks a tenant without usable provider credentials.
	ClassNotConfigured ErrorClass = "not_configured"
	// ClassConflict marks an occupied slot (HTTP 409 semantics).
	ClassConflict ErrorClass = "conflict"
	// ClassAuth marks invalid or expired provider credentials. Fatal to the
	// current operation; requires out-of-band reconnection.
	ClassAuth ErrorClass = "auth"
	// ClassUnavailable marks transient network/5xx provider failures.
	ClassUnavailable ErrorClass = "provider_unavailable"
	// ClassPersistence marks a local write failure after the external create
	// already succeeded. Always propagated; never swallowed.
	ClassPersistence ErrorClass = "persistence"
)

// Error carries a classified scheduling failure.
type Error struct {
	Class ErrorClass
	Op    string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("scheduling: %s: %s", e.Op, e.Class)
	}
	return fmt.Sprintf("scheduling: %s: %s: %v", e.Op, e.Class, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with a class and the operation that failed.
func NewError(class ErrorClass, op string, err error) *Error {
	return &Error{Class: class, Op: op, Err: err}
}

// Errorf builds a classified error from a format string.
func Errorf(class ErrorClass, op, format string, args ...any) *Error {
	return &Error{Class: class, Op: op, Err: fmt.Errorf(format, args...)}
}

// ClassOf extracts the class of err, or "" if err is not a scheduling error.
func ClassOf(err error) ErrorClass {
	var se *Error
	if errors.As(err, &se) {
		return se.Class
	}
	return ""
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return ClassOf(err) == ClassValidation }

// IsNotConfigured reports whether err means missing tenant credentials.
func IsNotConfigured(err error) bool { return ClassOf(err) == ClassNotConfigured }

// IsConflict reports whether err means the slot is occupied.
func IsConflict(err error) bool { return ClassOf(err) == ClassConflict }

// IsAuth reports whether err is a credential failure.
func IsAuth(err error) bool { return ClassOf(err) == ClassAuth }

// IsUnavailable reports whether err is a transient provider failure.
func IsUnavailable(err error) bool { return ClassOf(err) == ClassUnavailable }

// IsPersistence reports whether err is a local write failure after a
// successful external create. Callers must surface these distinctly: the
// external event exists without a tracked record.
func IsPersistence(err error) bool { return ClassOf(err) == ClassPersistence }
