// Package httpx provides HTTP response utilities and the error kinds the
// domain layer raises.
package httpx

import "errors"

// Sentinel kinds for domain errors. Services wrap these via the constructors
// below so the boundary can map kind to status code.
var (
	// ErrNotFound indicates a referenced entity id does not exist or is
	// soft-deleted.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed, missing or conflicting input.
	ErrValidation = errors.New("validation failed")
	// ErrIllegalArgument indicates an out-of-range argument. Grouped with
	// ErrValidation at the boundary.
	ErrIllegalArgument = errors.New("illegal argument")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// NotFound builds an ErrNotFound error whose Error() is exactly msg.
func NotFound(msg string) error {
	return &kindError{kind: ErrNotFound, msg: msg}
}

// Validation builds an ErrValidation error whose Error() is exactly msg.
func Validation(msg string) error {
	return &kindError{kind: ErrValidation, msg: msg}
}

// IllegalArgument builds an ErrIllegalArgument error whose Error() is exactly msg.
func IllegalArgument(msg string) error {
	return &kindError{kind: ErrIllegalArgument, msg: msg}
}
