package types

import "errors"

// Input errors. ErrInputParse wraps ErrInput so callers can treat any
// malformed option as a user error while still distinguishing parse failures.
var (
	ErrInput           = errors.New("invalid input")
	ErrInputParse      = wrap("input could not be parsed", ErrInput)
	ErrUnableToResolve = errors.New("unable to resolve")
)

// Store errors.
var (
	ErrStoreClosed = errors.New("store is closed")
	ErrNotFound    = errors.New("record not found")
)

// wrap returns an error whose message is msg and which matches target
// under errors.Is.
func wrap(msg string, target error) error {
	return &wrappedError{msg: msg, target: target}
}

type wrappedError struct {
	msg    string
	target error
}

func (e *wrappedError) Error() string { return e.msg }
func (e *wrappedError) Unwrap() error { return e.target }
