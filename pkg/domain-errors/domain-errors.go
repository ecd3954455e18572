// Package domainerrors carries the failure taxonomy shared by the reputation,
// scoring, ledger and governance services. Codes name the business outcome;
// the HTTP layer decides how each one is rendered.
package domainerrors

import (
	"errors"
	"fmt"
)

type Code string

// Caller mistakes.
const (
	CodeBadRequest      Code = "bad_request"
	CodeValidation      Code = "validation_failed"
	CodePayloadTooLarge Code = "payload_too_large"
)

// Authorization. Both render the same opaque message.
const (
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
)

// Entity state.
const (
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInvalidState Code = "invalid_state"
)

// Dependencies and the server itself.
const (
	CodeScoringUnavailable Code = "scoring_unavailable"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
)

const notPermitted = "not permitted"

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so errors.Is(err, &Error{Code: c})
// finds a code anywhere in the chain.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches msg to err. A code already present in err's chain wins over
// code.
func Wrap(err error, code Code, msg string) error {
	if existing, ok := as(err); ok {
		code = existing.Code
	}
	return &Error{Code: code, Message: msg, Err: err}
}

func HasCode(err error, code Code) bool {
	e, ok := as(err)
	return ok && e.Code == code
}

// CodeOf reports the outermost code in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	if e, ok := as(err); ok {
		return e.Code
	}
	return CodeInternal
}

func as(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func Validation(msg string) error { return New(CodeValidation, msg) }

func NotFound(msg string) error { return New(CodeNotFound, msg) }

func Conflict(msg string) error { return New(CodeConflict, msg) }

func InvalidState(msg string) error { return New(CodeInvalidState, msg) }

func Forbidden() error { return New(CodeForbidden, notPermitted) }

func Unauthenticated() error { return New(CodeUnauthorized, notPermitted) }

func ScoringUnavailable(cause error) error {
	return &Error{Code: CodeScoringUnavailable, Message: "scoring service unavailable", Err: cause}
}
