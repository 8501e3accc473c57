// Package domainerrors tags storefront failures with a code that
// pkg/platform/httputil turns into a status. Config and locale validation use
// CodeInvalidInput, Redis and upstream outages use CodeUnavailable.
package domainerrors

import "errors"

type Code string

const (
	CodeNotFound           Code = "not_found"
	CodeInvalidInput       Code = "invalid_input"
	CodeInvariantViolation Code = "invariant_violation"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal_error"
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on code alone, so errors.Is(err, &Error{Code: CodeUnavailable})
// finds any unavailable failure in the chain.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap keeps the code of the innermost domain error; code applies only when
// err carries none.
func Wrap(err error, code Code, msg string) error {
	if c, ok := codeOf(err); ok {
		code = c
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf reports the code of the first domain error in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	if c, ok := codeOf(err); ok {
		return c
	}
	return CodeInternal
}

func HasCode(err error, code Code) bool {
	c, ok := codeOf(err)
	return ok && c == code
}

func codeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}
