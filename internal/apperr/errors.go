// Package apperr defines the error kinds returned by the service layer.
// Match kinds with errors.Is; the message of an *Error is safe to show to
// the client.
package apperr

import "errors"

var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrInvalidToken = errors.New("invalid token")
)

// Error pairs an error kind with a client-facing message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func Validation(msg string) error   { return &Error{Kind: ErrValidation, Msg: msg} }
func Conflict(msg string) error     { return &Error{Kind: ErrConflict, Msg: msg} }
func Unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Msg: msg} }
func NotFound(msg string) error     { return &Error{Kind: ErrNotFound, Msg: msg} }
func InvalidToken(msg string) error { return &Error{Kind: ErrInvalidToken, Msg: msg} }

// Message returns the client-facing message of err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return fallback
}
