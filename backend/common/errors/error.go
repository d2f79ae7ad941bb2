package errors

import (
	"errors"
)

// Kind classifies an Error so the HTTP layer can pick a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthorized
	KindNotFound
)

// Error carries a client-facing message and, optionally, the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindInternal {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Invalid(msg string) *Error {
	return &Error{Kind: KindInvalid, Msg: msg}
}

func NotFound() *Error {
	return &Error{Kind: KindNotFound, Msg: MsgNotFound}
}

func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Msg: MsgUnauthorized}
}

// Internal wraps an infrastructure failure. The cause is kept for logging and
// never shown to clients.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Msg: MsgInternalServer, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain. Errors that are
// not *Error are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return MsgInternalServer
}

func IsInvalid(err error) bool {
	return err != nil && KindOf(err) == KindInvalid
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}
