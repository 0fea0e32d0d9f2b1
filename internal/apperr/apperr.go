// Package apperr carries typed application errors from the service
// layer to the transport boundary, where each kind maps to exactly one
// HTTP status.
package apperr

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindValidation
)

type Error struct {
	Kind Kind
	Msg  string
	// Msgs carries human-readable validation messages; populated only
	// for KindValidation and rendered as the 422 "errors" array.
	Msgs []string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if len(e.Msgs) > 0 {
		return e.Msgs[0]
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "application error"
}

func (e *Error) Unwrap() error { return e.Err }

// Messages returns the validation message list, falling back to the
// single message so 422 bodies are never empty.
func (e *Error) Messages() []string {
	if len(e.Msgs) > 0 {
		return e.Msgs
	}
	return []string{e.Error()}
}

func Unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Msg: msg} }
func Forbidden(msg string) error       { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) error        { return &Error{Kind: KindNotFound, Msg: msg} }
func Validation(msgs ...string) error  { return &Error{Kind: KindValidation, Msgs: msgs} }
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// As extracts an *Error, wrapping unknown errors as internal so the
// boundary always has a kind to map.
func As(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Kind: KindInternal, Err: err}
}

func IsKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}
