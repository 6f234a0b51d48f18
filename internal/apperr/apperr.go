// Package apperr defines the error taxonomy surfaced by request handlers.
// Every failure a handler reports to a client is one of these kinds; the
// transport layer maps the kind to an HTTP status code.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

type Error struct {
	kind    Kind
	message string
	err     error
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) Status() int {
	switch e.kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func BadRequest(message string) *Error {
	return &Error{kind: KindBadRequest, message: message}
}

func Unauthorized(message string) *Error {
	return &Error{kind: KindUnauthorized, message: message}
}

func Forbidden(message string) *Error {
	return &Error{kind: KindForbidden, message: message}
}

func NotFound(message string) *Error {
	return &Error{kind: KindNotFound, message: message}
}

func Conflict(message string) *Error {
	return &Error{kind: KindConflict, message: message}
}

func Internal(message string, err error) *Error {
	return &Error{kind: KindInternal, message: message, err: err}
}

// Status resolves any error to the HTTP status it should be reported with.
// Errors outside the taxonomy are treated as internal failures.
func Status(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status()
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing message for err. Internal failures are
// masked so store errors never leak to clients.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.kind != KindInternal {
		return appErr.message
	}
	return "Internal server error"
}

func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.kind == kind
}
