// Package apperr carries typed error kinds across the service core so the
// HTTP boundary can map failures to status codes without string matching.
package apperr

import "errors"

// Kind classifies a core failure.
type Kind int

const (
	// KindUnknown is the zero value for errors that carry no kind.
	KindUnknown Kind = iota

	// KindUnauthorized covers missing, invalid or expired tokens and bad
	// credentials.
	KindUnauthorized

	// KindBadRequest covers missing or invalid required fields, invalid
	// parent references and content requests on folders.
	KindBadRequest

	// KindNotFound covers absent records and records not visible to the
	// requester. Ownership mismatches render as this kind, never as
	// KindUnauthorized, so private records do not leak their existence.
	KindNotFound

	// KindUnavailable covers failures of the external stores (repository
	// unreachable, blob medium I/O errors).
	KindUnavailable
)

// Error is a core failure with a kind and a client-facing message.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Kind returns the error's classification.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the client-facing message.
func (e *Error) Message() string { return e.msg }

// Unauthorized reports a failed authentication or an invalid session.
func Unauthorized() *Error {
	return &Error{kind: KindUnauthorized, msg: "Unauthorized"}
}

// BadRequest reports an invalid request with the given client-facing message.
func BadRequest(msg string) *Error {
	return &Error{kind: KindBadRequest, msg: msg}
}

// NotFound reports an absent record, or one the requester may not see.
func NotFound() *Error {
	return &Error{kind: KindNotFound, msg: "Not found"}
}

// Unavailable wraps an external-store failure. The cause is preserved for
// logging but never shown to clients.
func Unavailable(err error) *Error {
	return &Error{kind: KindUnavailable, msg: "Service unavailable", err: err}
}

// KindOf extracts the kind of err, or KindUnknown if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// MessageOf extracts the client-facing message of err, or "" if err carries
// none.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.msg
	}
	return ""
}
