// Package apperr defines the error kinds shared across services so handlers
// can map failures onto HTTP statuses without string matching.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	// NotFound means no record matched the given code or ID.
	NotFound Kind = iota
	// InvalidState means the record exists but its current state forbids the action.
	InvalidState
	// ScopeMismatch means the record exists but belongs to a different estate.
	ScopeMismatch
	// TransientIO means the database or another backend failed.
	TransientIO
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case InvalidState:
		return "invalid_state"
	case ScopeMismatch:
		return "scope_mismatch"
	case TransientIO:
		return "transient_io"
	}
	return "unknown"
}

// Error carries a kind plus a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to an Error of the given kind.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or TransientIO for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return TransientIO
}

// MessageOf returns the user-facing message of err, or a generic fallback.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "something went wrong, please try again"
}

// HTTPStatus maps an error's kind onto the HTTP status handlers respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case NotFound:
		return http.StatusNotFound
	case InvalidState:
		return http.StatusConflict
	case ScopeMismatch:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
