// Package apperr defines the error kinds shared by every adapter and service.
// Adapters translate provider failures into one of these kinds so callers never
// see resty, gorm or GraphQL error types.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an error for propagation and HTTP mapping.
type Kind uint8

const (
	Internal Kind = iota
	NotFound
	Unauthorized
	Forbidden
	UpstreamUnavailable
	Validation
	Duplicate
	AuthCanceled
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case UpstreamUnavailable:
		return "upstream_unavailable"
	case Validation:
		return "validation"
	case Duplicate:
		return "duplicate"
	case AuthCanceled:
		return "auth_canceled"
	default:
		return "internal"
	}
}

// Error carries a Kind, the failing operation and an optional user-safe message.
type Error struct {
	Kind Kind
	Op   string
	Msg  string // safe to show to end users; empty means use the generic text for Kind
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with an operation name and kind.
func E(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Msg builds an error with a user-safe message and no underlying cause.
func Msg(op string, kind Kind, msg string) *Error {
	return &Error{Op: op, Kind: kind, Msg: msg}
}

// KindOf returns the Kind of the first *Error in err's chain.
// Context cancellation is reported as AuthCanceled only when already classified;
// a bare deadline is treated as an upstream failure.
func KindOf(err error) Kind {
	if err == nil {
		return Internal
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return UpstreamUnavailable
	}
	return Internal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the user-safe message carried by err, if any.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}
