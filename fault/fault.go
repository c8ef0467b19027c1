// Package fault defines the error taxonomy shared by every action pipeline.
//
// A fault carries the message that is safe to hand back to the untrusted app
// and, separately, the underlying cause which is only ever logged.
package fault

import (
	"errors"
	"strings"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindMissingFields     Kind = "MissingFields"
	KindInvalidInput      Kind = "InvalidInput"
	KindDeclined          Kind = "Declined"
	KindUnauthorized      Kind = "Unauthorized"
	KindNoPublicKey       Kind = "NoPublicKey"
	KindInsufficientFunds Kind = "InsufficientFunds"
	KindNotFound          Kind = "NotFound"
	KindUpstream          Kind = "UpstreamFailure"
	KindUnsupported       Kind = "Unsupported"
)

// Error is a classified failure. Message is app-facing, Cause is not.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so errors.Is(err, fault.Declined("")) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates a fault of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a fault keeping cause for diagnostics.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func MissingFields(names []string) *Error {
	return New(KindMissingFields, "Missing fields: "+strings.Join(names, ", "))
}

func InvalidInput(message string) *Error {
	return New(KindInvalidInput, message)
}

func Declined(message string) *Error {
	if message == "" {
		message = "User declined request"
	}
	return New(KindDeclined, message)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

func NoPublicKey(message string) *Error {
	return New(KindNoPublicKey, message)
}

func InsufficientFunds() *Error {
	return New(KindInsufficientFunds, "Insufficient Funds!")
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Upstream(message string, cause error) *Error {
	return Wrap(KindUpstream, message, cause)
}

func Unsupported(message string) *Error {
	return New(KindUnsupported, message)
}

// KindOf returns the kind of err, or KindUpstream for unclassified errors.
func KindOf(err error) Kind {
	var f *Error
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUpstream
}

// Is reports whether err is a fault of kind.
func Is(err error, kind Kind) bool {
	var f *Error
	if errors.As(err, &f) {
		return f.Kind == kind
	}
	return false
}

// Public returns the message that may be sent to the app. Unclassified errors
// are replaced by fallback so host internals never leak.
func Public(err error, fallback string) string {
	var f *Error
	if errors.As(err, &f) {
		return f.Message
	}
	if fallback == "" {
		fallback = "Request could not be fulfilled"
	}
	return fallback
}

// Ensure wraps an unclassified error as an upstream fault with fallback message.
func Ensure(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var f *Error
	if errors.As(err, &f) {
		return err
	}
	return Upstream(Public(err, fallback), err)
}
