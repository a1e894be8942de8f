package services

import (
	"fmt"

	"github.com/pkg/errors"

	"quizzit/store"
)

type Kind string

const (
	KindValidation        Kind = "ValidationError"
	KindNotFound          Kind = "NotFound"
	KindUnauthenticated   Kind = "Unauthenticated"
	KindUnauthorized      Kind = "Unauthorized"
	KindResourceExhausted Kind = "ResourceExhausted"
	KindInternal          Kind = "InternalError"
)

// Error is returned by every service operation that fails.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func ValidationError(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthenticated means no caller identity was supplied; Unauthorized means the
// caller is known but not allowed.
func Unauthenticated(format string, args ...any) error {
	return &Error{Kind: KindUnauthenticated, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func ResourceExhausted(format string, args ...any) error {
	return &Error{Kind: KindResourceExhausted, Message: fmt.Sprintf(format, args...)}
}

func InternalError(err error, msg string) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf classifies err. Errors that did not come from this package are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message is the text safe to show to API callers.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindInternal {
			return e.Message
		}
		return e.Error()
	}
	return "internal error"
}

// fromStore maps a store failure onto the taxonomy, using notFoundMsg when
// the record is missing.
func fromStore(err error, notFoundMsg string) error {
	if store.IsNotFound(err) {
		return NotFound("%s", notFoundMsg)
	}
	return InternalError(err, "storage failure")
}
