// Package apperr defines the error kinds returned by the service layer.
// Handlers translate a kind into an HTTP status; callers test for a kind
// with errors.Is against the exported sentinels.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindAccountNotFound Kind = "account_not_found"
	KindForbidden       Kind = "forbidden"
	KindCrossTenant     Kind = "cross_tenant_access_denied"
	KindNotFound        Kind = "not_found"
	KindRateLimited     Kind = "rate_limit_exceeded"
	KindConflict        Kind = "conflict"
	KindUpstream        Kind = "upstream_failure"
	KindInvalid         Kind = "invalid_argument"
)

// Error carries a kind plus a human readable message. Err, when set, is the
// underlying cause and is exposed through Unwrap.
type Error struct {
	Kind     Kind
	Resource string
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// holds for every resource.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Msg: "authentication required"}
	ErrAccountNotFound = &Error{Kind: KindAccountNotFound, Msg: "account not found"}
	ErrForbidden       = &Error{Kind: KindForbidden, Msg: "forbidden"}
	ErrCrossTenant     = &Error{Kind: KindCrossTenant, Msg: "cross-tenant access denied"}
	ErrNotFound        = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrRateLimited     = &Error{Kind: KindRateLimited, Msg: "rate limit exceeded"}
	ErrConflict        = &Error{Kind: KindConflict, Msg: "conflict"}
	ErrUpstream        = &Error{Kind: KindUpstream, Msg: "upstream failure"}
	ErrInvalid         = &Error{Kind: KindInvalid, Msg: "invalid argument"}
)

// NotFound reports a missing resource, e.g. NotFound("order").
func NotFound(resource string) error {
	return &Error{Kind: KindNotFound, Resource: resource, Msg: resource + " not found"}
}

// Conflict reports a state conflict such as a duplicate or a closed record.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Invalid reports bad caller input.
func Invalid(format string, args ...any) error {
	return &Error{Kind: KindInvalid, Msg: fmt.Sprintf(format, args...)}
}

// Forbidden reports a role check failure with a specific message.
func Forbidden(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

// Upstream wraps a failure of an external provider.
func Upstream(provider string, err error) error {
	return &Error{Kind: KindUpstream, Resource: provider, Msg: provider + " request failed", Err: err}
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
