// Package apperrors defines the failure taxonomy of a monitoring pass.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind categorises a failure so callers can decide between retry and fail-fast.
type Kind string

const (
	// KindInvalidURL means the post URL matched no known shape. The caller must fix the input.
	KindInvalidURL Kind = "InvalidUrlKind"

	// KindNoSession means the session pool is exhausted. Retry after provisioning.
	KindNoSession Kind = "NoSessionAvailable"

	// KindAuthRejected means the platform refused the session. Triggers invalidation.
	KindAuthRejected Kind = "AuthRejected"

	// KindPostUnavailable means the post was deleted or is hidden from this session.
	KindPostUnavailable Kind = "PostUnavailable"

	// KindPlatformUnavailable means the platform could not be reached at all: transport
	// failure, signer outage or an open circuit breaker.
	KindPlatformUnavailable Kind = "PlatformUnavailable"

	// KindSearchFailed means a keyword search page came back unusable.
	KindSearchFailed Kind = "SearchFailed"

	// KindCommentFetch means a comment page failed for a reason other than auth.
	KindCommentFetch Kind = "CommentFetchFailed"

	// KindPersistence means the storage batch was rolled back.
	KindPersistence Kind = "PersistenceFailed"
)

// Sentinels usable with errors.Is; matching is by kind only.
var (
	ErrInvalidURL      = &Error{Kind: KindInvalidURL}
	ErrNoSession       = &Error{Kind: KindNoSession}
	ErrAuthRejected    = &Error{Kind: KindAuthRejected}
	ErrPostUnavailable = &Error{Kind: KindPostUnavailable}
	ErrPlatform        = &Error{Kind: KindPlatformUnavailable}
	ErrSearchFailed    = &Error{Kind: KindSearchFailed}
	ErrCommentFetch    = &Error{Kind: KindCommentFetch}
	ErrPersistence     = &Error{Kind: KindPersistence}
)

// Error carries a Kind plus the operation that produced it.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

// New creates an error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op == "" {
		return fmt.Sprintf("[%s] %s", e.Kind, msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Retryable reports whether a later attempt may succeed without operator action on the input.
func Retryable(kind Kind) bool {
	switch kind {
	case KindNoSession, KindAuthRejected, KindPlatformUnavailable, KindSearchFailed, KindCommentFetch, KindPersistence:
		return true
	default:
		return false
	}
}
