// Package apierr defines the structured error taxonomy shared by the
// action processor, tick engine, and API layer.
package apierr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies a failure so callers can decide whether to retry.
type Kind string

const (
	Unauthorized       Kind = "UNAUTHORIZED"
	NotFound           Kind = "NOT_FOUND"
	Conflict           Kind = "CONFLICT"
	Validation         Kind = "VALIDATION"
	Precondition       Kind = "PRECONDITION"
	RateLimited        Kind = "RATE_LIMITED"
	QuotaExceeded      Kind = "QUOTA_EXCEEDED"
	TransactionConflict Kind = "TRANSACTION_CONFLICT"
	Transient          Kind = "TRANSIENT"
	Internal           Kind = "INTERNAL"
)

// Retryable reports whether the Action Processor should attempt a bounded
// retry before surfacing the error (see spec ERROR HANDLING DESIGN).
func (k Kind) Retryable() bool {
	return k == TransactionConflict || k == Transient
}

// Error is the structured body surfaced to API callers: stable kind, stable
// code, a human message, and a correlation id for support/log correlation.
type Error struct {
	Kind          Kind
	Code          string
	Message       string
	CorrelationID string
	RetryAfterMS  int64
	cause         error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s[%s]: %s (correlation=%s)", e.Kind, e.Code, e.Message, e.CorrelationID)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a fresh Error with a generated correlation id.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, CorrelationID: uuid.NewString()}
}

// Wrap attaches kind/code/message to an underlying error, preserving it for
// errors.Is/errors.As while keeping the caller-facing message stable.
func Wrap(kind Kind, code, message string, cause error) *Error {
	e := New(kind, code, message)
	e.cause = cause
	return e
}

// As is a small convenience wrapper over errors.As for the common case of
// asking "is this one of ours, and what kind".
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// RateLimitedErr builds a RateLimited error carrying the caller's suggested
// retry delay, per the 1 action/second rule in the Action Processor.
func RateLimitedErr(retryAfterMS int64) *Error {
	e := New(RateLimited, "RATE_LIMITED", "at most one action per second")
	e.RetryAfterMS = retryAfterMS
	return e
}
