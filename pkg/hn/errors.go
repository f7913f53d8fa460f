package hn

import (
	"errors"
	"fmt"
)

// ErrNotFound is the sentinel wrapped by NotFoundError. An ID that does not
// resolve upstream is a permanent condition and is never retried.
var ErrNotFound = errors.New("item not found")

// NotFoundError reports an ID that does not resolve to a live item:
// the upstream returned 404, a JSON null body, or a deleted/dead item.
type NotFoundError struct {
	ID     int64
	Reason string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("hn: item %d not found (%s)", e.ID, e.Reason)
	}
	return fmt.Sprintf("hn: item %d not found", e.ID)
}

// Unwrap allows errors.Is(err, ErrNotFound).
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// TransientError reports a potentially retryable upstream failure: a network
// error, a timeout, or a 429/5xx response. The client performs no retry
// itself; retry policy belongs to the caller.
type TransientError struct {
	Endpoint string
	Status   int // 0 for network-level failures
	Err      error
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("hn: transient failure on %s (status %d)", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("hn: transient failure on %s: %v", e.Endpoint, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err marks a permanently unresolvable ID.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransient reports whether err marks a potentially retryable failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
