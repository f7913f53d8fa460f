package hn

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{ID: 42, Reason: "deleted"}

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should unwrap to ErrNotFound")
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should match NotFoundError")
	}
	if IsTransient(err) {
		t.Error("IsTransient should not match NotFoundError")
	}

	// Classification survives wrapping.
	wrapped := fmt.Errorf("resolve item: %w", err)
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should match through wrapping")
	}
}

func TestTransientError(t *testing.T) {
	tests := []struct {
		name string
		err  *TransientError
	}{
		{"status error", &TransientError{Endpoint: "/item/1.json", Status: 503}},
		{"network error", &TransientError{Endpoint: "/item/1.json", Err: errors.New("connection refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !IsTransient(tt.err) {
				t.Error("IsTransient should match")
			}
			if IsNotFound(tt.err) {
				t.Error("IsNotFound should not match")
			}
			if !IsTransient(fmt.Errorf("fetch: %w", tt.err)) {
				t.Error("IsTransient should match through wrapping")
			}
			if tt.err.Error() == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestTransientErrorUnwrap(t *testing.T) {
	cause := context.DeadlineExceeded
	err := &TransientError{Endpoint: "/item/1.json", Err: cause}

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("TransientError should unwrap to its cause")
	}
}

func TestClassificationOfPlainErrors(t *testing.T) {
	plain := errors.New("something else")

	if IsNotFound(plain) {
		t.Error("plain error misread as not-found")
	}
	if IsTransient(plain) {
		t.Error("plain error misread as transient")
	}
	if IsNotFound(nil) || IsTransient(nil) {
		t.Error("nil should classify as neither")
	}
}
