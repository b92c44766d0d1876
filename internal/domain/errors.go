package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrDocumentNotFound signals a missing document. Not retryable.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDimensionMismatch signals an embedding whose length disagrees
	// with the store's configured dimensions. Not retryable.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProvider signals an embedding provider failure
	// (unreachable or malformed response). Retryable by the caller.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrTimeout signals an external call that exceeded its deadline.
	// Retryable by the caller.
	ErrTimeout = errors.New("operation timed out")
	// ErrInvalidFilter signals a malformed metadata predicate. Not retryable.
	ErrInvalidFilter = errors.New("invalid metadata filter")
	// ErrValidation signals rejected input (empty content, limit < 1, …).
	// Detected before any external call is made. Not retryable.
	ErrValidation = errors.New("validation failed")
)

// WrapTimeout rewraps a deadline error as ErrTimeout so callers can
// distinguish retryable timeouts from validation failures. Other errors
// pass through unchanged.
func WrapTimeout(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	return err
}
