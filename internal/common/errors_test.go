package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "lookup failure", err: ErrLookupFailed, want: true},
		{name: "wrapped lookup failure", err: fmt.Errorf("fetch: %w", ErrLookupFailed), want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "retryable wrapper", err: &RetryableError{Err: errors.New("boom"), Retryable: true}, want: true},
		{name: "non-retryable wrapper", err: &RetryableError{Err: errors.New("boom"), Retryable: false}, want: false},
		{name: "not found", err: ErrNotFound, want: false},
		{name: "invalid config", err: ErrInvalidConfig, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestUserError(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewUserError("OCR extraction failed", inner)

	assert.Contains(t, err.Error(), "OCR extraction failed")
	assert.True(t, errors.Is(err, inner))
}

func TestRetryableErrorUnwrap(t *testing.T) {
	err := &RetryableError{Err: ErrLookupFailed, Retryable: true}
	assert.True(t, errors.Is(err, ErrLookupFailed))
}
