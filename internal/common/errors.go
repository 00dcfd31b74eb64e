// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound = errors.New("not found")

	// OCR errors.
	ErrOCRUnavailable = errors.New("ocr engine unavailable")
	ErrOCRFailed      = errors.New("ocr processing failed")

	// Enrichment errors.
	ErrLookupFailed = errors.New("barcode lookup failed")

	// Reconciliation errors.
	ErrNoReceiptItems = errors.New("no receipt items to reconcile")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry. The enrichment
// worker requeues retryable failures and drops everything else immediately.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrLookupFailed) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
