// Package storage provides the data persistence layer for the application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gbarzaghi/scontrino/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidID      = errors.New("id must be positive")
	ErrInvalidReceipt = errors.New("invalid receipt")
	ErrInvalidItem    = errors.New("invalid list item")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures an identifier is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidID, paramName)
	}
	return nil
}

// validateReceipt validates a receipt before insert.
func validateReceipt(receipt *model.Receipt) error {
	if receipt == nil {
		return fmt.Errorf("%w: receipt", ErrNilParameter)
	}
	if receipt.Status == "" {
		return fmt.Errorf("%w: status is required", ErrInvalidReceipt)
	}
	return nil
}

// validateListItem validates a shopping list item before insert.
func validateListItem(item *model.ShoppingListItem) error {
	if item == nil {
		return fmt.Errorf("%w: item", ErrNilParameter)
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if item.ListID <= 0 {
		return fmt.Errorf("%w: list id is required", ErrInvalidItem)
	}
	return nil
}
