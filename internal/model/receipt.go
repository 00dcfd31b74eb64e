// Package model defines the core domain models used throughout the application.
package model

import "time"

// RawLine is a single OCR-extracted row of text with its recognition
// confidence. RawLines are ephemeral and never persisted.
type RawLine struct {
	Text       string
	Confidence float64
}

// ReceiptStatus indicates where a receipt is in its processing lifecycle.
type ReceiptStatus string

// Receipt status constants.
const (
	ReceiptStatusPending    ReceiptStatus = "PENDING"
	ReceiptStatusProcessing ReceiptStatus = "PROCESSING"
	ReceiptStatusCompleted  ReceiptStatus = "COMPLETED"
	ReceiptStatusError      ReceiptStatus = "ERROR"
)

// Receipt represents one scanned receipt. An OCR failure is recorded
// receipt-level in OCRError with no items persisted.
type Receipt struct {
	ScannedAt time.Time
	Store     string
	OCRError  string
	Status    ReceiptStatus
	ID        int64
	ListID    int64
}

// MatchStatus indicates how a receipt item fared against the shopping list.
type MatchStatus string

// Match status constants.
const (
	MatchStatusUnmatched MatchStatus = "UNMATCHED"
	MatchStatusMatched   MatchStatus = "MATCHED"
	MatchStatusExtra     MatchStatus = "EXTRA"
	MatchStatusIgnored   MatchStatus = "IGNORED"
)

// ReceiptItem is one surviving product line from a receipt. RawText is the
// source of truth and is never mutated; every parsed field is best-effort
// and nullable.
type ReceiptItem struct {
	CreatedAt          time.Time
	ParsedName         *string
	ParsedQuantity     *float64
	ParsedUnit         *string
	ParsedUnitPrice    *float64
	ParsedTotalPrice   *float64
	ShoppingListItemID *int64
	UserCorrectedName  *string
	RawText            string
	MatchStatus        MatchStatus
	OCRConfidence      float64
	MatchConfidence    float64
	ID                 int64
	ReceiptID          int64
	Position           int
	UserConfirmed      bool
}

// DisplayName returns the name matching should run against: a user
// correction always wins over the parsed name. Empty when neither is set.
func (r *ReceiptItem) DisplayName() string {
	if r.UserCorrectedName != nil && *r.UserCorrectedName != "" {
		return *r.UserCorrectedName
	}
	if r.ParsedName != nil {
		return *r.ParsedName
	}
	return ""
}

// Quantity returns the parsed quantity, defaulting to 1 when extraction
// found nothing.
func (r *ReceiptItem) Quantity() float64 {
	if r.ParsedQuantity == nil {
		return 1
	}
	return *r.ParsedQuantity
}
