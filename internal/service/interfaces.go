// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/gbarzaghi/scontrino/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Receipt operations
	CreateReceipt(ctx context.Context, receipt *model.Receipt) (int64, error)
	GetReceipt(ctx context.Context, id int64) (*model.Receipt, error)
	UpdateReceiptStatus(ctx context.Context, id int64, status model.ReceiptStatus, ocrError string) error

	// Receipt item operations
	SaveReceiptItems(ctx context.Context, receiptID int64, items []model.ReceiptItem) error
	GetReceiptItems(ctx context.Context, receiptID int64) ([]model.ReceiptItem, error)
	UpdateMatchResults(ctx context.Context, results []model.MatchResult) error
	CorrectReceiptItem(ctx context.Context, itemID int64, correctedName string) error
	ConfirmReceiptItem(ctx context.Context, itemID int64) error

	// Shopping list operations
	CreateList(ctx context.Context, name string) (int64, error)
	GetList(ctx context.Context, id int64) (*model.ShoppingList, error)
	AddListItem(ctx context.Context, item *model.ShoppingListItem) (int64, error)
	GetListItems(ctx context.Context, listID int64) ([]model.ShoppingListItem, error)
	FillProductNameByBarcode(ctx context.Context, barcode, productName string) (int, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// OCRClient extracts text lines from a receipt image. The engine behind it
// is a black box; all this subsystem sees is lines and confidences.
type OCRClient interface {
	ExtractLines(ctx context.Context, imagePath string) ([]model.RawLine, error)
}

// BarcodeProduct is the result of a successful barcode lookup.
type BarcodeProduct struct {
	Name     string
	Brand    string
	Quantity string
	Found    bool
}

// BarcodeLookup resolves a barcode into product details. Implementations
// must return an error that satisfies common.IsRetryable for transient
// network failures so the enrichment worker can requeue.
type BarcodeLookup interface {
	Lookup(ctx context.Context, barcode string) (BarcodeProduct, error)
}

// QueueStatus reports the enrichment worker's current state.
type QueueStatus struct {
	QueueSize     int
	WorkerRunning bool
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
