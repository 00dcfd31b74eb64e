package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gbarzaghi/scontrino/internal/common"
	"github.com/gbarzaghi/scontrino/internal/model"
)

// CreateReceipt inserts a new receipt and returns its id.
func (s *SQLiteStorage) CreateReceipt(ctx context.Context, receipt *model.Receipt) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateReceipt(receipt); err != nil {
		return 0, err
	}
	return s.createReceiptTx(ctx, s.db, receipt)
}

func (s *SQLiteStorage) createReceiptTx(ctx context.Context, ex executor, receipt *model.Receipt) (int64, error) {
	if receipt.ScannedAt.IsZero() {
		receipt.ScannedAt = time.Now()
	}

	result, err := ex.ExecContext(ctx,
		`INSERT INTO receipts (list_id, store, status, ocr_error, scanned_at) VALUES (?, ?, ?, ?, ?)`,
		receipt.ListID, receipt.Store, receipt.Status, receipt.OCRError, receipt.ScannedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert receipt: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get receipt id: %w", err)
	}

	receipt.ID = id
	return id, nil
}

// GetReceipt loads a receipt by id.
func (s *SQLiteStorage) GetReceipt(ctx context.Context, id int64) (*model.Receipt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return s.getReceiptTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getReceiptTx(ctx context.Context, ex executor, id int64) (*model.Receipt, error) {
	var receipt model.Receipt
	err := ex.QueryRowContext(ctx,
		`SELECT id, list_id, store, status, ocr_error, scanned_at FROM receipts WHERE id = ?`, id).
		Scan(&receipt.ID, &receipt.ListID, &receipt.Store, &receipt.Status, &receipt.OCRError, &receipt.ScannedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("receipt %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load receipt: %w", err)
	}
	return &receipt, nil
}

// UpdateReceiptStatus records a receipt's processing outcome. An OCR failure
// stores the captured message alongside the error status.
func (s *SQLiteStorage) UpdateReceiptStatus(ctx context.Context, id int64, status model.ReceiptStatus, ocrError string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	return s.updateReceiptStatusTx(ctx, s.db, id, status, ocrError)
}

func (s *SQLiteStorage) updateReceiptStatusTx(ctx context.Context, ex executor, id int64, status model.ReceiptStatus, ocrError string) error {
	result, err := ex.ExecContext(ctx,
		`UPDATE receipts SET status = ?, ocr_error = ? WHERE id = ?`, status, ocrError, id)
	if err != nil {
		return fmt.Errorf("failed to update receipt status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("receipt %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// SaveReceiptItems replaces a receipt's items with a fresh OCR pass. Items
// the user already confirmed survive untouched; new items landing on a
// confirmed position are skipped, so a re-scan never regenerates them.
func (s *SQLiteStorage) SaveReceiptItems(ctx context.Context, receiptID int64, items []model.ReceiptItem) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(receiptID, "receiptID"); err != nil {
		return err
	}
	return s.saveReceiptItemsTx(ctx, s.db, receiptID, items)
}

func (s *SQLiteStorage) saveReceiptItemsTx(ctx context.Context, ex executor, receiptID int64, items []model.ReceiptItem) error {
	confirmed, err := confirmedPositions(ctx, ex, receiptID)
	if err != nil {
		return err
	}

	if _, err := ex.ExecContext(ctx,
		`DELETE FROM receipt_items WHERE receipt_id = ? AND user_confirmed = 0`, receiptID); err != nil {
		return fmt.Errorf("failed to clear unconfirmed items: %w", err)
	}

	for i := range items {
		item := &items[i]
		if confirmed[item.Position] {
			continue
		}

		result, err := ex.ExecContext(ctx,
			`INSERT INTO receipt_items (
				receipt_id, position, raw_text, parsed_name, parsed_quantity,
				parsed_unit, parsed_unit_price, parsed_total_price,
				ocr_confidence, match_status, match_confidence
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			receiptID, item.Position, item.RawText, item.ParsedName, item.ParsedQuantity,
			item.ParsedUnit, item.ParsedUnitPrice, item.ParsedTotalPrice,
			item.OCRConfidence, item.MatchStatus, item.MatchConfidence)
		if err != nil {
			return fmt.Errorf("failed to insert item at position %d: %w", item.Position, err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get item id: %w", err)
		}
		item.ID = id
		item.ReceiptID = receiptID
	}

	return nil
}

// confirmedPositions returns the positions of user-confirmed items.
func confirmedPositions(ctx context.Context, ex executor, receiptID int64) (map[int]bool, error) {
	rows, err := ex.QueryContext(ctx,
		`SELECT position FROM receipt_items WHERE receipt_id = ? AND user_confirmed = 1`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load confirmed items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	confirmed := make(map[int]bool)
	for rows.Next() {
		var position int
		if err := rows.Scan(&position); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		confirmed[position] = true
	}
	return confirmed, rows.Err()
}

// GetReceiptItems loads a receipt's items in receipt order.
func (s *SQLiteStorage) GetReceiptItems(ctx context.Context, receiptID int64) ([]model.ReceiptItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(receiptID, "receiptID"); err != nil {
		return nil, err
	}
	return s.getReceiptItemsTx(ctx, s.db, receiptID)
}

func (s *SQLiteStorage) getReceiptItemsTx(ctx context.Context, ex executor, receiptID int64) ([]model.ReceiptItem, error) {
	rows, err := ex.QueryContext(ctx,
		`SELECT id, receipt_id, position, raw_text, parsed_name, parsed_quantity,
			parsed_unit, parsed_unit_price, parsed_total_price, ocr_confidence,
			match_status, shopping_list_item_id, match_confidence,
			user_corrected_name, user_confirmed, created_at
		FROM receipt_items WHERE receipt_id = ? ORDER BY position`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.ReceiptItem
	for rows.Next() {
		var item model.ReceiptItem
		var parsedName, parsedUnit, correctedName sql.NullString
		var quantity, unitPrice, totalPrice sql.NullFloat64
		var listItemID sql.NullInt64

		if err := rows.Scan(&item.ID, &item.ReceiptID, &item.Position, &item.RawText,
			&parsedName, &quantity, &parsedUnit, &unitPrice, &totalPrice,
			&item.OCRConfidence, &item.MatchStatus, &listItemID,
			&item.MatchConfidence, &correctedName, &item.UserConfirmed,
			&item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}

		if parsedName.Valid {
			item.ParsedName = &parsedName.String
		}
		if parsedUnit.Valid {
			item.ParsedUnit = &parsedUnit.String
		}
		if correctedName.Valid {
			item.UserCorrectedName = &correctedName.String
		}
		if quantity.Valid {
			item.ParsedQuantity = &quantity.Float64
		}
		if unitPrice.Valid {
			item.ParsedUnitPrice = &unitPrice.Float64
		}
		if totalPrice.Valid {
			item.ParsedTotalPrice = &totalPrice.Float64
		}
		if listItemID.Valid {
			item.ShoppingListItemID = &listItemID.Int64
		}

		items = append(items, item)
	}

	return items, rows.Err()
}

// UpdateMatchResults writes a reconciliation pass back onto the receipt
// items. The shopping list link is stored only for matched results.
func (s *SQLiteStorage) UpdateMatchResults(ctx context.Context, results []model.MatchResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.updateMatchResultsTx(ctx, s.db, results)
}

func (s *SQLiteStorage) updateMatchResultsTx(ctx context.Context, ex executor, results []model.MatchResult) error {
	for i := range results {
		result := &results[i]

		var listItemID *int64
		if result.Status == model.MatchStatusMatched {
			listItemID = result.ShoppingListItemID
		}

		if _, err := ex.ExecContext(ctx,
			`UPDATE receipt_items SET match_status = ?, shopping_list_item_id = ?, match_confidence = ?
			WHERE id = ?`,
			result.Status, listItemID, result.Confidence, result.ReceiptItemID); err != nil {
			return fmt.Errorf("failed to update item %d: %w", result.ReceiptItemID, err)
		}
	}
	return nil
}

// CorrectReceiptItem stores a user-supplied name for an item. The correction
// takes precedence over the parsed name in any future re-match.
func (s *SQLiteStorage) CorrectReceiptItem(ctx context.Context, itemID int64, correctedName string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(itemID, "itemID"); err != nil {
		return err
	}
	if err := validateString(correctedName, "correctedName"); err != nil {
		return err
	}
	return s.correctReceiptItemTx(ctx, s.db, itemID, correctedName)
}

func (s *SQLiteStorage) correctReceiptItemTx(ctx context.Context, ex executor, itemID int64, correctedName string) error {
	result, err := ex.ExecContext(ctx,
		`UPDATE receipt_items SET user_corrected_name = ? WHERE id = ?`, correctedName, itemID)
	if err != nil {
		return fmt.Errorf("failed to correct item: %w", err)
	}
	return requireAffected(result, itemID)
}

// ConfirmReceiptItem marks an item as user-confirmed, protecting it from
// regeneration on re-scan.
func (s *SQLiteStorage) ConfirmReceiptItem(ctx context.Context, itemID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(itemID, "itemID"); err != nil {
		return err
	}
	return s.confirmReceiptItemTx(ctx, s.db, itemID)
}

func (s *SQLiteStorage) confirmReceiptItemTx(ctx context.Context, ex executor, itemID int64) error {
	result, err := ex.ExecContext(ctx,
		`UPDATE receipt_items SET user_confirmed = 1 WHERE id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("failed to confirm item: %w", err)
	}
	return requireAffected(result, itemID)
}

// requireAffected turns a zero-row update into a not-found error.
func requireAffected(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("receipt item %d: %w", id, common.ErrNotFound)
	}
	return nil
}
