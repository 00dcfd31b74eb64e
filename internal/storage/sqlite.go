package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gbarzaghi/scontrino/internal/model"
	"github.com/gbarzaghi/scontrino/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// executor abstracts *sql.DB and *sql.Tx so queries run in either context.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Transaction methods delegate to the main storage with the transaction.
func (t *sqliteTransaction) CreateReceipt(ctx context.Context, receipt *model.Receipt) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateReceipt(receipt); err != nil {
		return 0, err
	}
	return t.storage.createReceiptTx(ctx, t.tx, receipt)
}

func (t *sqliteTransaction) GetReceipt(ctx context.Context, id int64) (*model.Receipt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getReceiptTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) UpdateReceiptStatus(ctx context.Context, id int64, status model.ReceiptStatus, ocrError string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.updateReceiptStatusTx(ctx, t.tx, id, status, ocrError)
}

func (t *sqliteTransaction) SaveReceiptItems(ctx context.Context, receiptID int64, items []model.ReceiptItem) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.saveReceiptItemsTx(ctx, t.tx, receiptID, items)
}

func (t *sqliteTransaction) GetReceiptItems(ctx context.Context, receiptID int64) ([]model.ReceiptItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getReceiptItemsTx(ctx, t.tx, receiptID)
}

func (t *sqliteTransaction) UpdateMatchResults(ctx context.Context, results []model.MatchResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.updateMatchResultsTx(ctx, t.tx, results)
}

func (t *sqliteTransaction) CorrectReceiptItem(ctx context.Context, itemID int64, correctedName string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(correctedName, "correctedName"); err != nil {
		return err
	}
	return t.storage.correctReceiptItemTx(ctx, t.tx, itemID, correctedName)
}

func (t *sqliteTransaction) ConfirmReceiptItem(ctx context.Context, itemID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.confirmReceiptItemTx(ctx, t.tx, itemID)
}

func (t *sqliteTransaction) CreateList(ctx context.Context, name string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(name, "name"); err != nil {
		return 0, err
	}
	return t.storage.createListTx(ctx, t.tx, name)
}

func (t *sqliteTransaction) GetList(ctx context.Context, id int64) (*model.ShoppingList, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getListTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) AddListItem(ctx context.Context, item *model.ShoppingListItem) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateListItem(item); err != nil {
		return 0, err
	}
	return t.storage.addListItemTx(ctx, t.tx, item)
}

func (t *sqliteTransaction) GetListItems(ctx context.Context, listID int64) ([]model.ShoppingListItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getListItemsTx(ctx, t.tx, listID)
}

func (t *sqliteTransaction) FillProductNameByBarcode(ctx context.Context, barcode, productName string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(barcode, "barcode"); err != nil {
		return 0, err
	}
	if err := validateString(productName, "productName"); err != nil {
		return 0, err
	}
	return t.storage.fillProductNameByBarcodeTx(ctx, t.tx, barcode, productName)
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	return nil, fmt.Errorf("nested transactions are not supported")
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) Close() error {
	return fmt.Errorf("cannot close storage from within a transaction")
}
