package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS shopping_lists (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS shopping_list_items (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					list_id INTEGER NOT NULL,
					name TEXT NOT NULL,
					grocy_product_name TEXT NOT NULL DEFAULT '',
					barcode TEXT NOT NULL DEFAULT '',
					quantity REAL NOT NULL DEFAULT 1,
					unit TEXT NOT NULL DEFAULT '',
					FOREIGN KEY (list_id) REFERENCES shopping_lists(id)
				)`,
				`CREATE INDEX idx_list_items_list ON shopping_list_items(list_id)`,
				`CREATE INDEX idx_list_items_barcode ON shopping_list_items(barcode)`,

				`CREATE TABLE IF NOT EXISTS receipts (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					list_id INTEGER NOT NULL DEFAULT 0,
					store TEXT NOT NULL DEFAULT '',
					status TEXT NOT NULL DEFAULT 'PENDING',
					ocr_error TEXT NOT NULL DEFAULT '',
					scanned_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS receipt_items (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					receipt_id INTEGER NOT NULL,
					position INTEGER NOT NULL,
					raw_text TEXT NOT NULL,
					parsed_name TEXT,
					parsed_quantity REAL,
					parsed_unit TEXT,
					parsed_unit_price REAL,
					parsed_total_price REAL,
					ocr_confidence REAL NOT NULL DEFAULT 0,
					match_status TEXT NOT NULL DEFAULT 'UNMATCHED',
					shopping_list_item_id INTEGER,
					match_confidence REAL NOT NULL DEFAULT 0,
					user_corrected_name TEXT,
					user_confirmed INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (receipt_id) REFERENCES receipts(id)
				)`,
				`CREATE INDEX idx_receipt_items_receipt ON receipt_items(receipt_id)`,
				`CREATE INDEX idx_receipt_items_status ON receipt_items(match_status)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute %q: %w", query[:40], err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "At most one matched receipt item per list item and receipt",
		Up: func(tx *sql.Tx) error {
			query := `CREATE UNIQUE INDEX IF NOT EXISTS idx_receipt_items_claim
				ON receipt_items(receipt_id, shopping_list_item_id)
				WHERE match_status = 'MATCHED' AND shopping_list_item_id IS NOT NULL`
			if _, err := tx.Exec(query); err != nil {
				return fmt.Errorf("failed to create claim index: %w", err)
			}
			return nil
		},
	},
}

// Migrate brings the database schema up to the expected version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		slog.Info("Applying migration",
			"version", migration.Version,
			"description", migration.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`,
			migration.Version, migration.Description); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
