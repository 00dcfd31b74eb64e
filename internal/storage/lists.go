package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gbarzaghi/scontrino/internal/common"
	"github.com/gbarzaghi/scontrino/internal/model"
)

// CreateList inserts a new shopping list and returns its id.
func (s *SQLiteStorage) CreateList(ctx context.Context, name string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(name, "name"); err != nil {
		return 0, err
	}
	return s.createListTx(ctx, s.db, name)
}

func (s *SQLiteStorage) createListTx(ctx context.Context, ex executor, name string) (int64, error) {
	result, err := ex.ExecContext(ctx, `INSERT INTO shopping_lists (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert list: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get list id: %w", err)
	}
	return id, nil
}

// GetList loads a shopping list by id.
func (s *SQLiteStorage) GetList(ctx context.Context, id int64) (*model.ShoppingList, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return s.getListTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getListTx(ctx context.Context, ex executor, id int64) (*model.ShoppingList, error) {
	var list model.ShoppingList
	err := ex.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM shopping_lists WHERE id = ?`, id).
		Scan(&list.ID, &list.Name, &list.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("shopping list %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load list: %w", err)
	}
	return &list, nil
}

// AddListItem inserts an item onto a shopping list and returns its id.
func (s *SQLiteStorage) AddListItem(ctx context.Context, item *model.ShoppingListItem) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateListItem(item); err != nil {
		return 0, err
	}
	return s.addListItemTx(ctx, s.db, item)
}

func (s *SQLiteStorage) addListItemTx(ctx context.Context, ex executor, item *model.ShoppingListItem) (int64, error) {
	result, err := ex.ExecContext(ctx,
		`INSERT INTO shopping_list_items (list_id, name, grocy_product_name, barcode, quantity, unit)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.ListID, item.Name, item.GrocyProductName, item.Barcode, item.Quantity, item.Unit)
	if err != nil {
		return 0, fmt.Errorf("failed to insert list item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get list item id: %w", err)
	}

	item.ID = id
	return id, nil
}

// GetListItems loads every item on a shopping list.
func (s *SQLiteStorage) GetListItems(ctx context.Context, listID int64) ([]model.ShoppingListItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(listID, "listID"); err != nil {
		return nil, err
	}
	return s.getListItemsTx(ctx, s.db, listID)
}

func (s *SQLiteStorage) getListItemsTx(ctx context.Context, ex executor, listID int64) ([]model.ShoppingListItem, error) {
	rows, err := ex.QueryContext(ctx,
		`SELECT id, list_id, name, grocy_product_name, barcode, quantity, unit
		FROM shopping_list_items WHERE list_id = ? ORDER BY id`, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query list items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.ShoppingListItem
	for rows.Next() {
		var item model.ShoppingListItem
		if err := rows.Scan(&item.ID, &item.ListID, &item.Name, &item.GrocyProductName,
			&item.Barcode, &item.Quantity, &item.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan list item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// FillProductNameByBarcode back-fills a resolved product name onto every
// list item sharing the barcode and still missing a display name. Returns
// the number of items updated.
func (s *SQLiteStorage) FillProductNameByBarcode(ctx context.Context, barcode, productName string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(barcode, "barcode"); err != nil {
		return 0, err
	}
	if err := validateString(productName, "productName"); err != nil {
		return 0, err
	}
	return s.fillProductNameByBarcodeTx(ctx, s.db, barcode, productName)
}

func (s *SQLiteStorage) fillProductNameByBarcodeTx(ctx context.Context, ex executor, barcode, productName string) (int, error) {
	result, err := ex.ExecContext(ctx,
		`UPDATE shopping_list_items SET grocy_product_name = ?
		WHERE barcode = ? AND grocy_product_name = ''`, productName, barcode)
	if err != nil {
		return 0, fmt.Errorf("failed to back-fill product name: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check update: %w", err)
	}
	return int(affected), nil
}
