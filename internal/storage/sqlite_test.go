package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/gbarzaghi/scontrino/internal/common"
	"github.com/gbarzaghi/scontrino/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func newList(t *testing.T, store *SQLiteStorage) int64 {
	t.Helper()
	id, err := store.CreateList(context.Background(), "Spesa settimanale")
	require.NoError(t, err)
	return id
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestReceiptLifecycle(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()
	listID := newList(t, store)

	id, err := store.CreateReceipt(ctx, &model.Receipt{
		ListID: listID,
		Store:  "Esselunga",
		Status: model.ReceiptStatusPending,
	})
	require.NoError(t, err)
	require.Positive(t, id)

	loaded, err := store.GetReceipt(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Esselunga", loaded.Store)
	assert.Equal(t, model.ReceiptStatusPending, loaded.Status)
	assert.False(t, loaded.ScannedAt.IsZero())

	require.NoError(t, store.UpdateReceiptStatus(ctx, id, model.ReceiptStatusError, "ocr engine unavailable"))

	loaded, err = store.GetReceipt(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.ReceiptStatusError, loaded.Status)
	assert.Equal(t, "ocr engine unavailable", loaded.OCRError)
}

func TestGetReceiptNotFound(t *testing.T) {
	store := setupStorage(t)

	_, err := store.GetReceipt(context.Background(), 9999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestSaveAndLoadReceiptItems(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()
	listID := newList(t, store)

	receiptID, err := store.CreateReceipt(ctx, &model.Receipt{ListID: listID, Status: model.ReceiptStatusProcessing})
	require.NoError(t, err)

	name := "LAT PS INT"
	qty := 2.0
	unit := "piece"
	total := 1.29

	items := []model.ReceiptItem{
		{
			Position:         0,
			RawText:          "LAT PS INT 1,29",
			ParsedName:       &name,
			ParsedQuantity:   &qty,
			ParsedUnit:       &unit,
			ParsedTotalPrice: &total,
			OCRConfidence:    0.92,
			MatchStatus:      model.MatchStatusUnmatched,
		},
		{
			Position:    1,
			RawText:     "???",
			MatchStatus: model.MatchStatusUnmatched,
		},
	}

	require.NoError(t, store.SaveReceiptItems(ctx, receiptID, items))
	assert.Positive(t, items[0].ID)

	loaded, err := store.GetReceiptItems(ctx, receiptID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	require.NotNil(t, loaded[0].ParsedName)
	assert.Equal(t, "LAT PS INT", *loaded[0].ParsedName)
	require.NotNil(t, loaded[0].ParsedQuantity)
	assert.InDelta(t, 2.0, *loaded[0].ParsedQuantity, 0.001)
	require.NotNil(t, loaded[0].ParsedTotalPrice)
	assert.InDelta(t, 1.29, *loaded[0].ParsedTotalPrice, 0.001)
	assert.Nil(t, loaded[0].ParsedUnitPrice)

	// The degraded line keeps only its raw text.
	assert.Nil(t, loaded[1].ParsedName)
	assert.Nil(t, loaded[1].ParsedQuantity)
	assert.Equal(t, "???", loaded[1].RawText)
}

func TestConfirmedItemSurvivesRescan(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()
	listID := newList(t, store)

	receiptID, err := store.CreateReceipt(ctx, &model.Receipt{ListID: listID, Status: model.ReceiptStatusProcessing})
	require.NoError(t, err)

	original := "LATTE CORRETTO DALL'UTENTE"
	first := []model.ReceiptItem{{Position: 0, RawText: "LAT PS INT 1,29", ParsedName: &original, MatchStatus: model.MatchStatusUnmatched}}
	require.NoError(t, store.SaveReceiptItems(ctx, receiptID, first))
	require.NoError(t, store.ConfirmReceiptItem(ctx, first[0].ID))

	// Re-scan produces a different parse for the same position.
	rescanned := "LAT PS 1NT"
	second := []model.ReceiptItem{{Position: 0, RawText: "LAT PS 1NT 1,29", ParsedName: &rescanned, MatchStatus: model.MatchStatusUnmatched}}
	require.NoError(t, store.SaveReceiptItems(ctx, receiptID, second))

	loaded, err := store.GetReceiptItems(ctx, receiptID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, first[0].ID, loaded[0].ID)
	assert.Equal(t, "LAT PS INT 1,29", loaded[0].RawText)
	assert.True(t, loaded[0].UserConfirmed)
}

func TestUpdateMatchResults(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()
	listID := newList(t, store)

	itemID, err := store.AddListItem(ctx, &model.ShoppingListItem{ListID: listID, Name: "Latte"})
	require.NoError(t, err)

	receiptID, err := store.CreateReceipt(ctx, &model.Receipt{ListID: listID, Status: model.ReceiptStatusProcessing})
	require.NoError(t, err)

	name := "LAT PS INT"
	items := []model.ReceiptItem{{Position: 0, RawText: "LAT PS INT 1,29", ParsedName: &name, MatchStatus: model.MatchStatusUnmatched}}
	require.NoError(t, store.SaveReceiptItems(ctx, receiptID, items))

	results := []model.MatchResult{{
		ReceiptItemID:      items[0].ID,
		ShoppingListItemID: &itemID,
		Status:             model.MatchStatusMatched,
		Confidence:         92.5,
	}}
	require.NoError(t, store.UpdateMatchResults(ctx, results))

	loaded, err := store.GetReceiptItems(ctx, receiptID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, model.MatchStatusMatched, loaded[0].MatchStatus)
	require.NotNil(t, loaded[0].ShoppingListItemID)
	assert.Equal(t, itemID, *loaded[0].ShoppingListItemID)
	assert.InDelta(t, 92.5, loaded[0].MatchConfidence, 0.001)
}

func TestSuggestionDoesNotStoreLink(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()
	listID := newList(t, store)

	itemID, err := store.AddListItem(ctx, &model.ShoppingListItem{ListID: listID, Name: "Yogurt"})
	require.NoError(t, err)

	receiptID, err := store.CreateReceipt(ctx, &model.Receipt{ListID: listID, Status: model.ReceiptStatusProcessing})
	require.NoError(t, err)

	name := "YOG BIANCO"
	items := []model.ReceiptItem{{Position: 0, RawText: "YOG BIANCO 0,89", ParsedName: &name, MatchStatus: model.MatchStatusUnmatched}}
	require.NoError(t, store.SaveReceiptItems(ctx, receiptID, items))

	results := []model.MatchResult{{
		ReceiptItemID:   items[0].ID,
		SuggestedItemID: &itemID,
		Status:          model.MatchStatusUnmatched,
		Confidence:      60,
	}}
	require.NoError(t, store.UpdateMatchResults(ctx, results))

	loaded, err := store.GetReceiptItems(ctx, receiptID)
	require.NoError(t, err)
	assert.Nil(t, loaded[0].ShoppingListItemID)
	assert.Equal(t, model.MatchStatusUnmatched, loaded[0].MatchStatus)
}

func TestCorrectReceiptItem(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()
	listID := newList(t, store)

	receiptID, err := store.CreateReceipt(ctx, &model.Receipt{ListID: listID, Status: model.ReceiptStatusProcessing})
	require.NoError(t, err)

	name := "GIBBERISH"
	items := []model.ReceiptItem{{Position: 0, RawText: "GIBBERISH 1,00", ParsedName: &name, MatchStatus: model.MatchStatusUnmatched}}
	require.NoError(t, store.SaveReceiptItems(ctx, receiptID, items))

	require.NoError(t, store.CorrectReceiptItem(ctx, items[0].ID, "Latte"))

	loaded, err := store.GetReceiptItems(ctx, receiptID)
	require.NoError(t, err)
	require.NotNil(t, loaded[0].UserCorrectedName)
	assert.Equal(t, "Latte", *loaded[0].UserCorrectedName)
	assert.Equal(t, "Latte", loaded[0].DisplayName())

	err = store.CorrectReceiptItem(ctx, 9999, "Latte")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestShoppingListRoundtrip(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	listID, err := store.CreateList(ctx, "Spesa")
	require.NoError(t, err)

	list, err := store.GetList(ctx, listID)
	require.NoError(t, err)
	assert.Equal(t, "Spesa", list.Name)

	_, err = store.AddListItem(ctx, &model.ShoppingListItem{
		ListID:   listID,
		Name:     "Latte",
		Barcode:  "8001234567890",
		Quantity: 2,
		Unit:     "l",
	})
	require.NoError(t, err)

	items, err := store.GetListItems(ctx, listID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Latte", items[0].Name)
	assert.Equal(t, "8001234567890", items[0].Barcode)
	assert.True(t, items[0].NeedsEnrichment())
}

func TestFillProductNameByBarcode(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()
	listID := newList(t, store)

	_, err := store.AddListItem(ctx, &model.ShoppingListItem{ListID: listID, Name: "Latte", Barcode: "800"})
	require.NoError(t, err)
	_, err = store.AddListItem(ctx, &model.ShoppingListItem{
		ListID: listID, Name: "Latte bis", Barcode: "800", GrocyProductName: "Già risolto",
	})
	require.NoError(t, err)
	_, err = store.AddListItem(ctx, &model.ShoppingListItem{ListID: listID, Name: "Pane", Barcode: "801"})
	require.NoError(t, err)

	updated, err := store.FillProductNameByBarcode(ctx, "800", "Latte Intero Granarolo")
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	items, err := store.GetListItems(ctx, listID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Latte Intero Granarolo", items[0].GrocyProductName)
	assert.Equal(t, "Già risolto", items[1].GrocyProductName)
	assert.Empty(t, items[2].GrocyProductName)
}

func TestTransactionRollback(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	_, err = tx.CreateList(ctx, "Provvisoria")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	_, err = store.GetList(ctx, 1)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestTransactionCommit(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	listID, err := tx.CreateList(ctx, "Definitiva")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	list, err := store.GetList(ctx, listID)
	require.NoError(t, err)
	assert.Equal(t, "Definitiva", list.Name)
}

func TestValidation(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	_, err := store.CreateList(ctx, "   ")
	assert.True(t, errors.Is(err, ErrEmptyString))

	_, err = store.GetReceipt(ctx, 0)
	assert.True(t, errors.Is(err, ErrInvalidID))

	_, err = store.AddListItem(ctx, &model.ShoppingListItem{Name: "Latte"})
	assert.True(t, errors.Is(err, ErrInvalidItem))

	_, err = store.CreateReceipt(ctx, nil)
	assert.True(t, errors.Is(err, ErrNilParameter))
}
