package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReceiptItemDisplayName(t *testing.T) {
	parsed := "LAT PS INT"
	corrected := "Latte intero"

	tests := []struct {
		name string
		item ReceiptItem
		want string
	}{
		{name: "parsed only", item: ReceiptItem{ParsedName: &parsed}, want: "LAT PS INT"},
		{name: "correction wins", item: ReceiptItem{ParsedName: &parsed, UserCorrectedName: &corrected}, want: "Latte intero"},
		{name: "correction without parse", item: ReceiptItem{UserCorrectedName: &corrected}, want: "Latte intero"},
		{name: "neither set", item: ReceiptItem{RawText: "???"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.DisplayName())
		})
	}
}

func TestReceiptItemQuantityDefaultsToOne(t *testing.T) {
	item := ReceiptItem{}
	assert.InDelta(t, 1.0, item.Quantity(), 0.001)

	qty := 0.75
	item.ParsedQuantity = &qty
	assert.InDelta(t, 0.75, item.Quantity(), 0.001)
}

func TestShoppingListItemNeedsEnrichment(t *testing.T) {
	tests := []struct {
		name string
		item ShoppingListItem
		want bool
	}{
		{name: "barcode without name", item: ShoppingListItem{Barcode: "800"}, want: true},
		{name: "already resolved", item: ShoppingListItem{Barcode: "800", GrocyProductName: "Latte"}, want: false},
		{name: "no barcode", item: ShoppingListItem{Name: "Latte"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.NeedsEnrichment())
		})
	}
}

func TestMatchResultIsSuggestion(t *testing.T) {
	id := int64(1)

	suggestion := MatchResult{Status: MatchStatusUnmatched, SuggestedItemID: &id}
	assert.True(t, suggestion.IsSuggestion())

	matched := MatchResult{Status: MatchStatusMatched, ShoppingListItemID: &id}
	assert.False(t, matched.IsSuggestion())

	extra := MatchResult{Status: MatchStatusExtra}
	assert.False(t, extra.IsSuggestion())
}

func TestEnrichmentTaskExhausted(t *testing.T) {
	task := EnrichmentTask{MaxRetries: 3}
	assert.False(t, task.Exhausted())

	task.Retries = 3
	assert.True(t, task.Exhausted())
}
