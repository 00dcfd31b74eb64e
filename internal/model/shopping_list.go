package model

import "time"

// ShoppingList groups the items a household plans to buy.
type ShoppingList struct {
	CreatedAt time.Time
	Name      string
	ID        int64
}

// ShoppingListItem is one entry on a shopping list. GrocyProductName is the
// display name back-filled by barcode enrichment; it stays empty until a
// lookup succeeds.
type ShoppingListItem struct {
	Name             string
	GrocyProductName string
	Barcode          string
	Unit             string
	Quantity         float64
	ID               int64
	ListID           int64
}

// NeedsEnrichment reports whether a barcode lookup could still improve this
// item: it carries a barcode but no resolved product name.
func (s *ShoppingListItem) NeedsEnrichment() bool {
	return s.Barcode != "" && s.GrocyProductName == ""
}
