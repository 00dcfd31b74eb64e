package engine

import "github.com/gbarzaghi/scontrino/internal/model"

// Scorer computes the similarity between a receipt line name and a shopping
// list item, on a 0-100 scale.
type Scorer interface {
	Score(receiptName string, item *model.ShoppingListItem) float64
}
