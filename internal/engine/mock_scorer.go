package engine

import "github.com/gbarzaghi/scontrino/internal/model"

// mockScorer returns canned scores keyed by "receiptName|listItemName".
// Pairs without an entry score zero.
type mockScorer struct {
	scores map[string]float64
}

func newMockScorer(scores map[string]float64) *mockScorer {
	return &mockScorer{scores: scores}
}

// Score implements Scorer with the canned table.
func (m *mockScorer) Score(receiptName string, item *model.ShoppingListItem) float64 {
	return m.scores[receiptName+"|"+item.Name]
}
