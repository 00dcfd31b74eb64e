package model

// MatchResult is the outcome of scoring one receipt item against the
// shopping list. ShoppingListItemID is set only when Status is matched;
// SuggestedItemID carries the best candidate for results in the suggestion
// band, where the list item is deliberately left unclaimed.
type MatchResult struct {
	ShoppingListItemID *int64
	SuggestedItemID    *int64
	MatchedName        string
	Status             MatchStatus
	Confidence         float64
	ReceiptItemID      int64
}

// IsSuggestion reports whether this result carries an unclaimed candidate
// for the UI to surface.
func (m *MatchResult) IsSuggestion() bool {
	return m.Status == MatchStatusUnmatched && m.SuggestedItemID != nil
}

// ReconciliationSummary aggregates one reconciliation pass.
type ReconciliationSummary struct {
	MissingItems   []string
	MatchedCount   int
	SuggestedCount int
	ExtraCount     int
	MissingCount   int
	TotalReceipt   int
	TotalList      int
	MatchRate      float64
}
