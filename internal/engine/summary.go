package engine

import "github.com/gbarzaghi/scontrino/internal/model"

// Summarize aggregates one reconciliation pass into counts and a match rate.
// Missing items are derived: every list item never claimed by a matched
// result was expected but not found on the receipt.
func Summarize(results []model.MatchResult, items []model.ReceiptItem, list []model.ShoppingListItem) model.ReconciliationSummary {
	summary := model.ReconciliationSummary{
		TotalReceipt: len(items),
		TotalList:    len(list),
	}

	claimed := make(map[int64]bool, len(results))
	for i := range results {
		result := &results[i]
		switch {
		case result.Status == model.MatchStatusMatched && result.ShoppingListItemID != nil:
			summary.MatchedCount++
			claimed[*result.ShoppingListItemID] = true
		case result.IsSuggestion():
			summary.SuggestedCount++
		case result.Status == model.MatchStatusExtra:
			summary.ExtraCount++
		}
	}

	for i := range list {
		if !claimed[list[i].ID] {
			summary.MissingCount++
			summary.MissingItems = append(summary.MissingItems, list[i].Name)
		}
	}

	if len(list) > 0 {
		summary.MatchRate = float64(summary.MatchedCount) / float64(len(list)) * 100
	}

	return summary
}
