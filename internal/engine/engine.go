// Package engine implements the core matching engine that reconciles parsed
// receipt items against a shopping list.
package engine

import (
	"log/slog"
	"sort"

	"github.com/gbarzaghi/scontrino/internal/model"
)

// Config holds the score thresholds for match classification.
type Config struct {
	// MatchThreshold is the minimum score that claims a list item.
	MatchThreshold float64
	// SuggestThreshold is the minimum score that attaches an unclaimed
	// candidate as a suggestion.
	SuggestThreshold float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MatchThreshold:   75,
		SuggestThreshold: 50,
	}
}

// Engine scores receipt items against shopping list items and resolves the
// candidate pairs into a conflict-free assignment. It holds no mutable state
// between calls; concurrent Reconcile calls over different receipts are safe.
type Engine struct {
	scorer Scorer
	cfg    Config
}

// New creates a matching engine with the default lexical scorer.
func New() *Engine {
	return NewWithConfig(NewLexicalScorer(), DefaultConfig())
}

// NewWithConfig creates a matching engine with a custom scorer and config.
func NewWithConfig(scorer Scorer, cfg Config) *Engine {
	return &Engine{
		scorer: scorer,
		cfg:    cfg,
	}
}

// Reconcile scores every receipt item against the not-yet-claimed list items
// and classifies each into matched, suggestion or extra. Assignment is greedy
// in receipt order: the first line to reach the match threshold claims the
// list item and removes it from the pool. This is deliberately not a global
// optimal assignment; a later line never steals an already claimed item.
func (e *Engine) Reconcile(items []model.ReceiptItem, list []model.ShoppingListItem) ([]model.MatchResult, model.ReconciliationSummary) {
	ordered := make([]model.ReceiptItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	claimed := make(map[int64]bool, len(list))
	results := make([]model.MatchResult, 0, len(ordered))

	for i := range ordered {
		item := &ordered[i]
		results = append(results, e.matchOne(item, list, claimed))
	}

	summary := Summarize(results, items, list)

	slog.Debug("Reconciliation pass complete",
		"receipt_items", len(items),
		"list_items", len(list),
		"matched", summary.MatchedCount,
		"extra", summary.ExtraCount,
		"missing", summary.MissingCount)

	return results, summary
}

// matchOne finds the best-scoring unclaimed list item for a single receipt
// line. Ties keep the first candidate seen, so iteration order is the only
// tiebreak.
func (e *Engine) matchOne(item *model.ReceiptItem, list []model.ShoppingListItem, claimed map[int64]bool) model.MatchResult {
	result := model.MatchResult{
		ReceiptItemID: item.ID,
		Status:        model.MatchStatusExtra,
	}

	name := item.DisplayName()
	if name == "" {
		// An empty name can never silently match anything.
		return result
	}

	var best *model.ShoppingListItem
	bestScore := 0.0

	for i := range list {
		candidate := &list[i]
		if claimed[candidate.ID] {
			continue
		}

		score := e.scorer.Score(name, candidate)
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}

	if best == nil {
		return result
	}

	result.Confidence = bestScore
	result.MatchedName = displayName(best)

	switch e.classify(bestScore) {
	case model.MatchStatusMatched:
		id := best.ID
		result.Status = model.MatchStatusMatched
		result.ShoppingListItemID = &id
		claimed[id] = true
	case model.MatchStatusUnmatched:
		// Suggestion band: attach the candidate but leave it unclaimed so a
		// later line can still match it outright.
		id := best.ID
		result.Status = model.MatchStatusUnmatched
		result.SuggestedItemID = &id
	default:
		result.Status = model.MatchStatusExtra
		result.MatchedName = ""
	}

	return result
}

// classify maps a best pair score onto a match band.
func (e *Engine) classify(score float64) model.MatchStatus {
	switch {
	case score >= e.cfg.MatchThreshold:
		return model.MatchStatusMatched
	case score >= e.cfg.SuggestThreshold:
		return model.MatchStatusUnmatched
	default:
		return model.MatchStatusExtra
	}
}

// displayName returns the name worth showing the user for a list item.
func displayName(item *model.ShoppingListItem) string {
	if item.GrocyProductName != "" {
		return item.GrocyProductName
	}
	return item.Name
}
