package engine

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/gbarzaghi/scontrino/internal/lexical"
	"github.com/gbarzaghi/scontrino/internal/model"
)

// LexicalScorer scores candidate pairs by expanding both names through the
// synonym table and taking the maximum over four string-similarity measures
// across all variant combinations. Receipt abbreviations truncate words
// unevenly, so no single measure is robust alone.
type LexicalScorer struct{}

// NewLexicalScorer creates the default scorer.
func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{}
}

// Score compares a receipt line name against a list item. When the item
// carries a grocy product name it is scored in addition to the list name and
// the higher result is kept.
func (s *LexicalScorer) Score(receiptName string, item *model.ShoppingListItem) float64 {
	score := scoreNames(receiptName, item.Name)
	if item.GrocyProductName != "" {
		if alt := scoreNames(receiptName, item.GrocyProductName); alt > score {
			score = alt
		}
	}
	return score
}

// scoreNames returns the best similarity observed across every variant pair
// and every measure. An empty side always scores zero.
func scoreNames(a, b string) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}

	best := 0
	for _, va := range lexical.Expand(a) {
		for _, vb := range lexical.Expand(b) {
			if s := pairScore(va, vb); s > best {
				best = s
			}
			if best == 100 {
				return 100
			}
		}
	}

	return float64(best)
}

// pairScore is the maximum of the four similarity measures for one variant
// pair.
func pairScore(a, b string) int {
	best := fuzzy.Ratio(a, b)
	if s := fuzzy.PartialRatio(a, b); s > best {
		best = s
	}
	if s := fuzzy.TokenSortRatio(a, b); s > best {
		best = s
	}
	if s := fuzzy.TokenSetRatio(a, b); s > best {
		best = s
	}
	return best
}
