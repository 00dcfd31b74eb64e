package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gbarzaghi/scontrino/internal/model"
)

// RenderSummary formats one reconciliation pass for the terminal: per-item
// outcomes grouped by status, then the aggregate counts.
func RenderSummary(summary *model.ReconciliationSummary, results []model.MatchResult, items []model.ReceiptItem) string {
	byID := make(map[int64]*model.ReceiptItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}

	var matched, suggested, extra []string
	for i := range results {
		result := &results[i]
		item, ok := byID[result.ReceiptItemID]
		if !ok {
			continue
		}

		switch {
		case result.Status == model.MatchStatusMatched:
			matched = append(matched, fmt.Sprintf("%s %s → %s (%.0f%%)",
				SuccessStyle.Render(SuccessIcon), item.DisplayName(), result.MatchedName, result.Confidence))
		case result.IsSuggestion():
			suggested = append(suggested, fmt.Sprintf("%s %s → %s? (%.0f%%)",
				WarningStyle.Render("?"), item.DisplayName(), result.MatchedName, result.Confidence))
		case result.Status == model.MatchStatusExtra:
			name := item.DisplayName()
			if name == "" {
				name = item.RawText
			}
			extra = append(extra, fmt.Sprintf("%s %s", SubtleStyle.Render("+"), name))
		}
	}

	var sections []string
	if len(matched) > 0 {
		sections = append(sections, renderSection("Matched", matched))
	}
	if len(suggested) > 0 {
		sections = append(sections, renderSection("Suggestions", suggested))
	}
	if len(extra) > 0 {
		sections = append(sections, renderSection("Not on the list", extra))
	}
	if len(summary.MissingItems) > 0 {
		var missing []string
		for _, name := range summary.MissingItems {
			missing = append(missing, fmt.Sprintf("%s %s", ErrorStyle.Render("-"), name))
		}
		sections = append(sections, renderSection("Still missing", missing))
	}

	totals := fmt.Sprintf("%d matched · %d suggested · %d extra · %d missing · match rate %.0f%%",
		summary.MatchedCount, summary.SuggestedCount, summary.ExtraCount,
		summary.MissingCount, summary.MatchRate)
	sections = append(sections, BoldStyle.Render(totals))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return RenderBox(CartIcon+" Reconciliation", content)
}

func renderSection(title string, lines []string) string {
	return SubtitleStyle.UnsetMargins().Render(title) + "\n" + strings.Join(lines, "\n")
}

// RenderListItems formats a shopping list for the terminal.
func RenderListItems(list *model.ShoppingList, items []model.ShoppingListItem) string {
	var lines []string
	for i := range items {
		item := &items[i]

		line := fmt.Sprintf("%s  %.4g %s", item.Name, item.Quantity, item.Unit)
		if item.GrocyProductName != "" {
			line += SubtleStyle.Render("  (" + item.GrocyProductName + ")")
		} else if item.Barcode != "" {
			line += SubtleStyle.Render("  [" + item.Barcode + "]")
		}
		lines = append(lines, strings.TrimRight(line, " "))
	}
	if len(lines) == 0 {
		lines = append(lines, SubtleStyle.Render("(empty)"))
	}

	return RenderBox(CartIcon+" "+list.Name, strings.Join(lines, "\n"))
}
