package receipt

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gbarzaghi/scontrino/internal/model"
)

// UnitPiece is the unit assigned to count-based quantities.
const UnitPiece = "piece"

var (
	// priceCandidateRe over-matches on purpose: weights like 0,750 are
	// captured too and filtered out by decimal length afterwards.
	priceCandidateRe = regexp.MustCompile(`\d+[,.]\d{2,}`)

	leadingQtyRe  = regexp.MustCompile(`(?i)^\s*(\d+)\s*[x×]\s*`)
	weightRe      = regexp.MustCompile(`(?i)\b(kg|g|l|ml)\s*(\d+(?:[,.]\d+)?)`)
	countRe       = regexp.MustCompile(`(?i)\b(pz|pezzi|conf)\.?\s*(\d+)\b`)
	trailingQtyRe = regexp.MustCompile(`(?i)[x×]\s*(\d+)\s*$`)
)

// span marks a byte range of the raw line consumed by an extraction step.
type span struct {
	start int
	end   int
}

// ParseLine extracts prices, quantity and name from a product line. It never
// fails: malformed input degrades to an item carrying only the raw text. The
// second return value is false when the line turns out to hold no product
// name at all and must be re-flagged as non-product.
func ParseLine(position int, text string, confidence float64) (model.ReceiptItem, bool) {
	item := model.ReceiptItem{
		Position:      position,
		RawText:       text,
		OCRConfidence: confidence,
		MatchStatus:   model.MatchStatusUnmatched,
		CreatedAt:     time.Now(),
	}

	consumed := extractPrices(text, &item)

	// Quantity patterns run with price spans blanked out so a trailing
	// "x 2" is not confused with a trailing price.
	stripped := blank(text, consumed)
	consumed = append(consumed, extractQuantity(stripped, &item)...)

	name := cleanName(blank(text, consumed))
	if name == "" {
		return item, false
	}
	item.ParsedName = &name

	return item, true
}

// ClassifyAndParse filters raw OCR lines through the classifier and parses
// every survivor into a receipt item. Positions follow receipt order.
func ClassifyAndParse(lines []model.RawLine) []model.ReceiptItem {
	items := make([]model.ReceiptItem, 0, len(lines))

	for _, line := range lines {
		if !IsProductLine(line.Text) {
			continue
		}

		item, ok := ParseLine(len(items), line.Text, line.Confidence)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	return items
}

// extractPrices scans for decimal tokens with exactly two decimals. The last
// one is the total price; with two or more, the second-to-last is the unit
// price. Returns the consumed byte ranges.
func extractPrices(text string, item *model.ReceiptItem) []span {
	var prices []float64
	var spans []span

	for _, loc := range priceCandidateRe.FindAllStringIndex(text, -1) {
		token := text[loc[0]:loc[1]]
		sep := strings.IndexAny(token, ",.")
		if len(token)-sep-1 != 2 {
			continue
		}

		value, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", "."), 64)
		if err != nil {
			continue
		}

		prices = append(prices, value)
		spans = append(spans, span{start: loc[0], end: loc[1]})
	}

	switch {
	case len(prices) >= 2:
		item.ParsedUnitPrice = floatPtr(prices[len(prices)-2])
		item.ParsedTotalPrice = floatPtr(prices[len(prices)-1])
	case len(prices) == 1:
		item.ParsedTotalPrice = floatPtr(prices[0])
	}

	return spans
}

// extractQuantity tries the quantity patterns in priority order and stops at
// the first hit.
func extractQuantity(text string, item *model.ReceiptItem) []span {
	if loc := leadingQtyRe.FindStringSubmatchIndex(text); loc != nil {
		return applyQuantity(item, text[loc[2]:loc[3]], UnitPiece, span{start: loc[0], end: loc[1]})
	}

	if loc := weightRe.FindStringSubmatchIndex(text); loc != nil {
		unit := strings.ToLower(text[loc[2]:loc[3]])
		return applyQuantity(item, text[loc[4]:loc[5]], unit, span{start: loc[0], end: loc[1]})
	}

	if loc := countRe.FindStringSubmatchIndex(text); loc != nil {
		return applyQuantity(item, text[loc[4]:loc[5]], UnitPiece, span{start: loc[0], end: loc[1]})
	}

	if loc := trailingQtyRe.FindStringSubmatchIndex(text); loc != nil {
		return applyQuantity(item, text[loc[2]:loc[3]], UnitPiece, span{start: loc[0], end: loc[1]})
	}

	return nil
}

// applyQuantity parses the numeric token and records quantity, unit and the
// consumed span. An unparseable token leaves the quantity null.
func applyQuantity(item *model.ReceiptItem, token, unit string, consumed span) []span {
	value, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", "."), 64)
	if err != nil {
		return nil
	}

	item.ParsedQuantity = floatPtr(value)
	item.ParsedUnit = strPtr(unit)
	return []span{consumed}
}

// blank replaces the given byte ranges with spaces, preserving offsets.
func blank(text string, spans []span) string {
	if len(spans) == 0 {
		return text
	}

	out := []byte(text)
	for _, sp := range spans {
		for i := sp.start; i < sp.end && i < len(out); i++ {
			out[i] = ' '
		}
	}
	return string(out)
}

// cleanName collapses whitespace and trims stray punctuation left behind by
// the extraction steps.
func cleanName(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	return strings.Trim(collapsed, " .,-*:;€#@")
}

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }
