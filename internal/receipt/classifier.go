// Package receipt turns raw OCR lines into structured receipt items: a
// conservative classifier drops obvious noise and a tolerant parser extracts
// name, quantity and prices from whatever survives.
package receipt

import (
	"regexp"
	"strings"
	"unicode"
)

// excludePatterns reject the structural noise Italian supermarket receipts
// print around the purchase lines. The filter is deliberately conservative:
// noise that slips through just fails to match downstream and surfaces as an
// extra with near-zero confidence, while a discarded real purchase is gone
// for good.
var excludePatterns = []*regexp.Regexp{
	// Totals, subtotals, tax, discounts
	regexp.MustCompile(`(?i)^\s*(TOTALE|TOT\.?|SUBTOTALE|SUB\s*TOTALE|IMPORTO|IVA|IMPOSTA|ARROTONDAMENTO|SCONTO|RESTO)\b`),
	// Payment methods
	regexp.MustCompile(`(?i)^\s*(CONTANT[EI]|CARTA(\s+DI\s+CREDITO)?|BANCOMAT|POS|PAGAMENTO|SATISPAY|ASSEGNO|BUON[OI])\b`),
	// Store metadata and fiscal headers
	regexp.MustCompile(`(?i)\b(P\.?\s?IVA|COD\.?\s?FISC|SCONTRINO|DOC\.?\s?COMMERCIALE|DOCUMENTO|CASSA|OPERATORE|REPARTO|ARTICOLI)\b`),
	// Date and time stamps
	regexp.MustCompile(`^\s*\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}(\s+\d{1,2}:\d{2})?\s*$`),
	regexp.MustCompile(`^\s*\d{1,2}:\d{2}(:\d{2})?\s*$`),
	// Separator rows
	regexp.MustCompile(`^\s*[-=*_.#]+\s*$`),
	// Pure numeric rows (prices, codes, nothing nameable)
	regexp.MustCompile(`^[\s\d.,*€]+$`),
}

// IsProductLine decides whether a raw OCR line plausibly represents a
// purchased product. Everything not matching a known noise pattern is
// provisionally a product.
func IsProductLine(text string) bool {
	trimmed := strings.TrimSpace(text)
	if visibleLength(trimmed) < 3 {
		return false
	}

	for _, re := range excludePatterns {
		if re.MatchString(trimmed) {
			return false
		}
	}

	return true
}

// visibleLength counts the non-space runes in a string.
func visibleLength(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
