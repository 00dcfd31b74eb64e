// Package lexical provides text normalization and synonym expansion for
// Italian grocery terms as they appear on printed receipts.
package lexical

import "strings"

// accentFold maps accented vowels common on Italian receipts to their
// unaccented form.
var accentFold = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a",
	"è", "e", "é", "e", "ê", "e",
	"ì", "i", "í", "i", "î", "i",
	"ò", "o", "ó", "o", "ô", "o",
	"ù", "u", "ú", "u", "û", "u",
)

// Normalize lower-cases, strips accents and collapses internal whitespace.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = accentFold.Replace(text)
	return strings.Join(strings.Fields(text), " ")
}

// Expand returns the normalized input plus every variant obtainable through
// the synonym table: a base term found in the text is substituted with each
// of its receipt-style abbreviations, and an abbreviation found in the text
// is substituted back to its base. The result always contains at least the
// normalized input.
func Expand(text string) []string {
	normalized := Normalize(text)

	variants := []string{normalized}
	seen := map[string]bool{normalized: true}

	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	for base, synonyms := range synonyms {
		if containsTerm(normalized, base) {
			for _, syn := range synonyms {
				add(replaceTerm(normalized, base, syn))
			}
		}
		for _, syn := range synonyms {
			if containsTerm(normalized, syn) {
				add(replaceTerm(normalized, syn, base))
			}
		}
	}

	return variants
}

// containsTerm reports whether term occurs in text on word boundaries, so
// "pane" does not fire inside "panetteria".
func containsTerm(text, term string) bool {
	idx := strings.Index(text, term)
	for idx >= 0 {
		before := idx == 0 || text[idx-1] == ' '
		end := idx + len(term)
		after := end == len(text) || text[end] == ' '
		if before && after {
			return true
		}
		next := strings.Index(text[idx+1:], term)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}

// replaceTerm substitutes every word-boundary occurrence of old with repl.
func replaceTerm(text, old, repl string) string {
	if text == old {
		return repl
	}
	out := text
	if strings.HasPrefix(out, old+" ") {
		out = repl + strings.TrimPrefix(out, old)
	}
	if strings.HasSuffix(out, " "+old) {
		out = strings.TrimSuffix(out, old) + repl
	}
	out = strings.ReplaceAll(out, " "+old+" ", " "+repl+" ")
	return out
}
