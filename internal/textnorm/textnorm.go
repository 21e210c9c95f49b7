// Package textnorm holds the text normalization shared by deduplication,
// corpus statistics and scoring, so every component sees the same tokens.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinTermLength is the shortest token kept by Terms
const MinTermLength = 3

// stopWords is the fixed list dropped from corpus terms
var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "any": true,
	"such": true, "able": true, "other": true, "must": true, "should": true,
	"may": true, "would": true, "could": true, "out": true, "whos": true,
	"per": true, "via": true, "etc": true, "including": true, "within": true,
}

// Fold lowercases s and strips diacritics ("Société" -> "societe")
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Normalize folds s, strips punctuation and collapses whitespace.
// Separators such as '-', '/' and '_' become spaces; other punctuation is removed.
func Normalize(s string) string {
	folded := Fold(s)

	var b strings.Builder
	b.Grow(len(folded))
	space := true
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			space = false
		case unicode.IsSpace(r) || r == '-' || r == '/' || r == '_' || r == '|':
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Words splits normalized text into words
func Words(s string) []string {
	return strings.Fields(Normalize(s))
}

// Terms returns the words of s that are useful as corpus terms:
// longer than two characters and not stop words
func Terms(s string) []string {
	words := Words(s)
	terms := words[:0]
	for _, w := range words {
		if len([]rune(w)) < MinTermLength || stopWords[w] {
			continue
		}
		terms = append(terms, w)
	}
	return terms
}

// IsStopWord reports whether w is on the stop list
func IsStopWord(w string) bool {
	return stopWords[w]
}
