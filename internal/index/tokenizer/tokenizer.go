// Package tokenizer provides text normalisation and tokenisation for the
// search index. It lower-cases input, folds diacritics, splits on
// non-alphanumeric boundaries, and deduplicates tokens while preserving
// first-occurrence order.
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinTokenLength is the shortest non-numeric token kept by Tokenize.
// Purely numeric tokens are exempt so that unit and street numbers
// ("1", "123") remain searchable.
const MinTokenLength = 2

// Normalize returns the canonical form of text: lowercased, diacritics
// folded, runs of whitespace collapsed to single spaces, and trimmed.
// It never fails; empty input yields the empty string.
func Normalize(text string) string {
	folded := foldDiacritics(strings.ToLower(text))
	return strings.Join(strings.Fields(folded), " ")
}

// Tokenize splits text on non-alphanumeric boundaries and returns the
// normalised tokens in first-occurrence order with duplicates removed.
// Tokens shorter than MinTokenLength are dropped unless purely numeric.
func Tokenize(text string) []string {
	folded := foldDiacritics(strings.ToLower(text))
	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, word := range words {
		if utf8.RuneCountInString(word) < MinTokenLength && !isNumeric(word) {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		tokens = append(tokens, word)
	}
	return tokens
}

// foldDiacritics removes combining marks after canonical decomposition,
// so "café" becomes "cafe". On transform failure the input is returned
// unchanged rather than dropped.
func foldDiacritics(s string) string {
	if isASCII(s) {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
