// Package classifier labels free-text food queries as generic or branded.
package classifier

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// brandWord matches the literal word "brand" anywhere in the query.
	brandWord = regexp.MustCompile(`(?i)\bbrand\b`)
	// byName matches a "by <name>" attribution, a strong brand signal.
	byName = regexp.MustCompile(`(?i)\bby\s+\p{L}`)
)

// Classify reports whether the query looks like a generic, category-level food
// ("banana") rather than a branded or specific product. Pure and deterministic.
// Rules are ordered; the first matching negative rule governs:
//  1. brand indicators (registered/trademark marks, the word "brand", "by <name>")
//  2. any digit (pack sizes, percentages, SKUs)
//  3. two words or fewer is generic
//  4. otherwise not generic
func Classify(text string) bool {
	if hasBrandIndicator(text) {
		return false
	}
	for _, r := range text {
		if unicode.IsDigit(r) {
			return false
		}
	}
	return len(strings.Fields(text)) <= 2
}

// hasBrandIndicator checks for trademark punctuation and brand wording. The
// marks are matched literally, not stripped as punctuation.
func hasBrandIndicator(text string) bool {
	if strings.ContainsAny(text, "®™") {
		return true
	}
	return brandWord.MatchString(text) || byName.MatchString(text)
}
