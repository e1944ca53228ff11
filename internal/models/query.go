package models

import (
	"strings"
	"unicode/utf8"
)

// minQueryLength is the shortest trimmed query worth searching, in runes.
const minQueryLength = 2

// SearchQuery represents one food search request.
type SearchQuery struct {
	Query   string `json:"query"`
	Country string `json:"country,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// Normalize trims the query text and clamps the offset. Limit and country
// defaults come from configuration and are applied by the engine.
func (q *SearchQuery) Normalize() {
	q.Query = strings.TrimSpace(q.Query)
	if q.Offset < 0 {
		q.Offset = 0
	}
}

// TooShort reports whether the trimmed query is below the minimum searchable
// length. A too-short query is a defined empty-result case, not an error.
func (q *SearchQuery) TooShort() bool {
	return utf8.RuneCountInString(strings.TrimSpace(q.Query)) < minQueryLength
}
