package search

import (
	"strings"
	"unicode"

	"github.com/mealgrid/foodsearch/internal/models"
)

// dedupeKey folds a record name into its deduplication key: lowercased with
// every non-alphanumeric rune stripped, so "Greek Yogurt" and "greek-yogurt!"
// collide.
func dedupeKey(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Dedupe merges records that refer to the same underlying food. It is a
// single left-to-right fold over the input order: deterministic and O(n), not
// globally optimal. On a key collision the incoming record replaces the kept
// one only if it has complete core macros and the kept one does not, or if it
// is generic while the kept one is branded.
func Dedupe(records []*models.FoodRecord) []*models.FoodRecord {
	kept := make([]*models.FoodRecord, 0, len(records))
	index := make(map[string]int, len(records))
	for _, rec := range records {
		key := dedupeKey(rec.Name)
		at, seen := index[key]
		if !seen {
			index[key] = len(kept)
			kept = append(kept, rec)
			continue
		}
		if replaces(rec, kept[at]) {
			kept[at] = rec
		}
	}
	return kept
}

func replaces(incoming, kept *models.FoodRecord) bool {
	if incoming.HasCoreMacros() && !kept.HasCoreMacros() {
		return true
	}
	if incoming.FoodType == models.FoodTypeGeneric && kept.FoodType == models.FoodTypeBranded {
		return true
	}
	return false
}
