package search

import (
	"sort"
	"strings"

	"github.com/mealgrid/foodsearch/internal/models"
)

// Additive ranking weights. Absolute magnitudes only order records within a
// single request; they are never exposed or persisted.
const (
	genericQueryBonus  = 200.0 // generic query answered by a generic record
	brandedQueryBonus  = 50.0  // branded/specific query answered by a branded record
	namePrefixBonus    = 100.0
	nameContainsBonus  = 50.0
	brandContainsBonus = 20.0
	fullMacrosBonus    = 15.0
)

// scoredRecord pairs a record with its transient ranking score. The score
// never leaves the pipeline, so callers cannot come to depend on it.
type scoredRecord struct {
	record *models.FoodRecord
	score  float64
}

// Score rates how well a record answers the query. Pure; higher is better.
func Score(rec *models.FoodRecord, query string, isGenericQuery bool) float64 {
	var s float64
	if isGenericQuery && rec.FoodType == models.FoodTypeGeneric {
		s += genericQueryBonus
	}
	if !isGenericQuery && rec.FoodType == models.FoodTypeBranded {
		s += brandedQueryBonus
	}

	q := strings.ToLower(strings.TrimSpace(query))
	name := strings.ToLower(rec.Name)
	switch {
	case strings.HasPrefix(name, q):
		s += namePrefixBonus
	case strings.Contains(name, q):
		s += nameContainsBonus
	}
	if rec.Brand != "" && strings.Contains(strings.ToLower(rec.Brand), q) {
		s += brandContainsBonus
	}
	if rec.HasFullMacros() {
		s += fullMacrosBonus
	}
	return s
}

// rankRecords scores and orders records best-first. The sort is stable, so
// score ties keep the deduplicated input order.
func rankRecords(records []*models.FoodRecord, query string, isGenericQuery bool) []scoredRecord {
	scored := make([]scoredRecord, len(records))
	for i, rec := range records {
		scored[i] = scoredRecord{record: rec, score: Score(rec, query, isGenericQuery)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	return scored
}
