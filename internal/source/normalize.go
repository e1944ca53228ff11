package source

import (
	"sort"
	"strings"

	"github.com/mealgrid/foodsearch/internal/models"
)

// Normalize canonicalizes a freshly decoded provider record before it enters
// the pipeline. It returns false when the record must be dropped (empty name).
// Unknown numeric values stay nil; negative values are treated as unknown
// rather than clamped, so a provider glitch never becomes a fake measurement.
func Normalize(rec *models.FoodRecord, defaultType models.FoodType, src models.Source) bool {
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		return false
	}
	if rec.FoodType != models.FoodTypeGeneric && rec.FoodType != models.FoodTypeBranded {
		rec.FoodType = defaultType
	}
	if rec.Source == "" {
		rec.Source = src
	}
	rec.Brand = strings.TrimSpace(rec.Brand)
	rec.CaloriesPer100g = nonNegative(rec.CaloriesPer100g)
	rec.ProteinG = nonNegative(rec.ProteinG)
	rec.CarbsG = nonNegative(rec.CarbsG)
	rec.FatG = nonNegative(rec.FatG)
	rec.FiberG = nonNegative(rec.FiberG)
	rec.SugarG = nonNegative(rec.SugarG)
	rec.SodiumMg = nonNegative(rec.SodiumMg)
	rec.ServingSizeG = nonNegative(rec.ServingSizeG)
	rec.Allergens = foldAllergens(rec.Allergens)
	return true
}

func nonNegative(v *float64) *float64 {
	if v != nil && *v < 0 {
		return nil
	}
	return v
}

// foldAllergens lowercases, trims, dedupes, and sorts the allergen set.
func foldAllergens(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
