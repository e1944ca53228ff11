// Package models defines core data structures for food records, queries, and search responses.
package models

// FoodType distinguishes category-level foods from packaged products.
type FoodType string

const (
	// FoodTypeGeneric is an unbranded, category-level item ("banana").
	FoodTypeGeneric FoodType = "generic"
	// FoodTypeBranded is a specific commercial SKU, typically carrying a barcode.
	FoodTypeBranded FoodType = "branded"
)

// Source identifies which adapter produced a record.
type Source string

const (
	SourceCache      Source = "cache"
	SourceGenericAPI Source = "generic-api"
	SourceBrandedDB  Source = "branded-db"
)

// FoodRecord is the unified record shape every provider is normalized into.
// Optional numeric fields are pointers: nil means unknown, a zero value means
// measured as zero. The two are never conflated so downstream calorie math
// does not gain false precision.
type FoodRecord struct {
	ExternalID      string   `json:"external_id"`
	Barcode         string   `json:"barcode,omitempty"`
	Name            string   `json:"name"`
	Brand           string   `json:"brand,omitempty"`
	CaloriesPer100g *float64 `json:"calories_per_100g,omitempty"`
	ProteinG        *float64 `json:"protein_g,omitempty"`
	CarbsG          *float64 `json:"carbs_g,omitempty"`
	FatG            *float64 `json:"fat_g,omitempty"`
	FiberG          *float64 `json:"fiber_g,omitempty"`
	SugarG          *float64 `json:"sugar_g,omitempty"`
	SodiumMg        *float64 `json:"sodium_mg,omitempty"`
	ServingSizeG    *float64 `json:"serving_size_g,omitempty"`
	FoodType        FoodType `json:"food_type"`
	Source          Source   `json:"source"`
	Allergens       []string `json:"allergens,omitempty"`
	ImageURL        string   `json:"image_url,omitempty"`
}

// HasCoreMacros reports whether calories and protein are both known.
func (r *FoodRecord) HasCoreMacros() bool {
	return r.CaloriesPer100g != nil && r.ProteinG != nil
}

// HasFullMacros reports whether all four macro fields are known.
func (r *FoodRecord) HasFullMacros() bool {
	return r.CaloriesPer100g != nil && r.ProteinG != nil && r.CarbsG != nil && r.FatG != nil
}
