package source

import (
	"testing"

	"github.com/mealgrid/foodsearch/internal/models"
)

func f(v float64) *float64 { return &v }

func TestNormalizeDropsEmptyNames(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		rec := &models.FoodRecord{Name: name}
		if Normalize(rec, models.FoodTypeGeneric, models.SourceCache) {
			t.Errorf("record with name %q should be dropped", name)
		}
	}
}

func TestNormalizeDefaults(t *testing.T) {
	rec := &models.FoodRecord{Name: " Porridge Oats "}
	if !Normalize(rec, models.FoodTypeGeneric, models.SourceGenericAPI) {
		t.Fatal("record should be kept")
	}
	if rec.Name != "Porridge Oats" {
		t.Errorf("name not trimmed: %q", rec.Name)
	}
	if rec.FoodType != models.FoodTypeGeneric {
		t.Errorf("food type not defaulted: %s", rec.FoodType)
	}
	if rec.Source != models.SourceGenericAPI {
		t.Errorf("source not defaulted: %s", rec.Source)
	}

	// An unrecognized food type also falls back to the default.
	rec = &models.FoodRecord{Name: "Oats", FoodType: "mystery"}
	Normalize(rec, models.FoodTypeBranded, models.SourceBrandedDB)
	if rec.FoodType != models.FoodTypeBranded {
		t.Errorf("unrecognized food type: got %s", rec.FoodType)
	}
}

func TestNormalizeNumericFields(t *testing.T) {
	rec := &models.FoodRecord{
		Name:            "Broken Food",
		CaloriesPer100g: f(-1),
		ProteinG:        f(0),
		CarbsG:          f(12.5),
	}
	Normalize(rec, models.FoodTypeGeneric, models.SourceCache)
	if rec.CaloriesPer100g != nil {
		t.Error("negative calories should become unknown")
	}
	if rec.ProteinG == nil || *rec.ProteinG != 0 {
		t.Error("measured-as-zero protein must survive")
	}
	if rec.CarbsG == nil || *rec.CarbsG != 12.5 {
		t.Error("valid carbs must survive")
	}
	if rec.FatG != nil {
		t.Error("absent fat must stay nil")
	}
}

func TestFoldAllergens(t *testing.T) {
	got := foldAllergens([]string{" Milk ", "GLUTEN", "milk", "", "soy"})
	want := []string{"gluten", "milk", "soy"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %s, want %s", i, got[i], want[i])
		}
	}
	if foldAllergens(nil) != nil {
		t.Error("nil in, nil out")
	}
}
