package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mealgrid/foodsearch/internal/models"
	"github.com/mealgrid/foodsearch/internal/storage"
)

func TestCacheSourceSearch(t *testing.T) {
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "foods.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	records := []*models.FoodRecord{
		{ExternalID: "c1", Name: "Abalone", CaloriesPer100g: f(105), ProteinG: f(17.1), CarbsG: f(6), FatG: f(0.8)},
		{ExternalID: "c2", Name: "Abalone Soup"},
	}
	if err := store.UpsertFoods(ctx, records, "GB"); err != nil {
		t.Fatal(err)
	}

	src := NewCacheSource(store)
	if src.Name() != "cache" {
		t.Errorf("name: got %s", src.Name())
	}
	res, err := src.Search(ctx, "abalone", "GB", 10, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if res.Total != 2 || len(res.Records) != 2 {
		t.Fatalf("got total %d, %d records", res.Total, len(res.Records))
	}
	for _, rec := range res.Records {
		if rec.Source != models.SourceCache {
			t.Errorf("source: got %s", rec.Source)
		}
		if rec.FoodType == "" {
			t.Error("food type must always be set")
		}
	}
}
