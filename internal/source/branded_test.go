package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mealgrid/foodsearch/internal/models"
)

func brandedHandler(t *testing.T, region string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/products/search" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"products": [
				{
					"id": "` + region + `-1",
					"barcode": "5000159484695",
					"name": "Chocolate Bar",
					"brand": "CocoaWorks",
					"nutrition_per_100g": {"calories_kcal": 534, "protein_g": 7.3, "carbs_g": 59, "fat_g": 30},
					"allergens": ["Milk", "SOYA"]
				}
			],
			"count": 4
		}`))
	}
}

func TestBrandedDBSearch(t *testing.T) {
	world := httptest.NewServer(brandedHandler(t, "world"))
	defer world.Close()

	s := NewBrandedDBSource(world.URL, nil, "", time.Second)
	res, err := s.Search(context.Background(), "chocolate", "GB", 10, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if res.Total != 4 {
		t.Errorf("total: got %d", res.Total)
	}
	if len(res.Records) != 1 {
		t.Fatalf("records: got %d", len(res.Records))
	}
	rec := res.Records[0]
	if rec.FoodType != models.FoodTypeBranded || rec.Source != models.SourceBrandedDB {
		t.Errorf("unexpected provenance: %s/%s", rec.FoodType, rec.Source)
	}
	if rec.Brand != "CocoaWorks" || rec.Barcode != "5000159484695" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if len(rec.Allergens) != 2 || rec.Allergens[0] != "milk" || rec.Allergens[1] != "soya" {
		t.Errorf("allergens not folded: %v", rec.Allergens)
	}
}

func TestBrandedDBRegionalEndpoint(t *testing.T) {
	world := httptest.NewServer(brandedHandler(t, "world"))
	defer world.Close()
	gb := httptest.NewServer(brandedHandler(t, "gb"))
	defer gb.Close()

	s := NewBrandedDBSource(world.URL, map[string]string{"GB": gb.URL}, "", time.Second)

	res, err := s.Search(context.Background(), "chocolate", "gb", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Records[0].ExternalID != "gb-1" {
		t.Errorf("expected GB catalog, got %s", res.Records[0].ExternalID)
	}

	res, err = s.Search(context.Background(), "chocolate", "FR", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Records[0].ExternalID != "world-1" {
		t.Errorf("expected world catalog fallback, got %s", res.Records[0].ExternalID)
	}
}

func TestBrandedDBServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewBrandedDBSource(srv.URL, nil, "", time.Second)
	if _, err := s.Search(context.Background(), "chocolate", "GB", 10, 0); err == nil {
		t.Fatal("expected error when every attempt fails")
	}
}
