package source

import (
	"context"
	"fmt"

	"github.com/mealgrid/foodsearch/internal/models"
	"github.com/mealgrid/foodsearch/internal/storage"
)

// CacheSource serves the locally mirrored, pre-normalized food catalog. It is
// the only source trusted for pages beyond the first: it supports real
// offset/limit pagination and reports an authoritative total for its subset.
type CacheSource struct {
	store storage.FoodStore
}

// NewCacheSource creates a cache adapter over the given store.
func NewCacheSource(store storage.FoodStore) *CacheSource {
	return &CacheSource{store: store}
}

// Name identifies this adapter in logs and record provenance.
func (s *CacheSource) Name() string {
	return string(models.SourceCache)
}

// Search returns one page of mirror matches with the mirror's own total.
func (s *CacheSource) Search(ctx context.Context, query, country string, limit, offset int) (*Result, error) {
	records, total, err := s.store.SearchFoods(ctx, query, country, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("cache search: %w", err)
	}
	kept := records[:0]
	for _, rec := range records {
		if Normalize(rec, models.FoodTypeGeneric, models.SourceCache) {
			kept = append(kept, rec)
		}
	}
	return &Result{Records: kept, Total: total}, nil
}
