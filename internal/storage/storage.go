// Package storage defines the persistence interface for the mirrored food catalog.
package storage

import (
	"context"

	"github.com/mealgrid/foodsearch/internal/models"
)

// FoodStore defines read and import operations over the local food mirror.
// The search pipeline only reads; writes happen through the import path.
type FoodStore interface {
	// SearchFoods returns one page of name matches plus the total match count
	// for the whole query within the given country scope.
	SearchFoods(ctx context.Context, query, country string, limit, offset int) ([]*models.FoodRecord, int, error)

	// UpsertFoods inserts or refreshes mirrored records in a single transaction.
	UpsertFoods(ctx context.Context, records []*models.FoodRecord, country string) error

	// CountFoods returns the total number of mirrored records.
	CountFoods(ctx context.Context) (int64, error)

	Close() error
}
