// Package source defines the provider capability contract and its adapters.
//
// Every data provider sits behind the same Source interface: given a text
// query and country, return zero or more normalized records within a bounded
// time, or fail. Failure containment is layered on with Guard so that one bad
// provider degrades result richness, never availability.
package source

import (
	"context"

	"github.com/mealgrid/foodsearch/internal/models"
)

// Result is one provider's answer for a single page.
type Result struct {
	Records []*models.FoodRecord
	// Total is the provider-reported match count for the whole query, not
	// just this page. Only the cache adapter's value is authoritative.
	Total int
}

// Source is the capability contract every provider adapter implements.
type Source interface {
	Name() string
	Search(ctx context.Context, query, country string, limit, offset int) (*Result, error)
}
