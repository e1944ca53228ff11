// Package search implements the food search aggregation pipeline: classify
// the query, fan out to the providers, deduplicate, score, and paginate.
package search

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mealgrid/foodsearch/internal/classifier"
	"github.com/mealgrid/foodsearch/internal/config"
	"github.com/mealgrid/foodsearch/internal/models"
	"github.com/mealgrid/foodsearch/internal/source"
)

// Engine aggregates food records from the cache mirror, the generic nutrition
// API, and the branded product DB. It holds no per-request state; one Engine
// serves arbitrarily many concurrent requests.
type Engine struct {
	cache   source.Source
	generic source.Source
	branded source.Source
	config  *config.SearchConfig
	logger  *zap.Logger
}

// NewEngine creates a search engine with the given sources. Sources are
// expected to be wrapped with source.NewGuard; the engine still treats any
// residual source error as an empty result.
func NewEngine(cache, generic, branded source.Source, cfg *config.SearchConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cache:   cache,
		generic: generic,
		branded: branded,
		config:  cfg,
		logger:  logger,
	}
}

// Search runs the whole pipeline for one request. The only errors it returns
// are caller cancellation; provider failures degrade the result set instead.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	query.Normalize()
	if query.Country == "" {
		query.Country = e.config.DefaultCountry
	}
	if query.Limit <= 0 {
		query.Limit = e.config.DefaultLimit
	}
	if query.Limit > e.config.MaxLimit {
		query.Limit = e.config.MaxLimit
	}

	if query.TooShort() {
		return &models.SearchResponse{
			Results: []*models.FoodRecord{},
			Query:   query.Query,
		}, nil
	}

	isGeneric := classifier.Classify(query.Query)

	page, err := e.fetchPage(ctx, query)
	if err != nil {
		return nil, err
	}

	deduped := Dedupe(page.records)
	scored := rankRecords(deduped, query.Query, isGeneric)

	response := assemble(scored, page.total, query.Limit, query.Offset)
	response.IsGenericQuery = isGeneric
	response.Query = query.Query
	response.QueryTime = time.Since(startTime).Milliseconds()
	return response, nil
}

// page holds the merged raw records for one request page plus the combined
// total estimate.
type page struct {
	records []*models.FoodRecord
	total   int
}

// fetchPage decides which sources serve the page. Page zero fans out to the
// cache and the generic API concurrently, then consults the branded DB when
// the cache came back sparse; that second step is a real data dependency, not
// a missed parallelization. Later pages trust the cache alone, since only the
// cache supports true random-access pagination.
func (e *Engine) fetchPage(ctx context.Context, query *models.SearchQuery) (*page, error) {
	if query.Offset > 0 {
		res := e.searchSource(ctx, e.cache, query, query.Offset)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &page{records: res.Records, total: res.Total}, nil
	}

	var (
		cacheRes   *source.Result
		genericRes *source.Result
		wg         sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		cacheRes = e.searchSource(ctx, e.cache, query, 0)
	}()
	go func() {
		defer wg.Done()
		genericRes = e.searchSource(ctx, e.generic, query, 0)
	}()
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]*models.FoodRecord, 0, len(cacheRes.Records)+len(genericRes.Records))
	records = append(records, cacheRes.Records...)
	records = append(records, genericRes.Records...)
	reported := cacheRes.Total + genericRes.Total

	if len(cacheRes.Records) < e.config.BrandedFallbackThreshold {
		brandedRes := e.searchSource(ctx, e.branded, query, 0)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records = append(records, brandedRes.Records...)
		reported += brandedRes.Total
	}

	// Conservative estimate: exact global counts across independent providers
	// are not obtainable, so take the larger of the reported sum and what we
	// actually hold pre-dedup.
	total := reported
	if len(records) > total {
		total = len(records)
	}
	return &page{records: records, total: total}, nil
}

// searchSource never fails: sources arrive guarded, and any residual error is
// logged and treated as an empty result.
func (e *Engine) searchSource(ctx context.Context, src source.Source, query *models.SearchQuery, offset int) *source.Result {
	res, err := src.Search(ctx, query.Query, query.Country, query.Limit, offset)
	if err != nil {
		e.logger.Warn("source search failed",
			zap.String("source", src.Name()),
			zap.String("query", query.Query),
			zap.Error(err),
		)
		return &source.Result{}
	}
	if res == nil {
		return &source.Result{}
	}
	return res
}

// assemble truncates scored records to the page size and derives has_more.
// The second disjunct compensates for total being an estimate that can
// undercount when the page-zero fan-out pulls in more unique records than the
// cache alone reported.
func assemble(scored []scoredRecord, total, limit, offset int) *models.SearchResponse {
	results := make([]*models.FoodRecord, 0, limit)
	for i, sr := range scored {
		if i >= limit {
			break
		}
		results = append(results, sr.record)
	}
	return &models.SearchResponse{
		Results: results,
		Total:   total,
		HasMore: offset+limit < total || len(scored) > limit,
	}
}
