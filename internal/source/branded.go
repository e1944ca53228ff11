package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mealgrid/foodsearch/internal/models"
)

// BrandedDBSource queries an external branded/packaged-product database. The
// catalog is regional: the request country selects the endpoint, falling back
// to the world catalog. The coordinator invokes it only when the cache came
// back sparse, which bounds external call volume.
type BrandedDBSource struct {
	defaultURL string
	endpoints  map[string]string
	apiKey     string
	client     *http.Client
}

// NewBrandedDBSource creates the branded-product adapter. endpoints maps
// upper-case country codes to regional base URLs.
func NewBrandedDBSource(defaultURL string, endpoints map[string]string, apiKey string, timeout time.Duration) *BrandedDBSource {
	return &BrandedDBSource{
		defaultURL: strings.TrimRight(defaultURL, "/"),
		endpoints:  endpoints,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: timeout},
	}
}

// Name identifies this adapter in logs and record provenance.
func (s *BrandedDBSource) Name() string {
	return string(models.SourceBrandedDB)
}

// baseURL returns the regional catalog for country, or the world catalog.
func (s *BrandedDBSource) baseURL(country string) string {
	if u, ok := s.endpoints[strings.ToUpper(country)]; ok && u != "" {
		return strings.TrimRight(u, "/")
	}
	return s.defaultURL
}

// brandedSearchResponse is the provider's native search payload.
type brandedSearchResponse struct {
	Products []struct {
		ID               string `json:"id"`
		Barcode          string `json:"barcode"`
		Name             string `json:"name"`
		Brand            string `json:"brand"`
		NutritionPer100g struct {
			CaloriesKcal *float64 `json:"calories_kcal"`
			ProteinG     *float64 `json:"protein_g"`
			CarbsG       *float64 `json:"carbs_g"`
			FatG         *float64 `json:"fat_g"`
			FiberG       *float64 `json:"fiber_g"`
			SugarG       *float64 `json:"sugar_g"`
			SodiumMg     *float64 `json:"sodium_mg"`
		} `json:"nutrition_per_100g"`
		ServingSizeG *float64 `json:"serving_size_g"`
		Allergens    []string `json:"allergens"`
		ImageURL     string   `json:"image_url"`
	} `json:"products"`
	Count int `json:"count"`
}

// Search runs a first-page lookup against the regional branded catalog.
func (s *BrandedDBSource) Search(ctx context.Context, query, country string, limit, offset int) (*Result, error) {
	endpoint, err := url.Parse(s.baseURL(country) + "/v1/products/search")
	if err != nil {
		return nil, fmt.Errorf("branded db url: %w", err)
	}
	params := endpoint.Query()
	params.Set("q", query)
	params.Set("country", strings.ToUpper(country))
	params.Set("page_size", strconv.Itoa(limit))
	endpoint.RawQuery = params.Encode()

	var decoded brandedSearchResponse
	if err := s.get(ctx, endpoint.String(), &decoded); err != nil {
		return nil, err
	}

	records := make([]*models.FoodRecord, 0, len(decoded.Products))
	for _, p := range decoded.Products {
		rec := &models.FoodRecord{
			ExternalID:      p.ID,
			Barcode:         p.Barcode,
			Name:            p.Name,
			Brand:           p.Brand,
			CaloriesPer100g: p.NutritionPer100g.CaloriesKcal,
			ProteinG:        p.NutritionPer100g.ProteinG,
			CarbsG:          p.NutritionPer100g.CarbsG,
			FatG:            p.NutritionPer100g.FatG,
			FiberG:          p.NutritionPer100g.FiberG,
			SugarG:          p.NutritionPer100g.SugarG,
			SodiumMg:        p.NutritionPer100g.SodiumMg,
			ServingSizeG:    p.ServingSizeG,
			Allergens:       p.Allergens,
			ImageURL:        p.ImageURL,
			FoodType:        models.FoodTypeBranded,
			Source:          models.SourceBrandedDB,
		}
		if Normalize(rec, models.FoodTypeBranded, models.SourceBrandedDB) {
			records = append(records, rec)
		}
	}
	return &Result{Records: records, Total: decoded.Count}, nil
}

// get fetches and decodes a JSON payload, retrying transient failures with
// exponential backoff.
func (s *BrandedDBSource) get(ctx context.Context, rawURL string, out interface{}) error {
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if s.apiKey != "" {
			req.Header.Set("X-Api-Key", s.apiKey)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("branded db returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("branded db returned %d", resp.StatusCode))
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode branded db response: %w", err))
		}
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(newRetryBackOff(), maxProviderRetries), ctx)
	return backoff.Retry(op, policy)
}
