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

// maxProviderRetries bounds transient-failure retries per provider call. The
// whole attempt still runs under the Guard timeout.
const maxProviderRetries = 2

// GenericAPISource queries an external generic-nutrition lookup. The provider
// does not support deep pagination reliably, so the coordinator only consults
// it on the first page.
type GenericAPISource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewGenericAPISource creates the generic-foods adapter. timeout caps each
// HTTP round trip; retries still respect the caller's context.
func NewGenericAPISource(baseURL, apiKey string, timeout time.Duration) *GenericAPISource {
	return &GenericAPISource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name identifies this adapter in logs and record provenance.
func (s *GenericAPISource) Name() string {
	return string(models.SourceGenericAPI)
}

// genericSearchResponse is the provider's native search payload.
type genericSearchResponse struct {
	Foods []struct {
		ID              string   `json:"id"`
		Name            string   `json:"name"`
		CaloriesPer100g *float64 `json:"calories_per_100g"`
		ProteinG        *float64 `json:"protein_g"`
		CarbsG          *float64 `json:"carbs_g"`
		FatG            *float64 `json:"fat_g"`
		FiberG          *float64 `json:"fiber_g"`
		SugarG          *float64 `json:"sugar_g"`
		SodiumMg        *float64 `json:"sodium_mg"`
		ServingSizeG    *float64 `json:"serving_size_g"`
		Allergens       []string `json:"allergens"`
		ImageURL        string   `json:"image_url"`
	} `json:"foods"`
	Total int `json:"total"`
}

// Search runs a first-page lookup against the generic nutrition API and
// normalizes the payload into unified records.
func (s *GenericAPISource) Search(ctx context.Context, query, country string, limit, offset int) (*Result, error) {
	endpoint, err := url.Parse(s.baseURL + "/v1/foods/search")
	if err != nil {
		return nil, fmt.Errorf("generic api url: %w", err)
	}
	params := endpoint.Query()
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	endpoint.RawQuery = params.Encode()

	var decoded genericSearchResponse
	if err := s.get(ctx, endpoint.String(), &decoded); err != nil {
		return nil, err
	}

	records := make([]*models.FoodRecord, 0, len(decoded.Foods))
	for _, f := range decoded.Foods {
		rec := &models.FoodRecord{
			ExternalID:      f.ID,
			Name:            f.Name,
			CaloriesPer100g: f.CaloriesPer100g,
			ProteinG:        f.ProteinG,
			CarbsG:          f.CarbsG,
			FatG:            f.FatG,
			FiberG:          f.FiberG,
			SugarG:          f.SugarG,
			SodiumMg:        f.SodiumMg,
			ServingSizeG:    f.ServingSizeG,
			Allergens:       f.Allergens,
			ImageURL:        f.ImageURL,
			FoodType:        models.FoodTypeGeneric,
			Source:          models.SourceGenericAPI,
		}
		if Normalize(rec, models.FoodTypeGeneric, models.SourceGenericAPI) {
			records = append(records, rec)
		}
	}
	return &Result{Records: records, Total: decoded.Total}, nil
}

// get fetches and decodes a JSON payload, retrying transient failures
// (network errors, 429, 5xx) with exponential backoff.
func (s *GenericAPISource) get(ctx context.Context, rawURL string, out interface{}) error {
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
			return fmt.Errorf("generic api returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("generic api returned %d", resp.StatusCode))
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode generic api response: %w", err))
		}
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(newRetryBackOff(), maxProviderRetries), ctx)
	return backoff.Retry(op, policy)
}

// newRetryBackOff returns a short exponential backoff suited to an
// interactive search request.
func newRetryBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 300 * time.Millisecond
	return b
}
