package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/mealgrid/foodsearch/internal/models"
)

var (
	errInvalidBody   = errors.New("invalid request body")
	errInvalidLimit  = errors.New("invalid limit parameter")
	errInvalidOffset = errors.New("invalid offset parameter")
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	// Failed requests still answer with the response shape clients parse.
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("search handler panic", zap.Any("panic", rec))
			s.respondJSON(w, http.StatusInternalServerError, &models.SearchResponse{
				Results: []*models.FoodRecord{},
				Error:   "internal error",
			})
		}
	}()

	query, err := decodeSearchRequest(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("search request",
		zap.String("query", query.Query),
		zap.String("country", query.Country),
		zap.Int("limit", query.Limit),
		zap.Int("offset", query.Offset),
	)
	response, err := s.engine.Search(r.Context(), query)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondJSON(w, http.StatusInternalServerError, &models.SearchResponse{
			Results: []*models.FoodRecord{},
			Error:   err.Error(),
		})
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

// decodeSearchRequest accepts the query either as a JSON body (POST) or as
// URL parameters (GET). Both q and query are accepted parameter names.
func decodeSearchRequest(r *http.Request) (*models.SearchQuery, error) {
	if r.Method == http.MethodPost {
		var query models.SearchQuery
		if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
			return nil, errInvalidBody
		}
		return &query, nil
	}

	params := r.URL.Query()
	query := &models.SearchQuery{
		Query:   params.Get("q"),
		Country: params.Get("country"),
	}
	if query.Query == "" {
		query.Query = params.Get("query")
	}
	if raw := params.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errInvalidLimit
		}
		query.Limit = n
	}
	if raw := params.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errInvalidOffset
		}
		query.Offset = n
	}
	return query, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	foodCount, err := s.store.CountFoods(r.Context())
	if err != nil {
		s.logger.Error("status: count foods failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"foods": foodCount,
	}
	if s.appConfig != nil {
		resp["config"] = map[string]interface{}{
			"database_path":              s.appConfig.Storage.DatabasePath,
			"default_country":            s.appConfig.Search.DefaultCountry,
			"default_limit":              s.appConfig.Search.DefaultLimit,
			"max_limit":                  s.appConfig.Search.MaxLimit,
			"branded_fallback_threshold": s.appConfig.Search.BrandedFallbackThreshold,
			"provider_timeout_ms":        s.appConfig.Providers.TimeoutMS,
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
