package models

// SearchResponse is the response for a food search request. Total is a
// best-effort combined count across providers; it can overcount relative to
// the deduplicated result set (see HasMore handling in the pipeline).
type SearchResponse struct {
	Results        []*FoodRecord `json:"results"`
	Total          int           `json:"total"`
	HasMore        bool          `json:"has_more"`
	IsGenericQuery bool          `json:"is_generic_query"`
	Query          string        `json:"query,omitempty"`
	QueryTime      int64         `json:"query_time_ms,omitempty"`
	// Error is set only on total pipeline failure, never for degraded sources.
	Error string `json:"error,omitempty"`
}
