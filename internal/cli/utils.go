// Package cli provides output helpers for the foodsearch command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mealgrid/foodsearch/internal/models"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact is one result per line, for piping into other tools.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		writeSearchResultsCompact(w, response)
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsCompact(w io.Writer, response *models.SearchResponse) {
	for i, rec := range response.Results {
		line := rec.Name
		if rec.Brand != "" {
			line += " (" + rec.Brand + ")"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s kcal/100g\n", i+1, line, rec.FoodType,
			formatMacro(rec.CaloriesPer100g))
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	kind := "branded/specific"
	if response.IsGenericQuery {
		kind = "generic"
	}
	fmt.Fprintf(w, "\nFound %d results in %dms (%s query, %d total", len(response.Results),
		response.QueryTime, kind, response.Total)
	if response.HasMore {
		fmt.Fprint(w, ", more available")
	}
	fmt.Fprint(w, ")\n\n")
	for i, rec := range response.Results {
		writeOneResult(w, i+1, rec)
	}
}

func writeOneResult(w io.Writer, rank int, rec *models.FoodRecord) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "%d. %s", rank, rec.Name)
	if rec.Brand != "" {
		fmt.Fprintf(w, " (%s)", rec.Brand)
	}
	fmt.Fprintf(w, "\n[%s/%s] ID: %s\n", rec.FoodType, rec.Source, rec.ExternalID)
	fmt.Fprintf(w, "Per 100g: %s kcal | protein %sg | carbs %sg | fat %sg\n",
		formatMacro(rec.CaloriesPer100g), formatMacro(rec.ProteinG),
		formatMacro(rec.CarbsG), formatMacro(rec.FatG))
	if len(rec.Allergens) > 0 {
		fmt.Fprintf(w, "Allergens: %s\n", strings.Join(rec.Allergens, ", "))
	}
	fmt.Fprintln(w)
}

// formatMacro renders an optional nutrient value, distinguishing an unknown
// value from a measured zero.
func formatMacro(v *float64) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%g", *v)
}

// PrintSearchResults prints search results to stdout in text format (backward compatible).
func PrintSearchResults(response *models.SearchResponse) {
	_ = WriteSearchResults(os.Stdout, response, OutputText)
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
