package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/mealgrid/foodsearch/internal/models"
)

func f(v float64) *float64 { return &v }

func TestWriteSearchResults_JSON(t *testing.T) {
	response := &models.SearchResponse{
		Query:          "yogurt",
		QueryTime:      42,
		Total:          1,
		IsGenericQuery: true,
		Results: []*models.FoodRecord{
			{
				ExternalID:      "food-1",
				Name:            "Greek Yogurt",
				FoodType:        models.FoodTypeGeneric,
				Source:          models.SourceCache,
				CaloriesPer100g: f(59),
				ProteinG:        f(10),
			},
		},
	}
	var buf bytes.Buffer
	err := WriteSearchResults(&buf, response, OutputJSON)
	if err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != response.Query || decoded.QueryTime != response.QueryTime {
		t.Errorf("decoded query=%q query_time=%d, want query=%q query_time=%d",
			decoded.Query, decoded.QueryTime, response.Query, response.QueryTime)
	}
	if len(decoded.Results) != 1 || decoded.Results[0].ExternalID != "food-1" {
		t.Errorf("decoded results: want one record with id food-1, got %+v", decoded.Results)
	}
}

func TestWriteSearchResults_text(t *testing.T) {
	response := &models.SearchResponse{
		Query:          "cola",
		QueryTime:      10,
		Total:          2,
		HasMore:        true,
		IsGenericQuery: false,
		Results: []*models.FoodRecord{
			{
				ExternalID:      "b1",
				Name:            "Coca Cola 330ml",
				Brand:           "Coca Cola",
				FoodType:        models.FoodTypeBranded,
				Source:          models.SourceBrandedDB,
				CaloriesPer100g: f(42),
				ProteinG:        f(0),
				CarbsG:          f(10.6),
				FatG:            f(0),
				Allergens:       []string{"caffeine"},
			},
		},
	}
	var buf bytes.Buffer
	err := WriteSearchResults(&buf, response, OutputText)
	if err != nil {
		t.Fatalf("WriteSearchResults(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{
		"Found 1 results", "10ms", "branded/specific", "more available",
		"Coca Cola 330ml", "(Coca Cola)", "branded/branded-db", "42 kcal",
		"carbs 10.6g", "Allergens: caffeine",
	} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteSearchResults_textUnknownMacros(t *testing.T) {
	response := &models.SearchResponse{
		Query:          "apple",
		Total:          1,
		IsGenericQuery: true,
		Results: []*models.FoodRecord{
			{ExternalID: "g1", Name: "Apple", FoodType: models.FoodTypeGeneric,
				Source: models.SourceGenericAPI, CaloriesPer100g: f(0)},
		},
	}
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputText); err != nil {
		t.Fatalf("WriteSearchResults(text): %v", err)
	}
	out := buf.String()
	// A measured zero prints as 0; unknown values print as ?.
	if !strings.Contains(out, "0 kcal") {
		t.Errorf("measured zero should print as 0:\n%s", out)
	}
	if !strings.Contains(out, "protein ?g") {
		t.Errorf("unknown protein should print as ?:\n%s", out)
	}
}

func TestWriteSearchResults_compact(t *testing.T) {
	response := &models.SearchResponse{
		Total: 2,
		Results: []*models.FoodRecord{
			{ExternalID: "g1", Name: "Apple", FoodType: models.FoodTypeGeneric,
				Source: models.SourceCache, CaloriesPer100g: f(52)},
			{ExternalID: "b1", Name: "Apple Pie Slice", Brand: "BakeCo",
				FoodType: models.FoodTypeBranded, Source: models.SourceBrandedDB},
		},
	}
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputCompact); err != nil {
		t.Fatalf("WriteSearchResults(compact): %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("compact output: got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "1\tApple\t") {
		t.Errorf("first line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "(BakeCo)") || !strings.Contains(lines[1], "? kcal") {
		t.Errorf("second line: %q", lines[1])
	}
}

func TestWriteSearchResults_unknownFormatTreatedAsText(t *testing.T) {
	response := &models.SearchResponse{Query: "x", QueryTime: 0}
	var buf bytes.Buffer
	err := WriteSearchResults(&buf, response, SearchOutputFormat("unknown"))
	if err != nil {
		t.Fatalf("WriteSearchResults(unknown): %v", err)
	}
	if !strings.Contains(buf.String(), "Found") {
		t.Errorf("unknown format should fall back to text; got %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"empty", "", 5, ""},
		{"short", "hi", 5, "hi"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 5, "hello..."},
		{"maxLen zero", "ab", 0, "ab"},
		{"maxLen negative", "ab", -1, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.s, tt.maxLen)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestPrintSearchResults(t *testing.T) {
	response := &models.SearchResponse{
		Query:     "print test",
		QueryTime: 1,
	}
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = oldStdout
		_ = w.Close()
	}()
	PrintSearchResults(response)
	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	out := buf.String()
	if !strings.Contains(out, "Found 0 results") {
		t.Errorf("PrintSearchResults should write to stdout; got %q", out)
	}
}
