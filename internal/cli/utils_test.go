package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/atlasjobs/jobdex/internal/models"
)

func TestWriteSearchResults_JSON(t *testing.T) {
	response := &models.SearchResponse{
		Query:     "backend engineer",
		QueryTime: 42,
		Total:     1,
		Jobs: []models.RankedJob{
			{
				ID:              "job-1",
				Title:           "Backend Engineer",
				Company:         "Acme",
				Location:        "Casablanca",
				JobType:         "CDI",
				SimilarityScore: 0.9,
				Skills:          []string{"go"},
			},
		},
	}
	var buf bytes.Buffer
	err := WriteSearchResults(&buf, response, OutputJSON)
	if err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	out := buf.String()
	if out == "" {
		t.Fatal("expected non-empty JSON output")
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(strings.NewReader(out)).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if decoded.Query != response.Query || decoded.QueryTime != response.QueryTime {
		t.Errorf("decoded query=%q query_time=%d, want query=%q query_time=%d",
			decoded.Query, decoded.QueryTime, response.Query, response.QueryTime)
	}
	if len(decoded.Jobs) != 1 || decoded.Jobs[0].ID != "job-1" {
		t.Errorf("decoded jobs: want one job with id job-1, got %+v", decoded.Jobs)
	}
}

func TestWriteSearchResults_JSON_empty(t *testing.T) {
	response := &models.SearchResponse{
		Query:     "q",
		QueryTime: 0,
		Total:     0,
		Jobs:      nil,
	}
	var buf bytes.Buffer
	err := WriteSearchResults(&buf, response, OutputJSON)
	if err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("empty response JSON decode: %v", err)
	}
	if decoded.Total != 0 || len(decoded.Jobs) != 0 {
		t.Errorf("expected empty response, got total=%d jobs=%d", decoded.Total, len(decoded.Jobs))
	}
}

func TestWriteSearchResults_text(t *testing.T) {
	response := &models.SearchResponse{
		Query:     "foo",
		QueryTime: 10,
		Total:     1,
		Jobs: []models.RankedJob{
			{
				ID:              "id1",
				Title:           "Data Analyst",
				Company:         "Globex",
				Location:        "Rabat",
				Description:     "Short description",
				JobType:         "CDD",
				InferredType:    true,
				Remote:          true,
				SalaryMin:       8000,
				SalaryMax:       12000,
				PostedAt:        "2025-05-20",
				SimilarityScore: 0.5,
			},
		},
	}
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputText); err != nil {
		t.Fatalf("WriteSearchResults(text): %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Found 1 results in 10ms",
		"Data Analyst at Globex",
		"Score: 0.5000",
		"Rabat | CDD (inferred)",
		"remote",
		"8000–12000",
		"posted 2025-05-20",
		"Short description",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSearchResults_text_truncatesDescription(t *testing.T) {
	long := strings.Repeat("a", 300)
	response := &models.SearchResponse{
		Query: "q",
		Total: 1,
		Jobs: []models.RankedJob{
			{Title: "T", Company: "C", Description: long},
		},
	}
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputText); err != nil {
		t.Fatalf("WriteSearchResults(text): %v", err)
	}
	out := buf.String()
	if strings.Contains(out, long) {
		t.Error("expected long description to be truncated")
	}
	if !strings.Contains(out, strings.Repeat("a", 200)+"...") {
		t.Error("expected truncated description with ellipsis")
	}
}
