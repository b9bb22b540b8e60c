// Package cli provides CLI output utilities for jobdex.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/atlasjobs/jobdex/internal/models"
	"github.com/atlasjobs/jobdex/pkg/utils"
)

// OutputFormat is the format for search result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results in %dms for %q\n\n", response.Total, response.QueryTime, response.Query)
	for i, job := range response.Jobs {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "%d. %s at %s — Score: %.4f\n", i+1, job.Title, job.Company, job.SimilarityScore)
		fmt.Fprintf(w, "   %s | %s", job.Location, job.JobType)
		if job.InferredType {
			fmt.Fprint(w, " (inferred)")
		}
		if job.Remote {
			fmt.Fprint(w, " | remote")
		}
		if job.SalaryMin > 0 || job.SalaryMax > 0 {
			fmt.Fprintf(w, " | %.0f–%.0f", job.SalaryMin, job.SalaryMax)
		}
		if job.PostedAt != "" {
			fmt.Fprintf(w, " | posted %s", job.PostedAt)
		}
		fmt.Fprintln(w)
		if job.Description != "" {
			fmt.Fprintf(w, "\n%s\n", utils.Truncate(job.Description, 200))
		}
		fmt.Fprintln(w)
	}
}
