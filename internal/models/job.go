// Package models defines core data structures for job records, search requests, and results.
package models

import (
	"fmt"
	"strings"
	"time"
)

// JobRecord is a single job posting. All fields except Title are optional;
// absent numeric fields are zero, never an error. Records are immutable once
// added to the store; the retrieval pipeline enriches copies only.
type JobRecord struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Company        string   `json:"company,omitempty"`
	Location       string   `json:"location,omitempty"`
	Description    string   `json:"description,omitempty"`
	Salary         string   `json:"salary,omitempty"`
	SalaryMin      float64  `json:"salary_min,omitempty"`
	SalaryMax      float64  `json:"salary_max,omitempty"`
	ContractType   string   `json:"contract_type,omitempty"`
	Category       string   `json:"category,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	RemoteFriendly bool     `json:"remote_friendly,omitempty"`
	International  bool     `json:"international,omitempty"`
	SourceCountry  string   `json:"source_country,omitempty"`
	Created        string   `json:"created,omitempty"`
	RedirectURL    string   `json:"redirect_url,omitempty"`
}

// CanonicalText returns the text view of the record that embeddings are derived from.
func (j *JobRecord) CanonicalText() string {
	return fmt.Sprintf("Title: %s Company: %s Location: %s Description: %s",
		j.Title, j.Company, j.Location, j.Description)
}

// Clone returns a copy of the record with its own Skills slice.
func (j *JobRecord) Clone() JobRecord {
	out := *j
	if j.Skills != nil {
		out.Skills = make([]string, len(j.Skills))
		copy(out.Skills, j.Skills)
	}
	return out
}

// SearchText returns the lowercased text searched by the keyword fallback scorer.
func (j *JobRecord) SearchText() string {
	return strings.ToLower(j.Title + " " + j.Company + " " + j.Description)
}

// SearchResult is a JobRecord copy annotated with a similarity score in [0,1]
// (1.0 is a perfect match) plus pipeline enrichment state.
type SearchResult struct {
	JobRecord
	Score float64 `json:"similarity_score"`

	// Pipeline enrichment; zero values until the retrieval pipeline runs.
	PostedAt     time.Time `json:"-"`
	InferredType bool      `json:"inferred_type,omitempty"`
}

// NewSearchResult copies job into an annotated result.
func NewSearchResult(job *JobRecord, score float64) SearchResult {
	return SearchResult{JobRecord: job.Clone(), Score: score}
}
