package models

import (
	"math"
	"time"
)

// RankedJob is the enriched, UI-facing view of one retrieval pipeline result.
// Field names match the consumer contract of the search API.
type RankedJob struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Location        string   `json:"location"`
	Description     string   `json:"description"`
	Salary          string   `json:"salary"`
	SalaryMin       float64  `json:"salaryMin"`
	SalaryMax       float64  `json:"salaryMax"`
	JobType         string   `json:"jobType"`
	Remote          bool     `json:"remote"`
	URL             string   `json:"url"`
	PostedAt        string   `json:"postedAt"`
	Skills          []string `json:"skills"`
	Category        string   `json:"category"`
	SimilarityScore float64  `json:"similarityScore"`
	InferredType    bool     `json:"inferredType"`
	IsRecent        bool     `json:"isRecent"`
}

// SearchResponse is the retrieval pipeline's paginated answer.
type SearchResponse struct {
	Jobs      []RankedJob `json:"jobs"`
	Total     int         `json:"total"`
	QueryTime int64       `json:"query_time_ms"`
	Query     string      `json:"query"`
}

// Rank converts an enriched search result into the output view. Non-finite
// salary values collapse to zero and missing company/location fields get
// display defaults. now decides the 6-hour recency flag.
func (r *SearchResult) Rank(now time.Time) RankedJob {
	company := r.Company
	if company == "" {
		company = "Unknown Company"
	}
	location := r.Location
	if location == "" {
		location = "Unknown Location"
	}
	posted := r.Created
	if posted == "" && !r.PostedAt.IsZero() {
		posted = r.PostedAt.Format("2006-01-02")
	}
	category := r.Category
	skills := r.Skills
	if skills == nil {
		skills = []string{}
	}
	return RankedJob{
		ID:              r.ID,
		Title:           r.Title,
		Company:         company,
		Location:        location,
		Description:     r.Description,
		Salary:          r.Salary,
		SalaryMin:       finiteOrZero(r.SalaryMin),
		SalaryMax:       finiteOrZero(r.SalaryMax),
		JobType:         r.ContractType,
		Remote:          r.RemoteFriendly,
		URL:             r.RedirectURL,
		PostedAt:        posted,
		Skills:          skills,
		Category:        category,
		SimilarityScore: r.Score,
		InferredType:    r.InferredType,
		IsRecent:        !r.PostedAt.IsZero() && r.PostedAt.After(now.Add(-6*time.Hour)),
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
