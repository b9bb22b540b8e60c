package models

import "fmt"

// SearchRequest carries the retrieval pipeline parameters for one request.
type SearchRequest struct {
	Query            string  `json:"query"`
	Location         string  `json:"location,omitempty"`
	ContractType     string  `json:"contract_type,omitempty"`
	MinSalary        float64 `json:"min_salary,omitempty"`
	RemoteOnly       bool    `json:"remote_only,omitempty"`
	RegionOnly       bool    `json:"region_only,omitempty"`
	EngineeringField string  `json:"engineering_field,omitempty"`
	Limit            int     `json:"limit,omitempty"`
	SortByDate       bool    `json:"sort_by_date,omitempty"`
	RecentHours      int     `json:"recent_hours,omitempty"`
	Dedupe           bool    `json:"dedupe,omitempty"`
}

// Validate normalizes the request in place. The query may be empty (the
// fallback scorer treats a termless query as match-all), but the limit must
// land in [1, maxLimit].
func (r *SearchRequest) Validate(defaultLimit, maxLimit int) error {
	if r.Limit < 0 {
		return fmt.Errorf("limit cannot be negative: %d", r.Limit)
	}
	if r.Limit == 0 {
		r.Limit = defaultLimit
	}
	if r.Limit > maxLimit {
		r.Limit = maxLimit
	}
	if r.RecentHours < 0 {
		r.RecentHours = 0
	}
	return nil
}
