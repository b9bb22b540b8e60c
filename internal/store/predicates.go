package store

import (
	"strings"

	"github.com/atlasjobs/jobdex/internal/models"
)

// Remote matches records flagged remote-friendly or whose location mentions remote work.
func Remote(job *models.JobRecord) bool {
	return job.RemoteFriendly || strings.Contains(strings.ToLower(job.Location), "remote")
}

// RegionRelevant matches records a candidate in the target region can plausibly
// apply to: remote, explicitly international, or mentioning one of the region's
// markers (country and city names) in the text.
func RegionRelevant(markers []string) Predicate {
	return func(job *models.JobRecord) bool {
		text := strings.ToLower(job.Title + " " + job.Location + " " + job.Description)
		if job.RemoteFriendly || strings.Contains(text, "remote") {
			return true
		}
		if job.International {
			return true
		}
		for _, marker := range markers {
			if strings.Contains(text, strings.ToLower(marker)) {
				return true
			}
		}
		return false
	}
}

// And combines predicates conjunctively.
func And(preds ...Predicate) Predicate {
	return func(job *models.JobRecord) bool {
		for _, p := range preds {
			if !p(job) {
				return false
			}
		}
		return true
	}
}
