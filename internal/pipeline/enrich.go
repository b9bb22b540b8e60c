package pipeline

import (
	"strings"
	"time"

	"github.com/atlasjobs/jobdex/internal/models"
)

// contractMarkers maps contract types to the locale-specific phrases that
// reveal them in a posting's text. Order matters: the first matching type wins.
var contractMarkers = []struct {
	contractType string
	markers      []string
}{
	{"CDI", []string{"cdi", "permanent", "indeterminé"}},
	{"CDD", []string{"cdd", "contract", "déterminé"}},
	{"Stage", []string{"stage", "internship", "stagiaire"}},
	{"Freelance", []string{"freelance", "independent", "indépendant"}},
	{"Part-time", []string{"temps partiel", "part time", "part-time"}},
}

// defaultContractType is assumed for postings that reveal nothing.
const defaultContractType = "CDI"

// inferContractTypes fills in missing contract types by scanning each
// candidate's description and title for locale markers. Only the pipeline's
// working copies are touched.
func (p *Pipeline) inferContractTypes(results []models.SearchResult) {
	for i := range results {
		if results[i].ContractType != "" {
			continue
		}
		text := strings.ToLower(results[i].Description + " " + results[i].Title)
		results[i].ContractType = inferContractType(text)
	}
}

func inferContractType(text string) string {
	for _, entry := range contractMarkers {
		for _, marker := range entry.markers {
			if strings.Contains(text, marker) {
				return entry.contractType
			}
		}
	}
	return defaultContractType
}

// dateFormats are tried in order when parsing an ingested creation date.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// assignDates gives every candidate a posting time. Candidates carrying a
// parseable creation date keep it. Candidates without one get a synthetic
// date staggered by relevance rank: the i-th dateless candidate is dated
// min(i, 59) + rand(0,3) days back, so more relevant matches read as fresher,
// with jitter so timestamps never collide exactly. Unparseable dates become a
// uniformly random date within the last 30 days.
func (p *Pipeline) assignDates(results []models.SearchResult) {
	now := p.now()
	missing := 0
	for i := range results {
		if results[i].Created == "" {
			rank := missing
			if rank > maxSyntheticAgeDays {
				rank = maxSyntheticAgeDays
			}
			daysAgo := rank + p.intn(4)
			date := now.AddDate(0, 0, -daysAgo)
			results[i].PostedAt = date
			results[i].Created = date.Format("2006-01-02")
			missing++
			continue
		}
		if t, ok := parseDate(results[i].Created); ok {
			results[i].PostedAt = t
		} else {
			results[i].PostedAt = now.AddDate(0, 0, -p.intn(31))
		}
	}
}

// assignWideningDates dates the recency-widening fetch. Records there are
// only consulted to top up a starved window, so undated ones get a random
// date within the last 10 days instead of the relevance stagger.
func (p *Pipeline) assignWideningDates(results []models.SearchResult) {
	now := p.now()
	for i := range results {
		if !results[i].PostedAt.IsZero() {
			continue
		}
		if t, ok := parseDate(results[i].Created); ok {
			results[i].PostedAt = t
			continue
		}
		results[i].PostedAt = now.AddDate(0, 0, -p.intn(11))
	}
}

func parseDate(s string) (time.Time, bool) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (p *Pipeline) intn(n int) int {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()
	return p.rng.Intn(n)
}
