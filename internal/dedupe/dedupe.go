// Package dedupe removes near-duplicate job postings from candidate lists.
package dedupe

import (
	"strings"

	"github.com/atlasjobs/jobdex/internal/models"
)

const (
	// DefaultTitleThreshold and DefaultCompanyThreshold are deliberately high:
	// aggregators list the same role under slightly different titles, and a
	// lower bar collapses distinct postings.
	DefaultTitleThreshold   = 0.95
	DefaultCompanyThreshold = 0.95

	// readmitFraction is the share of the input that must have been removed
	// before previously excluded records are re-admitted to reach the minimum.
	readmitFraction = 0.7
)

// Engine detects and removes duplicate postings.
type Engine struct {
	TitleThreshold   float64
	CompanyThreshold float64
}

// NewEngine returns an Engine with the default thresholds.
func NewEngine() *Engine {
	return &Engine{
		TitleThreshold:   DefaultTitleThreshold,
		CompanyThreshold: DefaultCompanyThreshold,
	}
}

// Duplicate reports whether two postings describe the same job. Postings match
// when their redirect URLs are identical, when title and company both clear
// the similarity thresholds, or when the titles are identical and the location
// is the same. Records missing a title or company are never considered
// duplicates of anything.
func (e *Engine) Duplicate(a, b *models.JobRecord) bool {
	title1 := strings.ToLower(a.Title)
	title2 := strings.ToLower(b.Title)
	company1 := strings.ToLower(a.Company)
	company2 := strings.ToLower(b.Company)
	if title1 == "" || title2 == "" || company1 == "" || company2 == "" {
		return false
	}

	url1 := strings.ToLower(a.RedirectURL)
	url2 := strings.ToLower(b.RedirectURL)
	if url1 != "" && url1 == url2 {
		return true
	}

	titleRatio := Ratio(title1, title2)
	companyRatio := Ratio(company1, company2)

	location1 := strings.ToLower(a.Location)
	location2 := strings.ToLower(b.Location)
	sameLocation := location1 == location2 && location1 != ""

	return (titleRatio >= e.TitleThreshold && companyRatio >= e.CompanyThreshold) ||
		(titleRatio == 1.0 && sameLocation)
}

// Dedupe removes duplicates from results while guaranteeing at least
// minResults survivors when the input allows it. Candidates are compared
// against records already accepted, so the first occurrence wins and output
// order follows input order. When the pass removed more than readmitFraction
// of the input and left the output short of minResults, excluded records are
// re-admitted in their original order until the minimum is met or the input
// is exhausted. Inputs of at most minResults records are returned unchanged.
func (e *Engine) Dedupe(results []models.SearchResult, minResults int) []models.SearchResult {
	if len(results) == 0 {
		return nil
	}
	if len(results) <= minResults {
		return results
	}

	unique := make([]models.SearchResult, 0, len(results))
	kept := make([]bool, len(results))
	for i := range results {
		isDup := false
		for j := range unique {
			if e.Duplicate(&results[i].JobRecord, &unique[j].JobRecord) {
				isDup = true
				break
			}
		}
		if !isDup {
			unique = append(unique, results[i])
			kept[i] = true
		}
	}

	removed := len(results) - len(unique)
	if len(unique) < minResults && float64(removed) > float64(len(results))*readmitFraction {
		for i := range results {
			if kept[i] {
				continue
			}
			unique = append(unique, results[i])
			if len(unique) >= minResults {
				break
			}
		}
	}
	return unique
}

// Ratio returns the normalized edit similarity of two strings in [0,1],
// 1.0 for identical strings. Callers lowercase beforehand.
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(LevenshteinDistance(a, b))/float64(maxLen)
}

// LevenshteinDistance calculates the minimum number of single-character edits
// (insertions, deletions, or substitutions) required to change one string into another.
func LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len([]rune(b))
	}
	if len(b) == 0 {
		return len([]rune(a))
	}

	// Runes for proper Unicode handling
	runesA := []rune(a)
	runesB := []rune(b)
	lenA := len(runesA)
	lenB := len(runesB)

	// Two rows are enough
	prev := make([]int, lenB+1)
	curr := make([]int, lenB+1)
	for j := 0; j <= lenB; j++ {
		prev[j] = j
	}

	for i := 1; i <= lenA; i++ {
		curr[0] = i
		for j := 1; j <= lenB; j++ {
			cost := 0
			if runesA[i-1] != runesB[j-1] {
				cost = 1
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[lenB]
}

func min3(a, b, c int) int {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}
