// Package store implements the vector-indexed job store and similarity search engine.
package store

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atlasjobs/jobdex/internal/embedding"
	"github.com/atlasjobs/jobdex/internal/models"
	"github.com/atlasjobs/jobdex/internal/storage"
	"github.com/atlasjobs/jobdex/internal/vector"
)

// fallbackScore is the fixed score for records returned by the last-resort
// random sample, low enough to rank below any real match.
const fallbackScore = 0.1

// Predicate filters candidate records during search.
type Predicate func(*models.JobRecord) bool

// Store holds job records one-to-one with their embeddings in a flat vector
// index, aligned through a position map. The triple is a single guarded
// resource: reads share a lock, AddBatch and Load are exclusive.
type Store struct {
	embedder    embedding.Embedder
	index       *vector.FlatIndex
	jobs        []models.JobRecord
	posMap      []int
	snapshotDir string
	logger      *zap.Logger

	mu    sync.RWMutex
	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates an empty store using embedder for all vector derivation.
func New(embedder embedding.Embedder, snapshotDir string, logger *zap.Logger) (*Store, error) {
	idx, err := vector.NewFlatIndex(embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("create vector index: %w", err)
	}
	return &Store{
		embedder:    embedder,
		index:       idx,
		snapshotDir: snapshotDir,
		logger:      logger,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// AddBatch embeds and appends records, returning how many were added.
// A record whose embedding fails is skipped without advancing any position,
// so the index, record list, and position map stay aligned. Embedding happens
// before the exclusive lock is taken; readers are only blocked for the append.
func (s *Store) AddBatch(ctx context.Context, records []models.JobRecord) int {
	var vectors [][]float32
	var valid []models.JobRecord
	for i := range records {
		vec, err := s.embedder.Embed(ctx, records[i].CanonicalText())
		if err != nil {
			s.logger.Warn("skipping record: embedding failed",
				zap.String("title", records[i].Title), zap.Error(err))
			continue
		}
		vectors = append(vectors, vec)
		valid = append(valid, records[i].Clone())
	}
	if len(valid) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.index.Add(vectors); err != nil {
		s.logger.Error("vector index append failed", zap.Error(err))
		return 0
	}
	base := len(s.jobs)
	s.jobs = append(s.jobs, valid...)
	for i := range valid {
		s.posMap = append(s.posMap, base+i)
	}
	s.logger.Info("records added", zap.Int("added", len(valid)), zap.Int("total", len(s.jobs)))
	return len(valid)
}

// Search returns up to k records similar to query, best first, each scored in
// [0,1]. With a predicate, non-matching candidates are skipped while the scan
// continues through the whole pool. An empty store returns an empty list. An
// embedding failure, or a scan with no survivors, falls through to the
// deterministic keyword scorer.
func (s *Store) Search(ctx context.Context, query string, k int, predicate Predicate) []models.SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.jobs) == 0 || k <= 0 {
		return nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("query embedding failed, using keyword fallback",
			zap.String("query", query), zap.Error(err))
		return s.fallbackSearchLocked(query, k, predicate)
	}

	hits, err := s.index.Search(queryVec, s.index.Size())
	if err != nil {
		s.logger.Warn("vector scan failed, using keyword fallback", zap.Error(err))
		return s.fallbackSearchLocked(query, k, predicate)
	}

	results := make([]models.SearchResult, 0, k)
	for _, hit := range hits {
		if hit.Ordinal >= len(s.posMap) {
			continue
		}
		pos := s.posMap[hit.Ordinal]
		if pos < 0 || pos >= len(s.jobs) {
			continue
		}
		job := &s.jobs[pos]
		if predicate != nil && !predicate(job) {
			continue
		}
		results = append(results, models.NewSearchResult(job, vector.Similarity(hit.Distance)))
		if len(results) >= k {
			break
		}
	}
	if len(results) > 0 {
		return results
	}
	s.logger.Debug("vector search empty, using keyword fallback", zap.String("query", query))
	return s.fallbackSearchLocked(query, k, predicate)
}

// fallbackSearchLocked scores records by query-term overlap. Records with no
// matching term are dropped unless the query has no terms at all. If nothing
// survives, k random records with a fixed low score are returned: "no results"
// is reserved for an empty store. Callers hold at least a read lock.
func (s *Store) fallbackSearchLocked(query string, k int, predicate Predicate) []models.SearchResult {
	terms := strings.Fields(strings.ToLower(query))

	var scored []models.SearchResult
	for i := range s.jobs {
		job := &s.jobs[i]
		if predicate != nil && !predicate(job) {
			continue
		}
		text := job.SearchText()
		matches := 0
		for _, term := range terms {
			if strings.Contains(text, term) {
				matches++
			}
		}
		if matches > 0 || len(terms) == 0 {
			denom := len(terms)
			if denom < 1 {
				denom = 1
			}
			scored = append(scored, models.NewSearchResult(job, float64(matches)/float64(denom)))
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if len(scored) == 0 {
		s.logger.Debug("keyword fallback empty, sampling store", zap.String("query", query))
		for _, pos := range s.samplePositions(k) {
			scored = append(scored, models.NewSearchResult(&s.jobs[pos], fallbackScore))
		}
	}
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// samplePositions picks up to k distinct record positions at random.
func (s *Store) samplePositions(k int) []int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	perm := s.rng.Perm(len(s.jobs))
	if k > len(perm) {
		k = len(perm)
	}
	return perm[:k]
}

// SearchRemote searches among remote-friendly records.
func (s *Store) SearchRemote(ctx context.Context, query string, k int) []models.SearchResult {
	return s.Search(ctx, query, k, Remote)
}

// SearchRegionRelevant searches among records relevant to the target region.
func (s *Store) SearchRegionRelevant(ctx context.Context, query string, k int, markers []string) []models.SearchResult {
	return s.Search(ctx, query, k, RegionRelevant(markers))
}

// All returns up to n records in store order as unscored results. The
// retrieval pipeline uses it when similarity search yields nothing at all.
func (s *Store) All(n int) []models.SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n > len(s.jobs) {
		n = len(s.jobs)
	}
	out := make([]models.SearchResult, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.NewSearchResult(&s.jobs[i], 0))
	}
	return out
}

// Get returns the record with the given ID.
func (s *Store) Get(id string) (models.JobRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			return s.jobs[i].Clone(), true
		}
	}
	return models.JobRecord{}, false
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Reset drops all records, vectors, and the position map together. Full
// rebuilds replay ingestion from scratch; there is no partial rebuild.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index.Reset()
	s.jobs = nil
	s.posMap = nil
}

// Stats summarizes the stored records.
type Stats struct {
	TotalJobs         int            `json:"total_jobs"`
	Specialties       map[string]int `json:"specialties,omitempty"`
	Countries         map[string]int `json:"countries,omitempty"`
	RemoteJobs        int            `json:"remote_jobs"`
	InternationalJobs int            `json:"international_jobs"`
}

// Stats returns counts by category, source country, and remote/international flags.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := Stats{TotalJobs: len(s.jobs)}
	if len(s.jobs) == 0 {
		return stats
	}
	stats.Specialties = make(map[string]int)
	stats.Countries = make(map[string]int)
	for i := range s.jobs {
		job := &s.jobs[i]
		if job.Category != "" {
			stats.Specialties[job.Category]++
		}
		if job.SourceCountry != "" {
			stats.Countries[job.SourceCountry]++
		}
		if job.RemoteFriendly {
			stats.RemoteJobs++
		}
		if job.International {
			stats.InternationalJobs++
		}
	}
	return stats
}

// SnapshotPaths returns the two artifact paths for a named snapshot.
func (s *Store) SnapshotPaths(name string) (indexPath, recordsPath string) {
	return filepath.Join(s.snapshotDir, name+".index"),
		filepath.Join(s.snapshotDir, name+".db")
}

// Save writes the vector index and the (records, position map) pair as a
// named snapshot of two artifacts under the snapshot directory.
func (s *Store) Save(name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	indexPath, recordsPath := s.SnapshotPaths(name)
	if err := s.index.Save(indexPath); err != nil {
		return fmt.Errorf("save vector index: %w", err)
	}
	if err := storage.SaveRecords(recordsPath, s.jobs, s.posMap); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	s.logger.Info("snapshot saved", zap.String("name", name), zap.Int("records", len(s.jobs)))
	return nil
}

// Load replaces the in-memory state from a named snapshot. Both artifacts
// must load successfully or the store is left untouched; a half-loaded store
// would be operable but misaligned.
func (s *Store) Load(name string) error {
	indexPath, recordsPath := s.SnapshotPaths(name)

	newIndex, err := vector.NewFlatIndex(s.embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("create vector index: %w", err)
	}
	if err := newIndex.Load(indexPath); err != nil {
		return fmt.Errorf("load vector index: %w", err)
	}
	jobs, posMap, err := storage.LoadRecords(recordsPath)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	if newIndex.Size() != len(posMap) {
		return fmt.Errorf("snapshot mismatch: %d vectors, %d position map entries", newIndex.Size(), len(posMap))
	}

	s.mu.Lock()
	s.index = newIndex
	s.jobs = jobs
	s.posMap = posMap
	s.mu.Unlock()
	s.logger.Info("snapshot loaded", zap.String("name", name), zap.Int("records", len(jobs)))
	return nil
}
