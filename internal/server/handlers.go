package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atlasjobs/jobdex/internal/models"
	"github.com/atlasjobs/jobdex/internal/storage"
)

// handleSearch runs the retrieval pipeline. Query parameters:
//
//	query             free-text query
//	location          location substring filter
//	jobType           contract-type substring filter
//	minSalary         minimum salary threshold
//	remote            remote-only flag
//	regionOnly        region-relevant-only flag
//	engineeringField  category/title substring filter
//	limit             page size
//	sortByDate        newest first (default true)
//	recentHours       maximum age in hours
//	removeDuplicates  duplicate suppression (default true)
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := models.SearchRequest{
		Query:            q.Get("query"),
		Location:         q.Get("location"),
		ContractType:     q.Get("jobType"),
		MinSalary:        parseFloatParam(q.Get("minSalary")),
		RemoteOnly:       q.Get("remote") == "true",
		RegionOnly:       q.Get("regionOnly") == "true",
		EngineeringField: q.Get("engineeringField"),
		Limit:            parseIntParam(q.Get("limit")),
		SortByDate:       q.Get("sortByDate") != "false",
		RecentHours:      parseIntParam(q.Get("recentHours")),
		Dedupe:           q.Get("removeDuplicates") != "false",
	}
	if err := req.Validate(s.config.Search.DefaultLimit, s.config.Search.MaxLimit); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("search request",
		zap.String("query", req.Query),
		zap.String("location", req.Location),
		zap.String("job_type", req.ContractType),
		zap.Int("limit", req.Limit),
	)
	response := s.pipeline.Run(r.Context(), &req)
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleAddJobs(w http.ResponseWriter, r *http.Request) {
	var jobs []models.JobRecord
	if err := json.NewDecoder(r.Body).Decode(&jobs); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	added := s.store.AddBatch(r.Context(), jobs)
	s.respondJSON(w, http.StatusCreated, map[string]int{"added": added})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, ok := s.store.Get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "job not found")
		return
	}
	s.respondJSON(w, http.StatusOK, job)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.store.Stats()
	indexPath, recordsPath := s.store.SnapshotPaths(s.config.Storage.SnapshotName)
	resp := map[string]interface{}{
		"stats":               stats,
		"snapshot_name":       s.config.Storage.SnapshotName,
		"snapshot_disk_bytes": storage.SnapshotUsageBytes(indexPath, recordsPath),
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.store.Save(name); err != nil {
		s.logger.Error("snapshot save failed", zap.String("name", name), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"name": name, "status": "saved"})
}

func (s *Server) handleLoadSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.store.Load(name); err != nil {
		s.logger.Error("snapshot load failed", zap.String("name", name), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"name": name, "status": "loaded"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func parseIntParam(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func parseFloatParam(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
