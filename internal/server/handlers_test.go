package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/atlasjobs/jobdex/internal/config"
	"github.com/atlasjobs/jobdex/internal/embedding"
	"github.com/atlasjobs/jobdex/internal/models"
	"github.com/atlasjobs/jobdex/internal/pipeline"
	"github.com/atlasjobs/jobdex/internal/store"
)

func newTestServer(t *testing.T, jobs []models.JobRecord) *Server {
	t.Helper()
	logger := zap.NewNop()
	st, err := store.New(embedding.NewMockEmbedder(32), t.TempDir(), logger)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	if len(jobs) > 0 {
		st.AddBatch(context.Background(), jobs)
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	p := pipeline.New(st, cfg.Search.RegionMarkers, nil, logger)
	return NewServer(st, p, cfg, logger)
}

func seedJobs() []models.JobRecord {
	return []models.JobRecord{
		{ID: "j1", Title: "Backend Developer", Company: "Acme", Location: "Rabat",
			Description: "Go services", ContractType: "CDI", SalaryMin: 45000},
		{ID: "j2", Title: "Data Scientist", Company: "Beta", Location: "Casablanca",
			Description: "ML pipelines", ContractType: "CDD", RemoteFriendly: true},
	}
}

func doRequest(t *testing.T, s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleSearch(t *testing.T) {
	s := newTestServer(t, seedJobs())
	rec := doRequest(t, s, http.MethodGet, "/api/v1/jobs/search?query=backend&limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp models.SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("Total=%d, want 2", resp.Total)
	}
	if resp.Query != "backend" {
		t.Errorf("Query=%q", resp.Query)
	}
}

func TestHandleSearch_Filters(t *testing.T) {
	s := newTestServer(t, seedJobs())
	rec := doRequest(t, s, http.MethodGet, "/api/v1/jobs/search?query=developer&location=rabat", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp models.SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || resp.Jobs[0].ID != "j1" {
		t.Errorf("location filter: got %d jobs", resp.Total)
	}
}

func TestHandleSearch_DefaultLimit(t *testing.T) {
	s := newTestServer(t, seedJobs())
	rec := doRequest(t, s, http.MethodGet, "/api/v1/jobs/search?query=x", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestHandleSearch_NegativeLimit(t *testing.T) {
	s := newTestServer(t, seedJobs())
	rec := doRequest(t, s, http.MethodGet, "/api/v1/jobs/search?query=x&limit=-3", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}

func TestHandleAddJobs(t *testing.T) {
	s := newTestServer(t, nil)
	body, _ := json.Marshal(seedJobs())
	rec := doRequest(t, s, http.MethodPost, "/api/v1/jobs", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["added"] != 2 {
		t.Errorf("added=%d, want 2", resp["added"])
	}
	if s.store.Len() != 2 {
		t.Errorf("store Len=%d", s.store.Len())
	}
}

func TestHandleAddJobs_BadBody(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodPost, "/api/v1/jobs", []byte("not json"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}

func TestHandleGetJob(t *testing.T) {
	s := newTestServer(t, seedJobs())

	rec := doRequest(t, s, http.MethodGet, "/api/v1/jobs/j1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var job models.JobRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if job.Title != "Backend Developer" {
		t.Errorf("Title=%q", job.Title)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/jobs/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing job status %d, want 404", rec.Code)
	}
}

func TestHandleStats(t *testing.T) {
	s := newTestServer(t, seedJobs())
	rec := doRequest(t, s, http.MethodGet, "/api/v1/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp struct {
		Stats struct {
			TotalJobs  int `json:"total_jobs"`
			RemoteJobs int `json:"remote_jobs"`
		} `json:"stats"`
		SnapshotName string `json:"snapshot_name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Stats.TotalJobs != 2 || resp.Stats.RemoteJobs != 1 {
		t.Errorf("stats=%+v", resp.Stats)
	}
	if resp.SnapshotName == "" {
		t.Error("snapshot_name missing")
	}
}

func TestSnapshotEndpoints(t *testing.T) {
	s := newTestServer(t, seedJobs())

	rec := doRequest(t, s, http.MethodPost, "/api/v1/snapshots/test", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodPut, "/api/v1/snapshots/test/load", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("load status %d: %s", rec.Code, rec.Body.String())
	}
	if s.store.Len() != 2 {
		t.Errorf("store Len=%d after reload", s.store.Len())
	}

	rec = doRequest(t, s, http.MethodPut, "/api/v1/snapshots/never/load", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("missing snapshot load status %d, want 500", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status=%q", resp["status"])
	}
}
