package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9000
storage:
  data_dir: ./data
  snapshot_dir: /var/lib/jobdex/snapshots
  snapshot_name: nightly
embedding:
  service_url: http://embedder:8090
  dimensions: 768
search:
  default_limit: 10
  region_markers: [morocco, rabat]
watch:
  enabled: true
  debounce_ms: 250
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("Debug not parsed")
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9000 {
		t.Errorf("Server=%+v", cfg.Server)
	}
	if want := filepath.Join(dir, "data"); cfg.Storage.DataDir != want {
		t.Errorf("DataDir=%q, want %q (relative to config dir)", cfg.Storage.DataDir, want)
	}
	if cfg.Storage.SnapshotDir != "/var/lib/jobdex/snapshots" {
		t.Errorf("absolute SnapshotDir rewritten to %q", cfg.Storage.SnapshotDir)
	}
	if cfg.Storage.SnapshotName != "nightly" {
		t.Errorf("SnapshotName=%q", cfg.Storage.SnapshotName)
	}
	if cfg.Embedding.Dimensions != 768 {
		t.Errorf("Dimensions=%d", cfg.Embedding.Dimensions)
	}
	if cfg.Search.DefaultLimit != 10 {
		t.Errorf("DefaultLimit=%d", cfg.Search.DefaultLimit)
	}
	if len(cfg.Search.RegionMarkers) != 2 {
		t.Errorf("RegionMarkers=%v", cfg.Search.RegionMarkers)
	}
	if cfg.Watch.DebounceMS != 250 || !cfg.Watch.Enabled {
		t.Errorf("Watch=%+v", cfg.Watch)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("default Port=%d", cfg.Server.Port)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("default Dimensions=%d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.CacheSize != 10000 {
		t.Errorf("default CacheSize=%d", cfg.Embedding.CacheSize)
	}
	if cfg.Search.DefaultLimit != 20 || cfg.Search.MaxLimit != 100 {
		t.Errorf("default limits=%d/%d", cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	}
	if cfg.Storage.SnapshotName != "job_vector_store" {
		t.Errorf("default SnapshotName=%q", cfg.Storage.SnapshotName)
	}
	if len(cfg.Search.RegionMarkers) == 0 {
		t.Error("default RegionMarkers empty")
	}
	if cfg.Watch.DebounceMS != 400 {
		t.Errorf("default DebounceMS=%d", cfg.Watch.DebounceMS)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should error")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed yaml should error")
	}
}
