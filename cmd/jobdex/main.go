// Package main is the jobdex CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/atlasjobs/jobdex/internal/cli"
	"github.com/atlasjobs/jobdex/internal/config"
	"github.com/atlasjobs/jobdex/internal/embedding"
	"github.com/atlasjobs/jobdex/internal/ingest"
	"github.com/atlasjobs/jobdex/internal/models"
	"github.com/atlasjobs/jobdex/internal/pipeline"
	"github.com/atlasjobs/jobdex/internal/sample"
	"github.com/atlasjobs/jobdex/internal/server"
	"github.com/atlasjobs/jobdex/internal/store"
	"github.com/atlasjobs/jobdex/internal/watcher"
	"github.com/atlasjobs/jobdex/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/jobdex/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "ingest":
		runIngest()
	case "stats":
		runStats()
	case "version", "--version", "-v":
		fmt.Printf("jobdex version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`jobdex - vector-indexed job search

Usage:
  jobdex server  [-config path] [-debug]        run the API server
  jobdex search  [flags] <query>                search via a running server
  jobdex ingest  [-config path] [-dir path]     ingest data files and write a snapshot
  jobdex stats   [-server url]                  show store statistics
  jobdex version                                print version
`)
}

// buildStore wires the embedder (with cache) and store from config.
func buildStore(cfg *config.Config, logger *zap.Logger) (*store.Store, error) {
	svc, err := embedding.NewServiceClient(
		cfg.Embedding.ServiceURL,
		cfg.Embedding.Dimensions,
		time.Duration(cfg.Embedding.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}
	embedder := embedding.NewCachedEmbedder(svc, cfg.Embedding.CacheSize)
	return store.New(embedder, cfg.Storage.SnapshotDir, logger)
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	st, err := buildStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}

	// Prefer the snapshot; fall back to ingesting the data directory.
	snapName := cfg.Storage.SnapshotName
	if err := st.Load(snapName); err != nil {
		logger.Warn("snapshot load failed, ingesting data directory", zap.Error(err))
		if _, ingestErr := ingest.AddFromDir(context.Background(), st, cfg.Storage.DataDir, logger); ingestErr != nil {
			logger.Warn("data directory ingestion failed", zap.Error(ingestErr))
		}
		if st.Len() > 0 {
			if saveErr := st.Save(snapName); saveErr != nil {
				logger.Warn("snapshot save failed", zap.Error(saveErr))
			}
		}
	}
	if st.Len() == 0 {
		logger.Warn("store is empty, seeding with sample jobs")
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		st.AddBatch(context.Background(), sample.Generate(rng, 50))
	}

	sampleSrc := func(n int) []models.JobRecord {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		return sample.Generate(rng, n)
	}
	pipe := pipeline.New(st, cfg.Search.RegionMarkers, sampleSrc, logger)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Watch.Enabled {
		w := watcher.New(cfg.Storage.DataDir, func(path string) {
			if _, err := ingest.AddFromFile(context.Background(), st, path, logger); err != nil {
				logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
				return
			}
			if err := st.Save(snapName); err != nil {
				logger.Warn("snapshot refresh failed", zap.Error(err))
			}
		}, logger, watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond))
		if err := w.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	srv := server.NewServer(st, pipe, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if st.Len() > 0 {
		if err := st.Save(snapName); err != nil {
			logger.Warn("final snapshot save failed", zap.Error(err))
		}
	}
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8081", "server URL")
	limit := fs.Int("limit", 20, "number of results")
	location := fs.String("location", "", "location substring filter")
	jobType := fs.String("job-type", "", "contract type filter (CDI, CDD, Stage, Freelance, Part-time)")
	minSalary := fs.Float64("min-salary", 0, "minimum salary")
	remote := fs.Bool("remote", false, "remote jobs only")
	regionOnly := fs.Bool("region-only", false, "region-relevant jobs only")
	field := fs.String("field", "", "engineering field filter")
	sortByDate := fs.Bool("sort-by-date", true, "sort newest first")
	recentHours := fs.Int("recent-hours", 0, "only jobs from the last N hours")
	dedupe := fs.Bool("dedupe", true, "remove duplicate postings")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(*limit))
	if *location != "" {
		params.Set("location", *location)
	}
	if *jobType != "" {
		params.Set("jobType", *jobType)
	}
	if *minSalary > 0 {
		params.Set("minSalary", strconv.FormatFloat(*minSalary, 'f', -1, 64))
	}
	if *remote {
		params.Set("remote", "true")
	}
	if *regionOnly {
		params.Set("regionOnly", "true")
	}
	if *field != "" {
		params.Set("engineeringField", *field)
	}
	if !*sortByDate {
		params.Set("sortByDate", "false")
	}
	if *recentHours > 0 {
		params.Set("recentHours", strconv.Itoa(*recentHours))
	}
	if !*dedupe {
		params.Set("removeDuplicates", "false")
	}

	resp, err := http.Get(*serverURL + "/api/v1/jobs/search?" + params.Encode())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Search failed: status %d: %s\n", resp.StatusCode, body)
		os.Exit(1)
	}

	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode response: %v\n", err)
		os.Exit(1)
	}

	format := cli.OutputText
	if *outputFormat == "json" {
		format = cli.OutputJSON
	}
	if err := cli.WriteSearchResults(os.Stdout, &response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// runIngest is the offline ingestion path: read the data files, embed, snapshot.
func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	dir := fs.String("dir", "", "directory of CSV/XLSX files (default: config data_dir)")
	rebuild := fs.Bool("rebuild", false, "clear the store before ingesting")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	st, err := buildStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}
	if !*rebuild {
		if err := st.Load(cfg.Storage.SnapshotName); err != nil {
			logger.Info("no existing snapshot, starting fresh", zap.Error(err))
		}
	}

	dataDir := cfg.Storage.DataDir
	if *dir != "" {
		dataDir = *dir
	}
	added, err := ingest.AddFromDir(context.Background(), st, dataDir, logger)
	if err != nil {
		logger.Fatal("Ingestion failed", zap.Error(err))
	}
	if err := st.Save(cfg.Storage.SnapshotName); err != nil {
		logger.Fatal("Snapshot save failed", zap.Error(err))
	}
	fmt.Printf("Ingested %d jobs (%d total), snapshot %q written\n", added, st.Len(), cfg.Storage.SnapshotName)
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8081", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/stats")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Stats request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	fmt.Println(string(body))
}
