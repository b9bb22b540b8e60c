// Package server provides the HTTP API for jobdex.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atlasjobs/jobdex/internal/config"
	"github.com/atlasjobs/jobdex/internal/pipeline"
	"github.com/atlasjobs/jobdex/internal/store"
)

// Server is the HTTP server for the jobdex API.
type Server struct {
	store    *store.Store
	pipeline *pipeline.Pipeline
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(st *store.Store, p *pipeline.Pipeline, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		store:    st,
		pipeline: p,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/api/v1/jobs/search", s.handleSearch)
	r.Post("/api/v1/jobs", s.handleAddJobs)
	r.Get("/api/v1/jobs/{id}", s.handleGetJob)
	r.Get("/api/v1/stats", s.handleStats)
	r.Post("/api/v1/snapshots/{name}", s.handleSaveSnapshot)
	r.Put("/api/v1/snapshots/{name}/load", s.handleLoadSnapshot)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
