// Package server exposes the query-facing HTTP API consumed by UI and CLI
// collaborators.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/scholium/arxsearch/internal/config"
	"github.com/scholium/arxsearch/internal/metrics"
	"github.com/scholium/arxsearch/internal/retrieval"
	"github.com/scholium/arxsearch/internal/storage"
	"github.com/scholium/arxsearch/internal/vecstore"
)

// Server wires the retrieval engine and metadata store into an HTTP API.
type Server struct {
	engine *retrieval.Engine
	db     *storage.DB
	handle *vecstore.Handle
	logger *zap.Logger
	cfg    config.HTTPConfig
	http   *http.Server
}

// New creates a server and registers its routes and collectors.
func New(engine *retrieval.Engine, db *storage.DB, handle *vecstore.Handle, logger *zap.Logger, cfg config.HTTPConfig) *Server {
	s := &Server{
		engine: engine,
		db:     db,
		handle: handle,
		logger: logger,
		cfg:    cfg,
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	metrics.RegisterHTTP(registry)

	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/api/search", s.handleSearch)
	r.Get("/api/articles/{id}", s.handleArticle)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
	}

	return s
}

// ListenAndServe blocks serving requests until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.ShutdownSec)*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
