// Package server exposes the extraction pipeline over HTTP: single and batch
// processing, batch history, and artifact downloads.
package server

import (
	"log/slog"
	"net/http"

	"github.com/rs/cors"

	"github.com/joseph-ayodele/invoice-insights/internal/batch"
	"github.com/joseph-ayodele/invoice-insights/internal/export"
	"github.com/joseph-ayodele/invoice-insights/internal/history"
	"github.com/joseph-ayodele/invoice-insights/internal/reconcile"
)

const defaultMaxUploadMB = 32

// Server wires the pipeline components behind a ServeMux. The history store
// is optional; without it batch endpoints still work but nothing is recorded.
type Server struct {
	processor   batch.DocumentProcessor
	coordinator *batch.Coordinator
	engine      *reconcile.Engine
	exporter    *export.Service
	store       *history.Store
	logger      *slog.Logger

	model          string
	topN           int
	maxUploadBytes int64
	mux            *http.ServeMux
}

// Options carries the optional knobs; zero values fall back to defaults.
type Options struct {
	Model       string
	TopN        int
	MaxUploadMB int64
	Store       *history.Store
	Logger      *slog.Logger
}

func New(processor batch.DocumentProcessor, coordinator *batch.Coordinator, engine *reconcile.Engine, exporter *export.Service, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxMB := opts.MaxUploadMB
	if maxMB <= 0 {
		maxMB = defaultMaxUploadMB
	}
	s := &Server{
		processor:      processor,
		coordinator:    coordinator,
		engine:         engine,
		exporter:       exporter,
		store:          opts.Store,
		logger:         logger,
		model:          opts.Model,
		topN:           opts.TopN,
		maxUploadBytes: maxMB << 20,
		mux:            http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /api/process", s.handleProcess)
	s.mux.HandleFunc("POST /api/process/batch", s.handleProcessBatch)
	s.mux.HandleFunc("GET /api/batches", s.handleListBatches)
	s.mux.HandleFunc("GET /api/batches/{id}", s.handleGetBatch)
	s.mux.HandleFunc("GET /api/outputs", s.handleListOutputs)
	s.mux.HandleFunc("GET /api/download/{filename}", s.handleDownload)
}

// Handler returns the routed handler wrapped with CORS.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(s.mux)
}
