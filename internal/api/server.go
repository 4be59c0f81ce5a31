package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KomaiX512/insightdeck/internal/config"
	"github.com/KomaiX512/insightdeck/internal/decoder"
	"github.com/KomaiX512/insightdeck/internal/pipeline"
)

// Server is the HTTP API server for insightdeck.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	dec          *decoder.Decoder
	stats        *decoder.DecodeStats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. dec is the shared
// default-options decoder; per-request option overrides build their own.
func NewServer(orch *pipeline.Orchestrator, dec *decoder.Decoder, stats *decoder.DecodeStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		dec:          dec,
		stats:        stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(MetricsMiddleware)

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/decode", s.handleDecode)
		r.Post("/api/decode/markdown", s.handleDecodeMarkdown)
		r.Post("/api/decode/html", s.handleDecodeHTML)
		r.Post("/api/decode/batch", s.handleBatchDecode)
		r.Get("/api/decode/{jobID}/status", s.handleBatchStatus)
		r.Get("/api/stats/decoder", s.handleDecoderStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
