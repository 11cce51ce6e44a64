package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"tailscale.com/client/local"

	"github.com/meltforce/liftsignal/internal/analytics"
	"github.com/meltforce/liftsignal/internal/ingest/alpha"
	"github.com/meltforce/liftsignal/internal/periodization"
	"github.com/meltforce/liftsignal/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	alpha  *alpha.Provider
	cycles *periodization.Service
	cfg    analytics.Config
	log    *slog.Logger
	apiKey string
	ts     *local.Client
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, alphaProvider *alpha.Provider, cycles *periodization.Service, cfg analytics.Config, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		alpha:  alphaProvider,
		cycles: cycles,
		cfg:    cfg,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale switches identity resolution from the dev fallback to
// Tailscale WhoIs lookups. Must be called before serving.
func (s *Server) SetTailscale(lc *local.Client) {
	s.ts = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Ingest endpoints (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Use(s.identity)
		r.Post("/sets", s.handleSetsIngest)
	})

	// Dashboard API endpoints (identity via tsnet, dev user otherwise)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)

		r.Get("/me", s.handleMe)
		r.Get("/sets", s.handleQuerySets)

		r.Route("/exercises/{name}", func(r chi.Router) {
			r.Get("/metrics", s.handleExerciseMetrics)
			r.Get("/baseline", s.handleExerciseBaseline)
			r.Get("/alerts", s.handleExerciseAlerts)
		})

		r.Get("/fatigue", s.handleFatigue)
		r.Get("/muscles/last-trained", s.handleMuscleStatus)
		r.Get("/intensity", s.handleIntensity)
		r.Get("/volume", s.handleVolume)
		r.Get("/stats", s.handleStats)
		r.Get("/import-logs", s.handleImportLogs)
		r.Get("/catalog", s.handleCatalog)
		r.Post("/catalog", s.handleUpsertCatalog)

		r.Post("/programs", s.handleCreateProgram)
		r.Get("/programs", s.handleListPrograms)
		r.Post("/periodization/init", s.handlePeriodizationInit)
		r.Post("/periodization/sessions", s.handlePeriodizationSession)
		r.Get("/periodization/status", s.handlePeriodizationStatus)
	})
}
