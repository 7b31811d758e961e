package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/metar-card-service/internal/domain"
	"github.com/couchcryptid/metar-card-service/internal/fetcher"
	"github.com/couchcryptid/metar-card-service/internal/lookup"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LookupService is the orchestrator surface the JSON API needs.
type LookupService interface {
	Lookup(ctx context.Context, req lookup.Request) lookup.Result
	Favorites(ctx context.Context) ([]domain.StationCode, error)
	AddFavorite(ctx context.Context, code string) ([]domain.StationCode, error)
	RemoveFavorite(ctx context.Context, code string) ([]domain.StationCode, error)
	LastCode(ctx context.Context) (domain.StationCode, bool, error)
}

// Server exposes the report proxy, the lookup API, and the health,
// readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	reports    fetcher.ReportFetcher
	lookups    LookupService
	logger     *slog.Logger
}

// NewServer wires all routes behind logging, CORS, and panic recovery.
func NewServer(addr string, reports fetcher.ReportFetcher, lookups LookupService, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		reports: reports,
		lookups: lookups,
		logger:  logger,
	}

	mux.HandleFunc("GET /metar", s.handleMetar)
	mux.HandleFunc("GET /api/lookup", s.handleLookup)
	mux.HandleFunc("GET /api/favorites", s.handleFavorites)
	mux.HandleFunc("PUT /api/favorites/{icao}", s.handleAddFavorite)
	mux.HandleFunc("DELETE /api/favorites/{icao}", s.handleRemoveFavorite)
	mux.HandleFunc("GET /api/last", s.handleLast)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer.Handler = requestLogger(logger, cors(recoverer(logger, mux)))
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
