// Package lookup ties input resolution, the report fetcher and the decoder
// into one request/response cycle, and owns the persisted last-used code
// and favorites list.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/metar-card-service/internal/domain"
	"github.com/couchcryptid/metar-card-service/internal/fetcher"
	"github.com/couchcryptid/metar-card-service/internal/observability"
)

// User-facing messages. Raw error detail is never shown.
const (
	MsgInvalidCode = "ICAO must be 4 letters (A–Z)."
	MsgNotFound    = "Station not found."
	MsgNetwork     = "Network error. Try again."
)

// State is the outcome of a lookup.
type State string

const (
	StateOK    State = "ok"
	StateError State = "error"
)

// EventPublisher receives successful lookups. Publish must not block.
type EventPublisher interface {
	Publish(event domain.LookupEvent) bool
}

// Request carries the candidates for the station code, highest priority
// first: an explicit code, the current input value, then the code on display.
type Request struct {
	Code      string
	Input     string
	Displayed string
}

// Result is either an ok lookup with report and decoded fields, or an error
// with a short message.
type Result struct {
	State     State                 `json:"state"`
	Code      domain.StationCode    `json:"icao,omitempty"`
	Report    string                `json:"report,omitempty"`
	Provider  string                `json:"provider,omitempty"`
	Decoded   *domain.DecodedFields `json:"decoded,omitempty"`
	Grid      *domain.Grid          `json:"grid,omitempty"`
	FetchedAt time.Time             `json:"fetched_at,omitzero"`
	Message   string                `json:"message,omitempty"`

	// Err is the underlying error for callers that map outcomes themselves.
	Err error `json:"-"`
}

// Options configures a Service.
type Options struct {
	DefaultCode  domain.StationCode
	AutoFavorite bool
	Publisher    EventPublisher // optional
}

// Service is the lookup orchestrator.
type Service struct {
	fetcher fetcher.ReportFetcher
	store   Store
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics

	// favMu serializes read-modify-write cycles on the favorites list.
	favMu sync.Mutex
}

// NewService creates a lookup Service.
func NewService(f fetcher.ReportFetcher, store Store, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		fetcher: f,
		store:   store,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// Resolve picks the effective code: the first non-blank candidate in
// req, else the configured default. It does not validate.
func (s *Service) Resolve(req Request) string {
	for _, c := range []string{req.Code, req.Input, req.Displayed} {
		if c = strings.TrimSpace(c); c != "" {
			return strings.ToUpper(c)
		}
	}
	return s.opts.DefaultCode.String()
}

// Lookup resolves, validates, fetches and decodes one station. Invalid
// codes are rejected before any provider is contacted. It never retries.
func (s *Service) Lookup(ctx context.Context, req Request) Result {
	candidate := s.Resolve(req)
	code, err := domain.ParseStationCode(candidate)
	if err != nil {
		s.metrics.Lookups.WithLabelValues("invalid").Inc()
		return Result{State: StateError, Message: MsgInvalidCode, Err: err}
	}

	report, err := s.fetcher.FetchReport(ctx, code)
	if err != nil {
		return s.failure(code, err)
	}

	decoded := domain.Decode(report.Raw)
	grid := decoded.Grid()
	result := Result{
		State:     StateOK,
		Code:      code,
		Report:    report.Raw,
		Provider:  report.Provider,
		Decoded:   &decoded,
		Grid:      &grid,
		FetchedAt: domain.Now(),
	}
	s.metrics.Lookups.WithLabelValues("ok").Inc()

	s.remember(ctx, code)
	if s.opts.Publisher != nil {
		s.opts.Publisher.Publish(domain.LookupEvent{
			Station:   code,
			Report:    report.Raw,
			Decoded:   decoded,
			Provider:  report.Provider,
			FetchedAt: result.FetchedAt,
		})
	}
	return result
}

func (s *Service) failure(code domain.StationCode, err error) Result {
	r := Result{State: StateError, Code: code, Err: err}
	switch {
	case errors.Is(err, domain.ErrInvalidCode):
		s.metrics.Lookups.WithLabelValues("invalid").Inc()
		r.Message = MsgInvalidCode
	case errors.Is(err, domain.ErrNotFound):
		s.metrics.Lookups.WithLabelValues("not_found").Inc()
		r.Message = MsgNotFound
	default:
		s.metrics.Lookups.WithLabelValues("unavailable").Inc()
		r.Message = MsgNetwork
	}
	s.logger.Info("lookup failed", "icao", code, "error", err)
	return r
}

// remember records the last-used code and, when enabled, the favorite.
// Store failures are logged; the lookup itself already succeeded.
func (s *Service) remember(ctx context.Context, code domain.StationCode) {
	if err := s.store.Set(ctx, KeyLastICAO, code.String()); err != nil {
		s.logger.Warn("save last code failed", "icao", code, "error", err)
	}
	if !s.opts.AutoFavorite {
		return
	}
	if _, err := s.AddFavorite(ctx, code.String()); err != nil {
		s.logger.Warn("auto-favorite failed", "icao", code, "error", err)
	}
}

// LastCode returns the last successfully looked-up code, if any.
func (s *Service) LastCode(ctx context.Context) (domain.StationCode, bool, error) {
	v, ok, err := s.store.Get(ctx, KeyLastICAO)
	if err != nil {
		return "", false, fmt.Errorf("read last code: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	code, err := domain.ParseStationCode(v)
	if err != nil {
		return "", false, nil
	}
	return code, true, nil
}

// readinessChecker is implemented by stores with their own health probe.
type readinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// CheckReadiness reports whether the backing store answers. Stores with a
// health probe are asked directly; others are probed with a read.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if rc, ok := s.store.(readinessChecker); ok {
		if err := rc.CheckReadiness(ctx); err != nil {
			return fmt.Errorf("store unavailable: %w", err)
		}
		return nil
	}
	if _, _, err := s.store.Get(ctx, KeyLastICAO); err != nil {
		return fmt.Errorf("store unavailable: %w", err)
	}
	return nil
}
