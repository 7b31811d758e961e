// Package fetcher resolves a station code to a raw report by trying an
// ordered list of providers until one returns data.
package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/metar-card-service/internal/domain"
	"github.com/couchcryptid/metar-card-service/internal/observability"
)

// ReportFetcher returns the current raw report for a station.
type ReportFetcher interface {
	FetchReport(ctx context.Context, code domain.StationCode) (domain.Report, error)
}

// Chain tries each provider in order. Provider failures are logged and
// counted but never returned individually; only exhaustion is reported.
type Chain struct {
	providers []domain.Provider
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewChain creates a fallback chain. Each provider call is bounded by
// timeout when it is positive.
func NewChain(providers []domain.Provider, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Chain {
	return &Chain{
		providers: providers,
		timeout:   timeout,
		logger:    logger,
		metrics:   metrics,
	}
}

// Providers returns the provider names in attempt order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// FetchReport validates code and returns the first non-empty report. It
// fails with ErrInvalidCode before any network call, ErrNotFound when a
// provider reported no data and none had a report, and ErrUpstream otherwise.
func (c *Chain) FetchReport(ctx context.Context, code domain.StationCode) (domain.Report, error) {
	if !code.Valid() {
		return domain.Report{}, domain.ErrInvalidCode
	}

	notFound := false
	for _, p := range c.providers {
		if ctx.Err() != nil {
			break
		}

		raw, err := c.attempt(ctx, p, code)
		switch {
		case err == nil:
			return domain.Report{Station: code, Raw: raw, Provider: p.Name()}, nil
		case errors.Is(err, domain.ErrNotFound):
			notFound = true
			c.metrics.ProviderRequests.WithLabelValues(p.Name(), "not_found").Inc()
			c.logger.Info("provider has no report", "provider", p.Name(), "icao", code)
		default:
			c.metrics.ProviderRequests.WithLabelValues(p.Name(), "error").Inc()
			c.logger.Warn("provider failed, trying next", "provider", p.Name(), "icao", code, "error", err)
		}
	}

	c.metrics.ChainExhausted.Inc()
	if notFound {
		return domain.Report{}, domain.ErrNotFound
	}
	return domain.Report{}, domain.ErrUpstream
}

// errEmptyReport marks a provider that answered with a blank body.
var errEmptyReport = errors.New("empty report")

// attempt runs one provider under its own deadline. A blank report is an
// unusable response, not a "no data" answer.
func (c *Chain) attempt(ctx context.Context, p domain.Provider, code domain.StationCode) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := p.FetchReport(ctx, code)
	c.metrics.ProviderDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errEmptyReport
	}
	c.metrics.ProviderRequests.WithLabelValues(p.Name(), "success").Inc()
	return raw, nil
}
