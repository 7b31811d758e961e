package fetcher

import (
	"log/slog"

	"github.com/couchcryptid/metar-card-service/internal/adapter/checkwx"
	"github.com/couchcryptid/metar-card-service/internal/adapter/fixture"
	"github.com/couchcryptid/metar-card-service/internal/adapter/noaa"
	"github.com/couchcryptid/metar-card-service/internal/config"
	"github.com/couchcryptid/metar-card-service/internal/domain"
	"github.com/couchcryptid/metar-card-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// NewProviders assembles the provider order from configuration: the keyed
// CheckWX primary when a key is set, then the free NOAA fallback. The
// fixture provider replaces both when enabled.
func NewProviders(cfg *config.Config, logger *slog.Logger) []domain.Provider {
	if cfg.FixtureProvider {
		return []domain.Provider{fixture.New(nil)}
	}

	var providers []domain.Provider
	if cfg.PrimaryEnabled() {
		providers = append(providers, checkwx.NewClient(cfg.CheckWXAPIKey, cfg.CheckWXBaseURL, cfg.ProviderTimeout, logger))
	}
	providers = append(providers, noaa.NewClient(cfg.NOAABaseURL, cfg.NOAAUserAgent, cfg.ProviderTimeout, logger))
	return providers
}

// New builds the configured fetcher: the provider chain, wrapped in the
// report cache unless REPORT_CACHE_TTL is zero.
func New(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) ReportFetcher {
	chain := NewChain(NewProviders(cfg, logger), cfg.ProviderTimeout, logger, metrics)
	logger.Info("provider chain configured", "providers", chain.Providers())
	if cfg.ReportCacheTTL <= 0 {
		return chain
	}
	return NewCachedFetcher(chain, cfg.ReportCacheSize, cfg.ReportCacheTTL, clock, metrics)
}
