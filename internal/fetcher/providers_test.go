package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/metar-card-service/internal/config"
	"github.com/couchcryptid/metar-card-service/internal/domain"
	"github.com/couchcryptid/metar-card-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstream struct {
	srv   *httptest.Server
	calls atomic.Int32
}

func newUpstream(t *testing.T, status int, body string) *upstream {
	t.Helper()
	u := &upstream{}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		u.calls.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func testConfig(primary, secondary *upstream, apiKey string) *config.Config {
	return &config.Config{
		CheckWXAPIKey:   apiKey,
		CheckWXBaseURL:  primary.srv.URL,
		NOAABaseURL:     secondary.srv.URL,
		NOAAUserAgent:   "metar-card-test",
		ProviderTimeout: 2 * time.Second,
	}
}

func TestNewProviders_PrimaryUnconfiguredGoesStraightToSecondary(t *testing.T) {
	primary := newUpstream(t, http.StatusOK, "METAR KJFK primary")
	secondary := newUpstream(t, http.StatusOK, testReport)
	cfg := testConfig(primary, secondary, "")

	f := New(cfg, discardLogger(), observability.NewMetricsForTesting(), clockwork.NewFakeClock())
	got, err := f.FetchReport(context.Background(), "KJFK")
	require.NoError(t, err)

	assert.Equal(t, testReport, got.Raw)
	assert.Equal(t, "noaa", got.Provider)
	assert.Zero(t, primary.calls.Load(), "primary must not be attempted without a key")
	assert.Equal(t, int32(1), secondary.calls.Load())
}

func TestNewProviders_PrimaryFailureFallsBack(t *testing.T) {
	primary := newUpstream(t, http.StatusInternalServerError, "oops")
	secondary := newUpstream(t, http.StatusOK, testReport)
	cfg := testConfig(primary, secondary, "key")

	f := New(cfg, discardLogger(), observability.NewMetricsForTesting(), clockwork.NewFakeClock())
	got, err := f.FetchReport(context.Background(), "KJFK")
	require.NoError(t, err)

	assert.Equal(t, "noaa", got.Provider)
	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Equal(t, int32(1), secondary.calls.Load())
}

func TestNewProviders_BothFail(t *testing.T) {
	primary := newUpstream(t, http.StatusServiceUnavailable, "")
	secondary := newUpstream(t, http.StatusBadGateway, "")
	cfg := testConfig(primary, secondary, "key")

	f := New(cfg, discardLogger(), observability.NewMetricsForTesting(), clockwork.NewFakeClock())
	_, err := f.FetchReport(context.Background(), "KJFK")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestNewProviders_EmptyPrimaryThenSecondaryFailureIsUpstream(t *testing.T) {
	primary := newUpstream(t, http.StatusOK, "")
	secondary := newUpstream(t, http.StatusInternalServerError, "")
	cfg := testConfig(primary, secondary, "key")

	f := New(cfg, discardLogger(), observability.NewMetricsForTesting(), clockwork.NewFakeClock())
	_, err := f.FetchReport(context.Background(), "KJFK")
	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Equal(t, int32(1), secondary.calls.Load())
}

func TestNewProviders_PrimaryNoDataThenSecondaryFailureIsNotFound(t *testing.T) {
	primary := newUpstream(t, http.StatusOK, `{"results":0,"data":[]}`)
	secondary := newUpstream(t, http.StatusInternalServerError, "")
	cfg := testConfig(primary, secondary, "key")

	f := New(cfg, discardLogger(), observability.NewMetricsForTesting(), clockwork.NewFakeClock())
	_, err := f.FetchReport(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewProviders_Fixture(t *testing.T) {
	providers := NewProviders(&config.Config{FixtureProvider: true, CheckWXAPIKey: "key"}, discardLogger())
	require.Len(t, providers, 1)
	assert.Equal(t, "fixture", providers[0].Name())
}

func TestNew_CacheDisabledReturnsChain(t *testing.T) {
	cfg := &config.Config{FixtureProvider: true}
	f := New(cfg, discardLogger(), observability.NewMetricsForTesting(), nil)
	_, isChain := f.(*Chain)
	assert.True(t, isChain)

	cfg.ReportCacheTTL = time.Minute
	cfg.ReportCacheSize = 10
	f = New(cfg, discardLogger(), observability.NewMetricsForTesting(), nil)
	_, isCached := f.(*CachedFetcher)
	assert.True(t, isCached)
}
