//go:build smoke

package noaa

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/metar-card-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the live aviationweather.gov API.
// Run with: go test -tags=smoke ./internal/adapter/noaa/ -v -count=1

func smokeClient() *Client {
	return NewClient("https://aviationweather.gov/api/data", "metar-card", 10*time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_FetchKnownStation(t *testing.T) {
	report, err := smokeClient().FetchReport(context.Background(), "KJFK")
	require.NoError(t, err)

	assert.True(t, strings.Contains(report, "KJFK"), report)
	fields := domain.Decode(report)
	assert.NotNil(t, fields.Wind, "live report should carry a wind group: %s", report)
}

func TestSmoke_UnknownStation(t *testing.T) {
	_, err := smokeClient().FetchReport(context.Background(), "QQQQ")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
