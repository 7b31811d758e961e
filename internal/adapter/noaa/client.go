// Package noaa fetches raw METARs from the free aviationweather.gov data
// API. It needs no credential, only an identifying User-Agent.
package noaa

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/metar-card-service/internal/domain"
)

const maxBody = 64 << 10

// Client implements domain.Provider using the Aviation Weather Center API.
type Client struct {
	userAgent  string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an Aviation Weather client.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func (c *Client) Name() string { return "noaa" }

// FetchReport returns the latest raw METAR for code. A 204 or an empty body
// means the station has no current report.
func (c *Client) FetchReport(ctx context.Context, code domain.StationCode) (string, error) {
	params := url.Values{
		"ids":    {code.String()},
		"format": {"raw"},
	}
	u := c.baseURL + "/metar?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("noaa request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return "", domain.ErrNotFound
	default:
		return "", fmt.Errorf("noaa API error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	for _, line := range strings.Split(string(body), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	c.logger.Debug("noaa returned empty body", "icao", code)
	return "", domain.ErrNotFound
}
