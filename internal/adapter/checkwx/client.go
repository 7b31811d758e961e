// Package checkwx fetches raw METARs from the keyed CheckWX API, the
// primary provider in the lookup chain.
package checkwx

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/metar-card-service/internal/domain"
)

// maxBody bounds how much of a response is read.
const maxBody = 64 << 10

// Client implements domain.Provider using the CheckWX METAR endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a CheckWX client authenticated with apiKey.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func (c *Client) Name() string { return "checkwx" }

// FetchReport requests the raw METAR for code and normalizes the body to a
// single report line.
func (c *Client) FetchReport(ctx context.Context, code domain.StationCode) (string, error) {
	u := fmt.Sprintf("%s/metar/%s?%s", c.baseURL, url.PathEscape(code.String()), url.Values{"format": {"raw"}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "text/plain, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("checkwx request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("checkwx API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if strings.TrimSpace(string(body)) == "" {
		return "", errEmptyBody
	}
	report := ExtractReport(string(body))
	if report == "" {
		c.logger.Debug("checkwx returned no report", "icao", code)
		return "", domain.ErrNotFound
	}
	return report, nil
}

// errEmptyBody marks a 200 response with nothing in it. It is an unusable
// answer, unlike an envelope that holds no data.
var errEmptyBody = errors.New("checkwx: empty response body")

// ExtractReport normalizes a CheckWX response body to one report line.
// A JSON envelope yields its first data element. Failing that, the first
// line starting with METAR or SPECI is used, and a plain-text body falls
// back to its first non-empty line.
func ExtractReport(body string) string {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return ""
	}

	isJSON := strings.HasPrefix(trimmed, "{")
	if isJSON {
		if r := firstDataElement(trimmed); r != "" {
			return r
		}
	}
	if r := scanReportLine(trimmed); r != "" {
		return r
	}
	if isJSON {
		return ""
	}
	return firstLine(trimmed)
}

// envelope is the CheckWX JSON response. Elements of data are raw report
// strings, or objects carrying raw_text on the decoded endpoints.
type envelope struct {
	Results int               `json:"results"`
	Data    []json.RawMessage `json:"data"`
}

type decodedElement struct {
	RawText string `json:"raw_text"`
}

func firstDataElement(body string) string {
	var env envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil || len(env.Data) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(env.Data[0], &s); err == nil {
		return strings.TrimSpace(s)
	}
	var el decodedElement
	if err := json.Unmarshal(env.Data[0], &el); err == nil {
		return strings.TrimSpace(el.RawText)
	}
	return ""
}

func scanReportLine(body string) string {
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "METAR") || strings.HasPrefix(line, "SPECI") {
			return line
		}
	}
	return ""
}

func firstLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
