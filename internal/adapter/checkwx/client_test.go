package checkwx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/metar-card-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "test-key"
	testReport = "METAR KJFK 061751Z 18010KT 10SM FEW040 24/17 A3027 RMK AO2"
)

func testClient(baseURL string) *Client {
	return &Client{
		apiKey:     testKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_FetchReport_PlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metar/KJFK", r.URL.Path)
		assert.Equal(t, "raw", r.URL.Query().Get("format"))
		assert.Equal(t, testKey, r.Header.Get("X-API-Key"))
		_, _ = w.Write([]byte(testReport + "\n"))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).FetchReport(context.Background(), "KJFK")
	require.NoError(t, err)
	assert.Equal(t, testReport, got)
}

func TestClient_FetchReport_JSONEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":1,"data":["` + testReport + `"]}`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).FetchReport(context.Background(), "KJFK")
	require.NoError(t, err)
	assert.Equal(t, testReport, got)
}

func TestClient_FetchReport_EmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":0,"data":[]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchReport(context.Background(), "ZZZZ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestClient_FetchReport_EmptyBodyIsNotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("  \n"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchReport(context.Background(), "KJFK")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestClient_FetchReport_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchReport(context.Background(), "KJFK")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestClient_FetchReport_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.FetchReport(context.Background(), "KJFK")
	require.Error(t, err)
}

func TestExtractReport(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "   \n", ""},
		{"plain single line", "  " + testReport + "  ", testReport},
		{"plain without prefix", "KJFK 061751Z 18010KT\nKJFK 061651Z 19009KT", "KJFK 061751Z 18010KT"},
		{"metar line preferred", "header\nMETAR KBOS 061754Z 24011KT\n", "METAR KBOS 061754Z 24011KT"},
		{"speci line", "\nSPECI KDEN 061800Z 08007KT\n", "SPECI KDEN 061800Z 08007KT"},
		{"json string element", `{"results":1,"data":["KSEA 061753Z 01006KT"]}`, "KSEA 061753Z 01006KT"},
		{"json object element", `{"results":1,"data":[{"raw_text":"KLAX 061753Z 18003KT"}]}`, "KLAX 061753Z 18003KT"},
		{"json empty data", `{"results":0,"data":[]}`, ""},
		{"json empty string", `{"results":1,"data":[""]}`, ""},
		{"broken json with metar line", "{oops\nMETAR KJFK 061751Z 18010KT", "METAR KJFK 061751Z 18010KT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractReport(tt.body))
		})
	}
}
