package observability

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/metar-card-service/internal/config"
	"github.com/lmittmann/tint"
)

// NewLogger builds the service logger. LOG_FORMAT=text gives colored
// human-readable output for local runs; anything else is JSON.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := ParseLevel(cfg.LogLevel)

	if cfg.LogFormat == "text" {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With("service", "metar-card")
}

// ParseLevel maps a LOG_LEVEL string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
