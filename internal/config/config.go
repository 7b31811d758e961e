package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/metar-card-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream providers. The primary is skipped when CheckWXAPIKey is empty.
	CheckWXAPIKey   string
	CheckWXBaseURL  string
	NOAABaseURL     string
	NOAAUserAgent   string
	ProviderTimeout time.Duration
	FixtureProvider bool

	ReportCacheTTL  time.Duration
	ReportCacheSize int

	DefaultICAO  domain.StationCode
	AutoFavorite bool

	StoreDriver string
	SQLitePath  string

	// Lookup event sinks. Each is disabled when its broker is unset.
	KafkaBrokers    []string
	KafkaTopic      string
	MQTTBroker      string
	MQTTTopicPrefix string
	MQTTClientID    string

	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	providerTimeout, err := parsePositiveDuration("PROVIDER_TIMEOUT", "8s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("REPORT_CACHE_TTL", "2m"))
	if err != nil || cacheTTL < 0 {
		return nil, errors.New("invalid REPORT_CACHE_TTL")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	defaultICAO, err := domain.ParseStationCode(sharedcfg.EnvOrDefault("DEFAULT_ICAO", "KJFK"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_ICAO: %w", err)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CheckWXAPIKey:   os.Getenv("CHECKWX_API_KEY"),
		CheckWXBaseURL:  sharedcfg.EnvOrDefault("CHECKWX_BASE_URL", "https://api.checkwx.com"),
		NOAABaseURL:     sharedcfg.EnvOrDefault("NOAA_BASE_URL", "https://aviationweather.gov/api/data"),
		NOAAUserAgent:   sharedcfg.EnvOrDefault("NOAA_USER_AGENT", "metar-card"),
		ProviderTimeout: providerTimeout,
		FixtureProvider: os.Getenv("FIXTURE_PROVIDER") == "true",

		ReportCacheTTL:  cacheTTL,
		ReportCacheSize: parseCacheSize(),

		DefaultICAO:  defaultICAO,
		AutoFavorite: sharedcfg.EnvOrDefault("AUTO_FAVORITE", "true") == "true",

		StoreDriver: sharedcfg.EnvOrDefault("STORE_DRIVER", StoreMemory),
		SQLitePath:  sharedcfg.EnvOrDefault("SQLITE_PATH", "data/metar.db"),

		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "metar-lookups"),
		MQTTBroker:      os.Getenv("MQTT_BROKER"),
		MQTTTopicPrefix: sharedcfg.EnvOrDefault("MQTT_TOPIC_PREFIX", "metar"),
		MQTTClientID:    sharedcfg.EnvOrDefault("MQTT_CLIENT_ID", "metar-card-service"),

		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	switch cfg.StoreDriver {
	case StoreMemory, StoreSQLite:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q (allowed: memory, sqlite)", cfg.StoreDriver)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q (allowed: json, text)", cfg.LogFormat)
	}
	if cfg.StoreDriver == StoreSQLite && cfg.SQLitePath == "" {
		return nil, errors.New("STORE_DRIVER is sqlite but SQLITE_PATH is empty")
	}
	if cfg.KafkaBrokers != nil && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// PrimaryEnabled reports whether the keyed primary provider is configured.
func (c *Config) PrimaryEnabled() bool {
	return c.CheckWXAPIKey != ""
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseCacheSize() int {
	if s := os.Getenv("REPORT_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 500
}
