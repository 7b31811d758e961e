package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/couchcryptid/metar-card-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/metar-card-service/internal/adapter/kafka"
	mqttadapter "github.com/couchcryptid/metar-card-service/internal/adapter/mqtt"
	"github.com/couchcryptid/metar-card-service/internal/adapter/sqlite"
	"github.com/couchcryptid/metar-card-service/internal/config"
	"github.com/couchcryptid/metar-card-service/internal/fetcher"
	"github.com/couchcryptid/metar-card-service/internal/lookup"
	"github.com/couchcryptid/metar-card-service/internal/observability"
	"github.com/couchcryptid/metar-card-service/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reports := fetcher.New(cfg, logger, metrics, clockwork.NewRealClock())

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	// Event sinks are optional; without any, lookups are not published.
	var loaders []pipeline.BatchLoader
	var kafkaWriter *kafkaadapter.Writer
	var mqttPublisher *mqttadapter.Publisher

	if cfg.KafkaBrokers != nil {
		kafkaWriter = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		loaders = append(loaders, kafkaWriter)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	if cfg.MQTTBroker != "" {
		mqttPublisher = mqttadapter.NewPublisher(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopicPrefix, logger)
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := mqttPublisher.Connect(connectCtx); err != nil {
			logger.Warn("mqtt not connected yet, retrying in background", "broker", cfg.MQTTBroker, "error", err)
		}
		cancel()
		loaders = append(loaders, mqttPublisher)
		logger.Info("mqtt sink enabled", "broker", cfg.MQTTBroker, "prefix", cfg.MQTTTopicPrefix)
	}
	metrics.EventSinksEnabled.Set(float64(len(loaders)))

	opts := lookup.Options{
		DefaultCode:  cfg.DefaultICAO,
		AutoFavorite: cfg.AutoFavorite,
	}

	var p *pipeline.Pipeline
	pipelineDone := make(chan struct{})
	if len(loaders) > 0 {
		p = pipeline.New(pipeline.FanOut(loaders...), logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval)
		opts.Publisher = p
		go func() {
			defer close(pipelineDone)
			if err := p.Run(ctx); err != nil {
				logger.Error("event pipeline error", "error", err)
			}
		}()
	} else {
		close(pipelineDone)
		logger.Info("no event sinks configured")
	}

	svc := lookup.NewService(reports, store, opts, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, reports, svc, svc, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	select {
	case <-pipelineDone:
	case <-shutdownCtx.Done():
		logger.Warn("event pipeline did not drain before shutdown timeout")
	}

	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if mqttPublisher != nil {
		mqttPublisher.Close()
	}
	if err := closeStore(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (lookup.Store, func() error, error) {
	if cfg.StoreDriver != config.StoreSQLite {
		logger.Info("using in-memory store")
		return lookup.NewMemoryStore(), func() error { return nil }, nil
	}
	s, err := sqlite.Open(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using sqlite store", "path", cfg.SQLitePath)
	return s, s.Close, nil
}
