// Package mqtt publishes the latest report per station as a retained MQTT
// message, so subscribers see the current report on connect.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/metar-card-service/internal/domain"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	qos            = 1
	publishTimeout = 5 * time.Second
)

// Publisher implements pipeline.BatchLoader over an MQTT connection.
type Publisher struct {
	client mqtt.Client
	prefix string
	logger *slog.Logger
}

// NewPublisher configures a client for broker (e.g. "tcp://mqtt:1883").
// Call Connect before loading batches.
func NewPublisher(broker, clientID, prefix string, logger *slog.Logger) *Publisher {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	return newPublisher(mqtt.NewClient(opts), prefix, logger)
}

func newPublisher(client mqtt.Client, prefix string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		prefix: strings.TrimSuffix(prefix, "/"),
		logger: logger,
	}
}

// Connect waits for the initial connection, respecting ctx.
func (p *Publisher) Connect(ctx context.Context) error {
	if p.client.IsConnected() {
		return nil
	}
	if err := wait(ctx, p.client.Connect(), 0); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

// LoadBatch publishes each event's raw report to its station topic. It
// stops at the first failure.
func (p *Publisher) LoadBatch(ctx context.Context, events []domain.LookupEvent) error {
	if len(events) == 0 {
		return nil
	}
	if !p.client.IsConnected() {
		return errors.New("mqtt client not connected")
	}
	for _, e := range events {
		topic := Topic(p.prefix, e.Station)
		token := p.client.Publish(topic, qos, true, []byte(e.Report))
		if err := wait(ctx, token, publishTimeout); err != nil {
			return fmt.Errorf("mqtt publish %s: %w", topic, err)
		}
		p.logger.Debug("published report", "topic", topic)
	}
	return nil
}

// Close disconnects, allowing in-flight work a short grace period.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

// Topic returns the retained-report topic for a station.
func Topic(prefix string, code domain.StationCode) string {
	if prefix == "" {
		return code.String()
	}
	return prefix + "/" + code.String()
}

// wait blocks until token completes, ctx ends, or timeout (when positive)
// elapses.
func wait(ctx context.Context, token mqtt.Token, timeout time.Duration) error {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-expired:
		return errors.New("timeout")
	}
}
