// Package pipeline ships lookup events to external sinks in batches,
// off the request path.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/metar-card-service/internal/domain"
	"github.com/couchcryptid/metar-card-service/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
	finalFlushWait = 5 * time.Second
)

// BatchLoader writes multiple lookup events to a sink.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.LookupEvent) error
}

// Pipeline buffers published events and loads them in batches.
type Pipeline struct {
	queue         chan domain.LookupEvent
	loader        BatchLoader
	logger        *slog.Logger
	metrics       *observability.Metrics
	batchSize     int
	flushInterval time.Duration
}

// New creates a Pipeline. The queue holds four batches; Publish drops
// events beyond that.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration) *Pipeline {
	if batchSize < 1 {
		batchSize = 1
	}
	if flushInterval <= 0 {
		flushInterval = 500 * time.Millisecond
	}
	return &Pipeline{
		queue:         make(chan domain.LookupEvent, 4*batchSize),
		loader:        l,
		logger:        logger,
		metrics:       metrics,
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Publish enqueues event without blocking. It returns false when the
// queue is full and the event was dropped.
func (p *Pipeline) Publish(event domain.LookupEvent) bool {
	select {
	case p.queue <- event:
		return true
	default:
		p.metrics.EventsDropped.Inc()
		p.logger.Warn("event queue full, dropping lookup event", "icao", event.Station)
		return false
	}
}

// Run drains the queue until the context is cancelled, then makes one
// last attempt to load whatever is still buffered.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("event pipeline started", "batch_size", p.batchSize, "flush_interval", p.flushInterval)

	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	backoff := initialBackoff
	batch := make([]domain.LookupEvent, 0, p.batchSize)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("event pipeline stopping", "reason", ctx.Err())
			p.flushRemaining(ctx, batch)
			return nil

		case e := <-p.queue:
			batch = append(batch, e)
			if len(batch) < p.batchSize {
				continue
			}
			if !p.load(ctx, batch, &backoff) {
				p.flushRemaining(ctx, batch)
				return nil
			}
			batch = make([]domain.LookupEvent, 0, p.batchSize)

		case <-ticker.C:
			if len(batch) == 0 {
				continue
			}
			if !p.load(ctx, batch, &backoff) {
				p.flushRemaining(ctx, batch)
				return nil
			}
			batch = make([]domain.LookupEvent, 0, p.batchSize)
		}
	}
}

// load retries the batch with backoff until it succeeds. Returns false if
// the pipeline should stop.
func (p *Pipeline) load(ctx context.Context, batch []domain.LookupEvent, backoff *time.Duration) bool {
	for {
		err := p.loader.LoadBatch(ctx, batch)
		if err == nil {
			p.metrics.EventsPublished.Add(float64(len(batch)))
			p.metrics.EventBatchSize.Observe(float64(len(batch)))
			*backoff = initialBackoff
			return true
		}

		p.metrics.EventLoadErrors.Inc()
		p.logger.Error("load event batch failed", "error", err, "batch_size", len(batch))
		if !backoffOrStop(ctx, backoff) {
			return false
		}
	}
}

// flushRemaining drains the queue into batch and makes a single bounded
// load attempt detached from the cancelled run context.
func (p *Pipeline) flushRemaining(ctx context.Context, batch []domain.LookupEvent) {
drain:
	for {
		select {
		case e := <-p.queue:
			batch = append(batch, e)
		default:
			break drain
		}
	}
	if len(batch) == 0 {
		return
	}

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalFlushWait)
	defer cancel()

	if err := p.loader.LoadBatch(flushCtx, batch); err != nil {
		p.metrics.EventLoadErrors.Inc()
		p.metrics.EventsDropped.Add(float64(len(batch)))
		p.logger.Error("final event flush failed", "error", err, "dropped", len(batch))
		return
	}
	p.metrics.EventsPublished.Add(float64(len(batch)))
	p.metrics.EventBatchSize.Observe(float64(len(batch)))
}

// FanOut returns a loader that writes each batch to every loader in turn.
// The batch fails if any sink fails.
func FanOut(loaders ...BatchLoader) BatchLoader {
	if len(loaders) == 1 {
		return loaders[0]
	}
	return fanOut(loaders)
}

type fanOut []BatchLoader

func (f fanOut) LoadBatch(ctx context.Context, events []domain.LookupEvent) error {
	var errs []error
	for _, l := range f {
		if err := l.LoadBatch(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// backoffOrStop sleeps with the current backoff and advances it. Returns
// false if the context ended first.
func backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
