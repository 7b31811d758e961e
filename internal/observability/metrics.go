package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "metar_card"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Lookup outcomes. labels: outcome={ok,invalid,not_found,unavailable}
	Lookups *prometheus.CounterVec

	// Provider chain metrics.
	ProviderRequests *prometheus.CounterVec   // labels: provider, outcome={success,not_found,error}
	ProviderDuration *prometheus.HistogramVec // labels: provider
	ChainExhausted   prometheus.Counter
	ReportCache      *prometheus.CounterVec // labels: result={hit,miss}

	// Lookup event pipeline metrics.
	EventsPublished   prometheus.Counter
	EventsDropped     prometheus.Counter
	EventLoadErrors   prometheus.Counter
	EventBatchSize    prometheus.Histogram
	EventSinksEnabled prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Lookups,
		m.ProviderRequests,
		m.ProviderDuration,
		m.ChainExhausted,
		m.ReportCache,
		m.EventsPublished,
		m.EventsDropped,
		m.EventLoadErrors,
		m.EventBatchSize,
		m.EventSinksEnabled,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Station lookups by outcome.",
		}, []string{"outcome"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Upstream provider attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Upstream provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		ChainExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_chain_exhausted_total",
			Help:      "Fetches where no provider returned a report.",
		}),
		ReportCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_cache_total",
			Help:      "Report cache lookups by result.",
		}, []string{"result"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Lookup events delivered to all sinks.",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Lookup events dropped because the queue was full.",
		}),
		EventLoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_load_errors_total",
			Help:      "Failed attempts to load an event batch into the sinks.",
		}),
		EventBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_batch_size",
			Help:      "Number of lookup events per loaded batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		EventSinksEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_sinks_enabled",
			Help:      "Number of configured lookup event sinks.",
		}),
	}
}
