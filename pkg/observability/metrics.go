// Package observability exposes detector lifecycle activity as Prometheus
// metrics. It plugs into the engine through domain.LifecycleHooks so the core
// stays free of metrics dependencies.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aretw0/vigil/pkg/domain"
)

// Metrics holds the detector instrumentation.
type Metrics struct {
	passes   prometheus.Counter
	aborts   prometheus.Counter
	changes  prometheus.Counter
	watches  prometheus.Gauge
	duration prometheus.Histogram
}

// NewMetrics registers the detector metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		passes: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigil_digest_passes_total",
			Help: "Number of completed digest passes.",
		}),
		aborts: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigil_digest_aborts_total",
			Help: "Number of digest passes aborted by a record failure.",
		}),
		changes: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigil_changes_total",
			Help: "Number of change records produced across all passes.",
		}),
		watches: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vigil_watch_records",
			Help: "Number of live watch records in the tree.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vigil_digest_duration_seconds",
			Help:    "Duration of digest passes.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Hooks returns lifecycle hooks that feed the metrics. Pass them to the
// detector via WithLifecycleHooks.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDigestEnd: func(e *domain.DigestEvent) {
			if e.Err != nil {
				m.aborts.Inc()
				return
			}
			m.passes.Inc()
			m.changes.Add(float64(e.Changes))
			m.duration.Observe(e.Duration.Seconds())
		},
		OnWatchAdded: func(e *domain.WatchEvent) {
			m.watches.Inc()
		},
		OnWatchRemoved: func(e *domain.WatchEvent) {
			m.watches.Sub(float64(e.Removed))
		},
	}
}
