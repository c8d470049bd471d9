package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "jmap"

// Registry holds the map metrics and the Prometheus registry they live in.
type Registry struct {
	registry *prometheus.Registry

	entries    prometheus.Gauge
	mutations  *prometheus.CounterVec
	loads      prometheus.Counter
	replayed   prometheus.Counter
	tornTails  prometheus.Counter
	saves      prometheus.Counter
	savedBytes prometheus.Gauge
	clears     prometheus.Counter
	duration   *prometheus.HistogramVec
}

// NewRegistry creates the metrics and registers them in a fresh registry.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "entries",
			Help:      "Number of live entries in the map",
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "mutations_total",
			Help:      "Mutations applied, partitioned by op",
		}, []string{"op"}),
		loads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "loads_total",
			Help:      "Successful loads",
		}),
		replayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "journal",
			Name:      "replayed_records_total",
			Help:      "Journal records replayed during loads",
		}),
		tornTails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "journal",
			Name:      "torn_tails_total",
			Help:      "Loads that dropped a torn record at the end of the journal",
		}),
		saves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "saves_total",
			Help:      "Successful saves",
		}),
		savedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "saved_bytes",
			Help:      "Snapshot plus journal bytes reported by the last save",
		}),
		clears: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "clears_total",
			Help:      "Successful clears",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Load and save latency",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"op"}),
	}

	r.registry.MustRegister(
		r.entries,
		r.mutations,
		r.loads,
		r.replayed,
		r.tornTails,
		r.saves,
		r.savedBytes,
		r.clears,
		r.duration,
	)
	return r
}

// MustRegister adds extra collectors, such as a FileCollector.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// Gatherer returns the underlying registry for exposition.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteToTextfile writes the current metrics to path in the text format.
func (r *Registry) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// Loaded implements jmap.Metrics.
func (r *Registry) Loaded(entries, records int, truncated bool, elapsed time.Duration) {
	r.loads.Inc()
	r.replayed.Add(float64(records))
	if truncated {
		r.tornTails.Inc()
	}
	r.duration.WithLabelValues("load").Observe(elapsed.Seconds())
}

// Mutated implements jmap.Metrics.
func (r *Registry) Mutated(op string) {
	r.mutations.WithLabelValues(op).Inc()
}

// Saved implements jmap.Metrics.
func (r *Registry) Saved(bytes int64, elapsed time.Duration) {
	r.saves.Inc()
	r.savedBytes.Set(float64(bytes))
	r.duration.WithLabelValues("save").Observe(elapsed.Seconds())
}

// Cleared implements jmap.Metrics.
func (r *Registry) Cleared() {
	r.clears.Inc()
}

// Entries implements jmap.Metrics.
func (r *Registry) Entries(n int) {
	r.entries.Set(float64(n))
}
