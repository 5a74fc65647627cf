package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "sitesearch"

// Cache outcome labels for the queries counter.
const (
	cacheHit    = "hit"
	cacheMiss   = "miss"
	cacheBypass = "bypass"
)

// Rebuild outcome labels for the rebuilds counter.
const (
	rebuildSuccess   = "success"
	rebuildUnchanged = "unchanged"
	rebuildError     = "error"
)

// metrics holds the engine's Prometheus collectors. With a nil registerer the
// collectors are created but never registered.
type metrics struct {
	queries         *prometheus.CounterVec
	rebuilds        *prometheus.CounterVec
	rebuildDuration prometheus.Histogram
	entries         prometheus.Gauge
	terms           prometheus.Gauge
	version         prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		queries: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "queries_total",
				Help:      "Total number of search queries by cache outcome",
			},
			[]string{"cache"},
		),
		rebuilds: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "rebuilds_total",
				Help:      "Total number of index rebuilds by status",
			},
			[]string{"status"},
		),
		rebuildDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "rebuild_duration_seconds",
				Help:      "Time spent loading content and building the index",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
			},
		),
		entries: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "index_entries",
				Help:      "Number of entries in the active index",
			},
		),
		terms: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "index_terms",
				Help:      "Number of distinct terms in the active index",
			},
		),
		version: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "index_version",
				Help:      "Version counter of the active index",
			},
		),
	}
}

func (m *metrics) observeQuery(outcome string) {
	m.queries.WithLabelValues(outcome).Inc()
}

func (m *metrics) observeRebuild(status string, s Stats) {
	m.rebuilds.WithLabelValues(status).Inc()
	if status == rebuildError {
		return
	}
	m.rebuildDuration.Observe(s.Duration.Seconds())
	m.entries.Set(float64(s.Entries))
	m.terms.Set(float64(s.Terms))
	m.version.Set(float64(s.Version))
}
