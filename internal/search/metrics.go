package search

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// searchDuration tracks the time taken to serve a price search.
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "search_duration_seconds",
		Help:    "Time taken to serve a price search",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
	})

	// searchesTotal counts searches by outcome.
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "searches_total",
		Help: "Total number of price searches by outcome",
	}, []string{"outcome"}) // outcome: ok, empty, error

	// searchResultCount tracks the distribution of result-set sizes.
	searchResultCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "search_results_count",
		Help:    "Number of price records returned per search",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	// eventLogFailures counts search events that could not be persisted.
	eventLogFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "search_event_log_failures_total",
		Help: "Total number of search events that failed to persist",
	})

	// eventLogDropped counts search events dropped because the writer was saturated.
	eventLogDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "search_event_log_dropped_total",
		Help: "Total number of search events dropped due to writer saturation",
	})
)

// MetricsRecorder wraps Prometheus metrics for the search service.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordSearch records the duration and outcome of a search.
func (m *MetricsRecorder) RecordSearch(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	searchesTotal.WithLabelValues(outcome).Inc()
	searchDuration.Observe(d.Seconds())
}

// RecordResultCount records the size of a search result set.
func (m *MetricsRecorder) RecordResultCount(n int) {
	if m == nil {
		return
	}
	searchResultCount.Observe(float64(n))
}

// RecordEventLogFailure records a failed search event insert.
func (m *MetricsRecorder) RecordEventLogFailure() {
	if m == nil {
		return
	}
	eventLogFailures.Inc()
}

// RecordEventLogDropped records a search event dropped before insert.
func (m *MetricsRecorder) RecordEventLogDropped() {
	if m == nil {
		return
	}
	eventLogDropped.Inc()
}
