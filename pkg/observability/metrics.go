package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the Prometheus instrumentation surface for the graph services
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	SearchCandidates  prometheus.Histogram
	SearchResults     prometheus.Histogram
	EventsPublished   prometheus.Counter
	EventFailures     prometheus.Counter
}

// NewMetrics creates and registers the metric collectors
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inklings",
			Name:      "operations_total",
			Help:      "Service operations by name and outcome",
		}, []string{"operation", "status"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "inklings",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		SearchCandidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "inklings",
			Name:      "search_candidates",
			Help:      "Candidates scanned per similarity query",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		SearchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "inklings",
			Name:      "search_results",
			Help:      "Results returned per similarity query",
			Buckets:   prometheus.LinearBuckets(0, 5, 10),
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inklings",
			Name:      "events_published_total",
			Help:      "Domain events published to the bus",
		}),
		EventFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inklings",
			Name:      "event_publish_failures_total",
			Help:      "Domain event publish failures",
		}),
	}
	reg.MustRegister(
		m.OperationsTotal,
		m.OperationDuration,
		m.SearchCandidates,
		m.SearchResults,
		m.EventsPublished,
		m.EventFailures,
	)
	return m
}

// NewNopMetrics creates an unregistered metrics set for tests
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// Observe records one operation's outcome and latency
func (m *Metrics) Observe(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
