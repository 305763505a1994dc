package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the ingestion pipeline. A nil
// *Metrics records nothing, which keeps tests off the shared default
// registry.
type Metrics struct {
	// Processed publications by outcome
	Outcomes *prometheus.CounterVec

	// Retries of transient fetch failures
	Retries prometheus.Counter

	// End-to-end latency per publication
	IngestLatency prometheus.Histogram
}

// NewMetrics registers the pipeline metrics on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "auctionproperty_publications_total",
			Help: "Total processed publications by outcome",
		}, []string{"outcome"}),

		Retries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auctionproperty_fetch_retries_total",
			Help: "Total retries of transient fetch failures",
		}),

		IngestLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "auctionproperty_ingest_duration_seconds",
			Help:    "Duration of processing a single publication end to end",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// IncrementOutcome records the outcome of one processed publication.
func (m *Metrics) IncrementOutcome(outcome Outcome) {
	if m != nil {
		m.Outcomes.WithLabelValues(string(outcome)).Inc()
	}
}

// IncrementRetry records a retry of a transient fetch failure.
func (m *Metrics) IncrementRetry() {
	if m != nil {
		m.Retries.Inc()
	}
}

// ObserveIngestLatency records the end-to-end duration for one publication.
func (m *Metrics) ObserveIngestLatency(d time.Duration) {
	if m != nil {
		m.IngestLatency.Observe(d.Seconds())
	}
}
