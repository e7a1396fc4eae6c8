package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeSkipped = "skipped"
)

// Metrics are the client's refresh counters. A nil *Metrics records nothing.
type Metrics struct {
	refreshes       *prometheus.CounterVec
	queued          prometheus.Counter
	replays         *prometheus.CounterVec
	refreshDuration prometheus.Histogram
}

// NewMetrics registers the client metrics with reg. A nil reg creates unregistered metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "apiclient_refresh_total",
			Help: "Session refresh calls by outcome",
		}, []string{"outcome"}),
		queued: factory.NewCounter(prometheus.CounterOpts{
			Name: "apiclient_requests_queued_total",
			Help: "Requests parked behind an in-flight refresh",
		}),
		replays: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "apiclient_replays_total",
			Help: "Re-issued requests after a refresh by outcome",
		}, []string{"outcome"}),
		refreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "apiclient_refresh_duration_seconds",
			Help:    "Duration of session refresh calls",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) refreshDone(seconds float64, err error) {
	if m == nil {
		return
	}
	m.refreshDuration.Observe(seconds)
	m.refreshes.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) requestQueued() {
	if m == nil {
		return
	}
	m.queued.Inc()
}

func (m *Metrics) replayDone(outcome string) {
	if m == nil {
		return
	}
	m.replays.WithLabelValues(outcome).Inc()
}

func outcome(err error) string {
	if err != nil {
		return outcomeFailure
	}
	return outcomeSuccess
}
