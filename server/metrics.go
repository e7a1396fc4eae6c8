package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	logins    *prometheus.CounterVec
	refreshes *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "session_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_refresh_total",
			Help: "Refresh token rotations by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observeRequest(r *http.Request, status int, elapsed time.Duration) {
	route := r.Pattern
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) login(ok bool) {
	m.logins.WithLabelValues(outcomeLabel(ok)).Inc()
}

func (m *Metrics) refresh(ok bool) {
	m.refreshes.WithLabelValues(outcomeLabel(ok)).Inc()
}

func outcomeLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
