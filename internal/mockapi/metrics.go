package mockapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts traffic against the fake backend.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	logins   *prometheus.CounterVec
	progress *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "streamz_mockapi_requests_total",
			Help: "Requests served, by route pattern and status code.",
		}, []string{"route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "streamz_mockapi_request_duration_seconds",
			Help:    "Request latency in seconds, by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "streamz_mockapi_logins_total",
			Help: "Login attempts, by outcome.",
		}, []string{"outcome"}),
		progress: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "streamz_mockapi_progress_updates_total",
			Help: "Accepted progress updates, by target kind.",
		}, []string{"target"}),
	}

	reg.MustRegister(m.requests, m.latency, m.logins, m.progress)
	return m
}

// RecordRequest counts a finished request. An empty route means nothing matched.
func (m *Metrics) RecordRequest(route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) RecordLogin(ok bool) {
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	m.logins.WithLabelValues(outcome).Inc()
}

// RecordProgress counts an upsert against an episode or a title.
func (m *Metrics) RecordProgress(episode bool) {
	target := "content"
	if episode {
		target = "episode"
	}
	m.progress.WithLabelValues(target).Inc()
}

// MetricsHandler serves the registry in the Prometheus text format.
func MetricsHandler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
