// Package metrics exposes prometheus instrumentation for the API and the
// three workers on a dedicated registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	WorkerClaims    *prometheus.CounterVec
	WorkerProcessed *prometheus.CounterVec
	WorkerFailures  *prometheus.CounterVec
	WorkerReleases  *prometheus.CounterVec
	StaleRecovered  *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{registry: reg}

	m.HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "central_http_requests_total",
		Help: "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})
	reg.MustRegister(m.HTTPRequests)

	m.HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "central_http_request_duration_seconds",
		Help:    "HTTP handler latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	reg.MustRegister(m.HTTPDuration)

	m.WorkerClaims = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "central_worker_claims_total",
		Help: "Events claimed by worker",
	}, []string{"worker"})
	reg.MustRegister(m.WorkerClaims)

	m.WorkerProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "central_worker_processed_total",
		Help: "Events committed successfully by worker",
	}, []string{"worker"})
	reg.MustRegister(m.WorkerProcessed)

	m.WorkerFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "central_worker_failures_total",
		Help: "Events latched failed by worker",
	}, []string{"worker"})
	reg.MustRegister(m.WorkerFailures)

	m.WorkerReleases = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "central_worker_releases_total",
		Help: "Claims released without a result (not quiesced, transient error)",
	}, []string{"worker"})
	reg.MustRegister(m.WorkerReleases)

	m.StaleRecovered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "central_worker_stale_claims_recovered_total",
		Help: "Stale claims reset by recovery",
	}, []string{"worker"})
	reg.MustRegister(m.StaleRecovered)

	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
