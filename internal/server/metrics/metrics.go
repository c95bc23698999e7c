// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcomes.
const (
	UploadAccepted = "accepted"
	UploadRejected = "rejected"
	UploadFailed   = "failed"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	UploadsTotal      *prometheus.CounterVec
	UploadBytes       prometheus.Histogram
	BlobDeleteFailure prometheus.Counter

	LoginsTotal *prometheus.CounterVec
}

// New creates and registers all metrics on registry.
func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medrecords_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "medrecords_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		UploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medrecords_uploads_total",
				Help: "Image uploads by outcome",
			},
			[]string{"outcome"},
		),
		UploadBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "medrecords_upload_size_bytes",
				Help:    "Size of accepted uploads",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
		),
		BlobDeleteFailure: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "medrecords_blob_delete_failures_total",
				Help: "Stored files that could not be removed",
			},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medrecords_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.UploadsTotal,
		m.UploadBytes,
		m.BlobDeleteFailure,
		m.LoginsTotal,
	)

	return m
}

// NewRegistry returns a registry with the Go and process collectors attached.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the Prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// ObserveUpload records an upload outcome. Nil receivers are ignored so
// services can run without metrics in tests.
func (m *Metrics) ObserveUpload(outcome string, size int64) {
	if m == nil {
		return
	}
	m.UploadsTotal.WithLabelValues(outcome).Inc()
	if outcome == UploadAccepted {
		m.UploadBytes.Observe(float64(size))
	}
}

// ObserveLogin records a login result.
func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}
