// Package metrics exposes Prometheus instrumentation for the aggregation
// service and a standalone metrics HTTP server.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service counters. One instance is created at startup and
// shared by every transport.
type Metrics struct {
	registry *prometheus.Registry

	AggregationRequests *prometheus.CounterVec
	AggregationFailures *prometheus.CounterVec
	ReceiptsAggregated  *prometheus.CounterVec
	BatchSize           *prometheus.HistogramVec
}

// New registers the service collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		AggregationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tap_aggregation_requests_total",
			Help: "Total aggregation requests received, by protocol version and transport.",
		}, []string{"version", "transport"}),
		AggregationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tap_aggregation_failures_total",
			Help: "Total failed aggregation requests, by protocol version and error kind.",
		}, []string{"version", "kind"}),
		ReceiptsAggregated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tap_receipts_aggregated_total",
			Help: "Total receipts folded into vouchers, by protocol version.",
		}, []string{"version"}),
		BatchSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tap_aggregation_batch_size",
			Help:    "Receipt batch sizes per aggregation request.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"version"}),
	}
	registry.MustRegister(
		m.AggregationRequests,
		m.AggregationFailures,
		m.ReceiptsAggregated,
		m.BatchSize,
	)
	return m
}

// Handler returns the scrape handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve runs the metrics HTTP server on the given port. It blocks until the
// server stops.
func (m *Metrics) Serve(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
