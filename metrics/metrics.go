// Package metrics provides Prometheus metrics for the medicines API.
// HTTP traffic is tracked by:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// The dataset lifecycle is exposed through dataset_loaded,
// dataset_records_total and dataset_load_duration_seconds.
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Number of rate limiter buckets kept after the last sweep",
		},
	)

	DatasetLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_loaded",
			Help: "1 once the medicines dataset is loaded, 0 while unloaded",
		},
	)

	DatasetRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_records_total",
			Help: "Number of medicine records loaded",
		},
	)

	DatasetLoadDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_load_duration_seconds",
			Help: "Time spent parsing and indexing the dataset",
		},
	)

	EmptyResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_empty_results_total",
			Help: "Search style queries that matched nothing",
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(DatasetLoaded)
	prometheus.MustRegister(DatasetRecords)
	prometheus.MustRegister(DatasetLoadDuration)
	prometheus.MustRegister(EmptyResultsTotal)
}
