// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of in-flight HTTP requests
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of in-flight HTTP requests",
		},
	)
)

// Dataset metrics track loading of the published documents
var (
	// DatasetLoadsTotal counts dataset loads by result
	DatasetLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_loads_total",
			Help: "Total number of dataset loads",
		},
		[]string{"result"}, // result: success, failure
	)

	// DatasetLoadDuration measures a full three-document load
	DatasetLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataset_load_duration_seconds",
			Help:    "Time taken to load all dataset documents",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// DatasetDocumentFetchDuration measures each document fetch
	DatasetDocumentFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataset_document_fetch_duration_seconds",
			Help:    "Time taken to fetch one dataset document",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"document"},
	)

	// DatasetArticles reports the number of articles in the current dataset
	DatasetArticles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_articles",
			Help: "Number of articles in the loaded dataset",
		},
	)

	// FilterResults observes how many articles each filter pass returns
	FilterResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filter_results",
			Help:    "Number of articles returned by a filter pass",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)
)

// Refresh metrics track remote crawl runs
var (
	// RefreshRunsTotal counts refresh runs by outcome
	RefreshRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_runs_total",
			Help: "Total number of refresh runs",
		},
		[]string{"outcome"}, // outcome: done, failed, aborted, skipped
	)

	// RefreshPollAttempts observes how many polls a run needed
	RefreshPollAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refresh_poll_attempts",
			Help:    "Number of status polls per refresh run",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60},
		},
	)

	// RefreshDuration measures a refresh run from trigger to outcome
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refresh_duration_seconds",
			Help:    "Time taken by a refresh run",
			Buckets: []float64{5, 15, 30, 60, 120, 180, 240, 300, 360},
		},
	)

	// RefreshArticleDelta observes the article count change after a reload
	RefreshArticleDelta = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refresh_article_delta",
			Help:    "Change in article count after a successful refresh",
			Buckets: []float64{-50, -10, -1, 0, 1, 5, 10, 25, 50, 100},
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
