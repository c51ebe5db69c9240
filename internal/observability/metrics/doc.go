// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Dataset metrics (loads, document fetches, article count, filter results)
//   - Refresh metrics (runs by outcome, poll attempts, duration, article delta)
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "einvoice-news/internal/observability/metrics"
//
//	func load(ctx context.Context) {
//	    start := time.Now()
//	    ds, err := loader.Load(ctx)
//	    metrics.RecordDatasetLoad(err == nil, time.Since(start), ds.ArticleCount())
//	}
package metrics
