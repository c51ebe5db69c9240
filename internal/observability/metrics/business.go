package metrics

import (
	"time"
)

// RecordDatasetLoad records the result of a dataset load.
// On success the article gauge is updated to the new count.
func RecordDatasetLoad(success bool, duration time.Duration, articles int) {
	result := "success"
	if !success {
		result = "failure"
	}
	DatasetLoadsTotal.WithLabelValues(result).Inc()
	DatasetLoadDuration.Observe(duration.Seconds())
	if success {
		DatasetArticles.Set(float64(articles))
	}
}

// RecordDocumentFetch records the time taken to fetch one dataset document.
//
// Example:
//
//	start := time.Now()
//	body, err := fetcher.Fetch(ctx, "news.json")
//	metrics.RecordDocumentFetch("news.json", time.Since(start))
func RecordDocumentFetch(document string, duration time.Duration) {
	DatasetDocumentFetchDuration.WithLabelValues(document).Observe(duration.Seconds())
}

// RecordFilterResult records the size of a filter pass result.
func RecordFilterResult(count int) {
	FilterResults.Observe(float64(count))
}

// RecordRefreshOutcome records a finished refresh run.
//
// Parameters:
//   - outcome: done, failed, aborted or skipped
//   - attempts: number of status polls performed (0 when polling never started)
//   - duration: time from trigger to outcome
func RecordRefreshOutcome(outcome string, attempts int, duration time.Duration) {
	RefreshRunsTotal.WithLabelValues(outcome).Inc()
	if outcome == "skipped" {
		return
	}
	if attempts > 0 {
		RefreshPollAttempts.Observe(float64(attempts))
	}
	RefreshDuration.Observe(duration.Seconds())
}

// RecordRefreshDelta records the article count change after a successful refresh.
func RecordRefreshDelta(delta int) {
	RefreshArticleDelta.Observe(float64(delta))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "storage_get", "storage_set").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
