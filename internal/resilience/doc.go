// Package resilience groups the fault tolerance helpers used around the
// dashboard's outbound calls: the dataset document host, the workflow API,
// chat webhooks and the client storage database.
//
// The subpackages provide:
//   - circuitbreaker: gobreaker wrappers with per-dependency configurations
//   - retry: exponential backoff with jitter and Retry-After support
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.DatasetFetchConfig())
//	body, err := circuitbreaker.Run(cb, func() ([]byte, error) {
//	    return fetch(ctx, "news.json")
//	})
//
//	err := retry.WithBackoff(ctx, retry.DatasetFetchConfig(), func() error {
//	    return performOperation()
//	})
package resilience
