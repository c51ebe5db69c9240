// Package notifier delivers refresh outcome reports to chat webhooks.
// It defines the Notifier interface so Slack, Discord and a no-op
// implementation can be swapped through dependency injection.
package notifier

import (
	"context"

	"einvoice-news/internal/domain/entity"
)

// Notifier sends a refresh report to one destination.
// Implementations handle rate limiting, retries and error logging internally.
type Notifier interface {
	// NotifyRefresh posts a summary of a finished refresh run.
	//
	// Implementations should:
	//   - Generate a unique request ID for tracing
	//   - Apply rate limiting to stay within the webhook limits
	//   - Retry transient failures
	//   - Respect context cancellation
	NotifyRefresh(ctx context.Context, report entity.RefreshReport) error
}
