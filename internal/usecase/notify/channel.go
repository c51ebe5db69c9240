// Package notify fans refresh reports out to the enabled notification channels.
// Each channel is isolated: deliveries run in background goroutines bounded by
// a worker pool, and a channel that keeps failing is paused for a while.
package notify

import (
	"context"

	"einvoice-news/internal/domain/entity"
)

// Channel is one delivery destination such as Slack or Discord.
//
// Retry Policy Contract:
//   - Transient failures (5xx, network errors): retried by the channel
//   - Rate limits (429): the channel waits for retry_after
//   - Client errors (4xx except 429): no retry
//
// All methods must be safe for concurrent use.
type Channel interface {
	// Name is the lowercase channel identifier used in logs and metric labels.
	Name() string

	// IsEnabled reports whether the channel is configured to receive reports.
	IsEnabled() bool

	// Send delivers one report. It returns ErrChannelDisabled when called
	// on a disabled channel.
	Send(ctx context.Context, report entity.RefreshReport) error
}
