package notify

import (
	"context"

	"einvoice-news/internal/domain/entity"
	"einvoice-news/internal/infra/notifier"
)

// SlackChannel adapts notifier.SlackNotifier to Channel.
type SlackChannel struct {
	notifier notifier.Notifier
	enabled  bool
}

// NewSlackChannel uses a no-op notifier when Slack is disabled.
func NewSlackChannel(config notifier.SlackConfig) *SlackChannel {
	var n notifier.Notifier = notifier.NewNoOpNotifier()
	if config.Enabled {
		n = notifier.NewSlackNotifier(config)
	}
	return &SlackChannel{notifier: n, enabled: config.Enabled}
}

// Name returns "slack".
func (c *SlackChannel) Name() string {
	return "slack"
}

// IsEnabled reports whether Slack notifications are enabled.
func (c *SlackChannel) IsEnabled() bool {
	return c.enabled
}

// Send posts report to Slack.
func (c *SlackChannel) Send(ctx context.Context, report entity.RefreshReport) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if report.Outcome == "" {
		return ErrInvalidReport
	}
	return c.notifier.NotifyRefresh(ctx, report)
}
