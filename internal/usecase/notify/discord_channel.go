package notify

import (
	"context"

	"einvoice-news/internal/domain/entity"
	"einvoice-news/internal/infra/notifier"
)

// DiscordChannel adapts notifier.DiscordNotifier to Channel.
type DiscordChannel struct {
	notifier notifier.Notifier
	enabled  bool
}

// NewDiscordChannel uses a no-op notifier when Discord is disabled.
func NewDiscordChannel(config notifier.DiscordConfig) *DiscordChannel {
	var n notifier.Notifier = notifier.NewNoOpNotifier()
	if config.Enabled {
		n = notifier.NewDiscordNotifier(config)
	}
	return &DiscordChannel{notifier: n, enabled: config.Enabled}
}

// Name returns "discord".
func (c *DiscordChannel) Name() string {
	return "discord"
}

// IsEnabled reports whether Discord notifications are enabled.
func (c *DiscordChannel) IsEnabled() bool {
	return c.enabled
}

// Send posts report to Discord.
func (c *DiscordChannel) Send(ctx context.Context, report entity.RefreshReport) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if report.Outcome == "" {
		return ErrInvalidReport
	}
	return c.notifier.NotifyRefresh(ctx, report)
}
