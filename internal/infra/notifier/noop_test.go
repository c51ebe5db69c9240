package notifier

import (
	"context"
	"testing"

	"einvoice-news/internal/domain/entity"
)

func TestNoOpNotifier_NotifyRefresh(t *testing.T) {
	t.Run("TC-1: should return nil without error", func(t *testing.T) {
		n := NewNoOpNotifier()
		if err := n.NotifyRefresh(context.Background(), entity.RefreshReport{Outcome: "done"}); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("TC-2: should ignore a canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := NewNoOpNotifier().NotifyRefresh(ctx, entity.RefreshReport{}); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("TC-3: should satisfy the Notifier interface", func(t *testing.T) {
		var _ Notifier = NewNoOpNotifier()
		var _ Notifier = NewSlackNotifier(SlackConfig{})
		var _ Notifier = NewDiscordNotifier(DiscordConfig{})
	})
}
