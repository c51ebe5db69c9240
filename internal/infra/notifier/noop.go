package notifier

import (
	"context"

	"einvoice-news/internal/domain/entity"
)

// NoOpNotifier is used when a channel is disabled, so callers never need a nil check.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier instance.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// NotifyRefresh does nothing and returns nil.
func (n *NoOpNotifier) NotifyRefresh(context.Context, entity.RefreshReport) error {
	return nil
}
