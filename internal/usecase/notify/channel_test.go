package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"einvoice-news/internal/domain/entity"
	"einvoice-news/internal/infra/notifier"
)

// mockChannel is a test implementation of the Channel interface
type mockChannel struct {
	name        string
	enabled     bool
	sendError   error
	sendDelay   time.Duration
	panicOnSend bool

	mu      sync.Mutex
	reports []entity.RefreshReport
}

func (m *mockChannel) Name() string    { return m.name }
func (m *mockChannel) IsEnabled() bool { return m.enabled }

func (m *mockChannel) Send(ctx context.Context, report entity.RefreshReport) error {
	if m.panicOnSend {
		panic("mock panic in Send()")
	}
	if m.sendDelay > 0 {
		select {
		case <-time.After(m.sendDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, report)
	return m.sendError
}

func (m *mockChannel) sent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reports)
}

func TestSlackChannel(t *testing.T) {
	t.Run("disabled channel rejects sends", func(t *testing.T) {
		ch := NewSlackChannel(notifier.SlackConfig{Enabled: false})
		if ch.IsEnabled() {
			t.Fatal("expected disabled channel")
		}
		if err := ch.Send(context.Background(), entity.RefreshReport{Outcome: "done"}); !errors.Is(err, ErrChannelDisabled) {
			t.Errorf("expected ErrChannelDisabled, got %v", err)
		}
	})

	t.Run("empty report is rejected", func(t *testing.T) {
		ch := NewSlackChannel(notifier.SlackConfig{Enabled: true, WebhookURL: "http://127.0.0.1:1", Timeout: time.Second})
		if err := ch.Send(context.Background(), entity.RefreshReport{}); !errors.Is(err, ErrInvalidReport) {
			t.Errorf("expected ErrInvalidReport, got %v", err)
		}
	})

	t.Run("enabled channel posts to the webhook", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			_, _ = w.Write([]byte("ok"))
		}))
		defer srv.Close()

		ch := NewSlackChannel(notifier.SlackConfig{Enabled: true, WebhookURL: srv.URL, Timeout: time.Second})
		if ch.Name() != "slack" {
			t.Errorf("unexpected name %q", ch.Name())
		}
		if err := ch.Send(context.Background(), entity.RefreshReport{Outcome: "done"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls.Load() != 1 {
			t.Errorf("expected 1 webhook call, got %d", calls.Load())
		}
	})
}

func TestDiscordChannel(t *testing.T) {
	t.Run("disabled channel rejects sends", func(t *testing.T) {
		ch := NewDiscordChannel(notifier.DiscordConfig{})
		if err := ch.Send(context.Background(), entity.RefreshReport{Outcome: "failed"}); !errors.Is(err, ErrChannelDisabled) {
			t.Errorf("expected ErrChannelDisabled, got %v", err)
		}
	})

	t.Run("enabled channel posts to the webhook", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		ch := NewDiscordChannel(notifier.DiscordConfig{Enabled: true, WebhookURL: srv.URL, Timeout: time.Second})
		if ch.Name() != "discord" {
			t.Errorf("unexpected name %q", ch.Name())
		}
		if err := ch.Send(context.Background(), entity.RefreshReport{Outcome: "failed"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls.Load() != 1 {
			t.Errorf("expected 1 webhook call, got %d", calls.Load())
		}
	})
}
