package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestDiscord(url string) *DiscordNotifier {
	n := NewDiscordNotifier(DiscordConfig{Enabled: true, WebhookURL: url, Timeout: 5 * time.Second})
	n.rateLimiter = NewRateLimiter(1000, 10)
	n.baseDelay = time.Millisecond
	n.now = func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC) }
	return n
}

func TestDiscordNotifier_buildEmbedPayload(t *testing.T) {
	t.Run("TC-1: should build a green embed for a finished run", func(t *testing.T) {
		payload := newTestDiscord("https://discord.com/api/webhooks/test").buildEmbedPayload(testReport("done"))
		if len(payload.Embeds) != 1 {
			t.Fatalf("expected 1 embed, got %d", len(payload.Embeds))
		}
		e := payload.Embeds[0]
		if e.Color != colorSuccess {
			t.Errorf("expected success colour, got %#x", e.Color)
		}
		if e.URL != "https://github.com/acme/crawler/actions/runs/7" {
			t.Errorf("unexpected URL %q", e.URL)
		}
		if e.Timestamp != "2026-01-10T12:00:00Z" {
			t.Errorf("unexpected timestamp %q", e.Timestamp)
		}
		if e.Footer.Text != "4 status checks • 42s" {
			t.Errorf("unexpected footer %q", e.Footer.Text)
		}
	})

	t.Run("TC-2: should build a red embed for a failed run", func(t *testing.T) {
		e := newTestDiscord("https://discord.com/api/webhooks/test").buildEmbedPayload(testReport("failed")).Embeds[0]
		if e.Color != colorFailure {
			t.Errorf("expected failure colour, got %#x", e.Color)
		}
		if e.Title != "eInvoice news refresh failed" {
			t.Errorf("unexpected title %q", e.Title)
		}
	})
}

func TestDiscordRetryAfter(t *testing.T) {
	t.Run("TC-1: should prefer the JSON body", func(t *testing.T) {
		resp := &http.Response{Header: http.Header{"Retry-After": []string{"9"}}}
		got := discordRetryAfter(resp, []byte(`{"message":"You are being rate limited.","retry_after":1.5}`))
		if got != 1500*time.Millisecond {
			t.Errorf("expected 1.5s, got %v", got)
		}
	})

	t.Run("TC-2: should fall back to the header", func(t *testing.T) {
		resp := &http.Response{Header: http.Header{"Retry-After": []string{"3"}}}
		if got := discordRetryAfter(resp, nil); got != 3*time.Second {
			t.Errorf("expected 3s, got %v", got)
		}
	})

	t.Run("TC-3: should default to 5s", func(t *testing.T) {
		if got := discordRetryAfter(&http.Response{Header: http.Header{}}, nil); got != 5*time.Second {
			t.Errorf("expected 5s, got %v", got)
		}
	})
}

func TestDiscordNotifier_NotifyRefresh(t *testing.T) {
	t.Run("TC-1: should post the embed", func(t *testing.T) {
		var got DiscordWebhookPayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &got)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		if err := newTestDiscord(srv.URL).NotifyRefresh(context.Background(), testReport("done")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got.Embeds) != 1 || got.Embeds[0].Description != "Refresh complete: 3 new articles" {
			t.Errorf("unexpected payload %+v", got)
		}
	})

	t.Run("TC-2: should give up after two server errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		err := newTestDiscord(srv.URL).NotifyRefresh(context.Background(), testReport("failed"))
		if err == nil {
			t.Fatal("expected error")
		}
		if calls.Load() != maxAttempts {
			t.Errorf("expected %d calls, got %d", maxAttempts, calls.Load())
		}
	})

	t.Run("TC-3: should stop when the context is canceled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := newTestDiscord(srv.URL).NotifyRefresh(ctx, testReport("done")); err == nil {
			t.Error("expected error for canceled context")
		}
	})
}
