package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"einvoice-news/internal/domain/entity"

	"github.com/google/uuid"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	Enabled bool

	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	Timeout time.Duration
}

// DiscordNotifier posts refresh reports to a Discord webhook.
type DiscordNotifier struct {
	config      DiscordConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	baseDelay   time.Duration
	now         func() time.Time
}

// NewDiscordNotifier returns a notifier limited to 0.5 requests/second with a
// burst of 3 (Discord allows 30 webhook requests per minute).
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(0.5, 3),
		baseDelay:   defaultBaseDelay,
		now:         time.Now,
	}
}

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	URL         string             `json:"url,omitempty"`
	Color       int                `json:"color"`
	Footer      DiscordEmbedFooter `json:"footer"`
	Timestamp   string             `json:"timestamp"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

// DiscordErrorResponse represents the error response from Discord API.
type DiscordErrorResponse struct {
	Message    string  `json:"message"`
	RetryAfter float64 `json:"retry_after"` // seconds
	Global     bool    `json:"global"`
}

const (
	maxDescriptionLength    = 4096
	discordTruncationSuffix = "..."

	colorSuccess = 0x16a34a
	colorFailure = 0xdc2626
)

func (d *DiscordNotifier) buildEmbedPayload(r entity.RefreshReport) DiscordWebhookPayload {
	color := colorFailure
	if r.Outcome == "done" {
		color = colorSuccess
	}
	return DiscordWebhookPayload{
		Embeds: []DiscordEmbed{{
			Title:       headline(r),
			Description: truncate(r.Message, maxDescriptionLength, discordTruncationSuffix),
			URL:         r.RunURL,
			Color:       color,
			Footer:      DiscordEmbedFooter{Text: details(r)},
			Timestamp:   d.now().UTC().Format(time.RFC3339),
		}},
	}
}

// discordRetryAfter prefers the retry_after field of the JSON body, then the
// Retry-After header.
func discordRetryAfter(resp *http.Response, body []byte) time.Duration {
	var discordErr DiscordErrorResponse
	if err := json.Unmarshal(body, &discordErr); err == nil && discordErr.RetryAfter > 0 {
		return time.Duration(discordErr.RetryAfter * float64(time.Second))
	}
	return headerRetryAfter(resp)
}

// NotifyRefresh posts the report, applying the rate limit and retry policy.
func (d *DiscordNotifier) NotifyRefresh(ctx context.Context, report entity.RefreshReport) error {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("Starting Discord notification",
		slog.String("request_id", requestID),
		slog.String("outcome", report.Outcome))

	if err := d.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	payload := d.buildEmbedPayload(report)
	return sendWithRetry(ctx, "Discord", d.baseDelay, report, func(ctx context.Context) error {
		return postJSON(ctx, d.httpClient, d.config.WebhookURL, "Discord", payload, discordRetryAfter)
	})
}
