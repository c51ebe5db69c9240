package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"einvoice-news/internal/domain/entity"

	"github.com/google/uuid"
)

// SlackConfig contains configuration for Slack webhook notifications.
type SlackConfig struct {
	Enabled bool

	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string

	Timeout time.Duration
}

// SlackNotifier posts refresh reports to a Slack Incoming Webhook.
type SlackNotifier struct {
	config      SlackConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	baseDelay   time.Duration
}

// NewSlackNotifier returns a notifier limited to 1 request/second with a burst
// of 1, the Slack webhook limit.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(1.0, 1),
		baseDelay:   defaultBaseDelay,
	}
}

// SlackWebhookPayload is the Block Kit message body.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`   // Fallback text (required)
	Blocks []SlackBlock `json:"blocks"` // Rich formatting blocks
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`               // "section", "context"
	Text     *SlackTextObject  `json:"text,omitempty"`     // Text content (for section)
	Elements []SlackTextObject `json:"elements,omitempty"` // Elements (for context)
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"`
}

const (
	maxSectionTextLength  = 3000
	maxContextTextLength  = 2000
	slackTruncationSuffix = "..."
)

func (s *SlackNotifier) buildBlockKitPayload(r entity.RefreshReport) SlackWebhookPayload {
	title := headline(r)
	if r.RunURL != "" {
		title = fmt.Sprintf("<%s|%s>", r.RunURL, title)
	}
	sectionText := truncate(fmt.Sprintf("*%s*\n%s", title, r.Message), maxSectionTextLength, slackTruncationSuffix)

	return SlackWebhookPayload{
		Text: headline(r),
		Blocks: []SlackBlock{
			{Type: "section", Text: &SlackTextObject{Type: "mrkdwn", Text: sectionText}},
			{Type: "context", Elements: []SlackTextObject{{
				Type: "mrkdwn",
				Text: truncate(details(r), maxContextTextLength, slackTruncationSuffix),
			}}},
		},
	}
}

// slackRetryAfter reads the Retry-After header; Slack webhooks do not send a JSON hint.
func slackRetryAfter(resp *http.Response, _ []byte) time.Duration {
	return headerRetryAfter(resp)
}

// NotifyRefresh posts the report, applying the rate limit and retry policy.
func (s *SlackNotifier) NotifyRefresh(ctx context.Context, report entity.RefreshReport) error {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("Starting Slack notification",
		slog.String("request_id", requestID),
		slog.String("outcome", report.Outcome))

	if err := s.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	payload := s.buildBlockKitPayload(report)
	return sendWithRetry(ctx, "Slack", s.baseDelay, report, func(ctx context.Context) error {
		return postJSON(ctx, s.httpClient, s.config.WebhookURL, "Slack", payload, slackRetryAfter)
	})
}
