// Package datasource provides the dataset.Fetcher implementations: an HTTP
// fetcher for published documents, a directory fetcher for local copies and a
// watcher that reports when local documents change.
package datasource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"einvoice-news/internal/domain/entity"
	"einvoice-news/internal/resilience/circuitbreaker"
	"einvoice-news/internal/resilience/retry"
)

// DefaultMaxDocumentBytes caps a single document download.
const DefaultMaxDocumentBytes = 32 << 20

// HTTPFetcher downloads documents relative to a base URL. Each download is
// retried with backoff and guarded by a circuit breaker.
type HTTPFetcher struct {
	base      *url.URL
	client    *http.Client
	breaker   *circuitbreaker.CircuitBreaker
	retryCfg  retry.Config
	maxBytes  int64
	userAgent string
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithRetryConfig replaces retry.DatasetFetchConfig.
func WithRetryConfig(cfg retry.Config) HTTPOption {
	return func(f *HTTPFetcher) { f.retryCfg = cfg }
}

// WithBreaker replaces the circuit breaker built from circuitbreaker.DatasetFetchConfig.
func WithBreaker(cb *circuitbreaker.CircuitBreaker) HTTPOption {
	return func(f *HTTPFetcher) { f.breaker = cb }
}

// WithMaxBytes caps the size of a single document.
func WithMaxBytes(n int64) HTTPOption {
	return func(f *HTTPFetcher) { f.maxBytes = n }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) { f.userAgent = ua }
}

// NewHTTPFetcher validates baseURL and returns a fetcher for it.
func NewHTTPFetcher(baseURL string, opts ...HTTPOption) (*HTTPFetcher, error) {
	if err := entity.ValidateURL("dataset_base_url", baseURL); err != nil {
		return nil, err
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	f := &HTTPFetcher{
		base:      base,
		client:    &http.Client{Timeout: 15 * time.Second},
		retryCfg:  retry.DatasetFetchConfig(),
		maxBytes:  DefaultMaxDocumentBytes,
		userAgent: "einvoice-news/1.0",
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.breaker == nil {
		f.breaker = circuitbreaker.New(circuitbreaker.DatasetFetchConfig())
	}
	return f, nil
}

// Breaker exposes the circuit breaker for health reporting.
func (f *HTTPFetcher) Breaker() *circuitbreaker.CircuitBreaker {
	return f.breaker
}

// Fetch downloads the named document.
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	target := f.base.JoinPath(name).String()

	var body []byte
	err := retry.WithBackoff(ctx, f.retryCfg, func() error {
		b, err := circuitbreaker.Run(f.breaker, func() ([]byte, error) {
			return f.get(ctx, target)
		})
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("dataset document fetched",
		slog.String("document", name),
		slog.Int("bytes", len(body)))
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("document exceeds %d bytes", f.maxBytes)
	}
	return body, nil
}

// parseRetryAfter reads a delay-seconds Retry-After value. HTTP dates are ignored.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
