// Package github is a minimal client for the two GitHub Actions endpoints the
// refresh flow needs: dispatching the crawl workflow and reading its latest run.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"einvoice-news/internal/domain/entity"
	"einvoice-news/internal/resilience/circuitbreaker"
	"einvoice-news/internal/resilience/retry"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

const (
	apiVersion      = "2022-11-28"
	acceptHeader    = "application/vnd.github+json"
	maxErrorBodyLen = 4096
)

var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Config identifies the workflow to drive.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL  string
	Owner    string
	Repo     string
	Workflow string // file name such as "crawl.yml" or a numeric id
	Timeout  time.Duration
}

// Client calls the GitHub Actions API. Outgoing calls share one rate limiter;
// run status reads also go through a circuit breaker.
type Client struct {
	base       *url.URL
	owner      string
	repo       string
	workflow   string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithLimiter replaces the default 1 req/s limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(cl *Client) { cl.limiter = l }
}

// WithBreaker replaces the breaker built from circuitbreaker.WorkflowAPIConfig.
func WithBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(cl *Client) { cl.breaker = cb }
}

// NewClient validates cfg and returns a client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if err := entity.ValidateURL("github_api_url", cfg.BaseURL); err != nil {
		return nil, err
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse github api url: %w", err)
	}
	for field, v := range map[string]string{"github_owner": cfg.Owner, "github_repo": cfg.Repo, "github_workflow": cfg.Workflow} {
		if !segmentPattern.MatchString(v) {
			return nil, &entity.ValidationError{Field: field, Message: "must be a non-empty name of letters, digits, '.', '_' or '-'"}
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		base:       base,
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		workflow:   cfg.Workflow,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(1), 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = circuitbreaker.New(circuitbreaker.WorkflowAPIConfig())
	}
	return c, nil
}

// Breaker exposes the circuit breaker for health reporting.
func (c *Client) Breaker() *circuitbreaker.CircuitBreaker {
	return c.breaker
}

func (c *Client) workflowURL(elem ...string) *url.URL {
	return c.base.JoinPath(append([]string{"repos", c.owner, c.repo, "actions", "workflows", c.workflow}, elem...)...)
}

// Dispatch triggers a workflow_dispatch run on ref. Any non-2xx response is
// returned as *retry.HTTPError so callers can inspect the status code.
func (c *Client) Dispatch(ctx context.Context, token, ref string) error {
	body, err := json.Marshal(map[string]string{"ref": ref})
	if err != nil {
		return fmt.Errorf("marshal dispatch payload: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.workflowURL("dispatches").String(), token, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return err
	}
	slog.InfoContext(ctx, "workflow dispatched",
		slog.String("repo", c.owner+"/"+c.repo),
		slog.String("workflow", c.workflow),
		slog.String("ref", ref))
	return nil
}

type runsResponse struct {
	TotalCount   int                  `json:"total_count"`
	WorkflowRuns []entity.WorkflowRun `json:"workflow_runs"`
}

// LatestRun returns the most recent run of the workflow. A workflow that has
// never run yields a zero WorkflowRun.
func (c *Client) LatestRun(ctx context.Context, token string) (entity.WorkflowRun, error) {
	return circuitbreaker.Run(c.breaker, func() (entity.WorkflowRun, error) {
		u := c.workflowURL("runs")
		u.RawQuery = url.Values{"per_page": {"1"}}.Encode()

		resp, err := c.do(ctx, http.MethodGet, u.String(), token, nil)
		if err != nil {
			return entity.WorkflowRun{}, err
		}
		defer func() { _ = resp.Body.Close() }()

		if err := checkStatus(resp); err != nil {
			return entity.WorkflowRun{}, err
		}

		var runs runsResponse
		if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
			return entity.WorkflowRun{}, fmt.Errorf("decode workflow runs: %w", err)
		}
		if len(runs.WorkflowRuns) == 0 {
			return entity.WorkflowRun{}, nil
		}
		return runs.WorkflowRuns[0], nil
	})
}

func (c *Client) do(ctx context.Context, method, target, token string, body []byte) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	return resp, nil
}

// checkStatus converts a non-2xx response into *retry.HTTPError carrying the
// API's message field when one is present.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))

	msg := http.StatusText(resp.StatusCode)
	var apiErr struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
		msg = apiErr.Message
	}
	return &retry.HTTPError{StatusCode: resp.StatusCode, Message: msg}
}
