// Package refresh drives a remote crawl: it dispatches the crawl workflow,
// polls the run until it completes, then reloads the dashboard dataset.
//
// The run goes through idle → triggering → waiting → polling → done|failed.
// Only one run is in flight at a time; a request made while a run is active
// is dropped, not queued.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"einvoice-news/internal/domain/entity"
	"einvoice-news/internal/observability/metrics"
	"einvoice-news/internal/observability/tracing"
	"einvoice-news/internal/repository"
	"einvoice-news/internal/resilience/retry"
	"einvoice-news/internal/usecase/dashboard"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// State is a step of the refresh state machine.
type State string

// Refresh states.
const (
	StateIdle       State = "idle"
	StateTriggering State = "triggering"
	StateWaiting    State = "waiting"
	StatePolling    State = "polling"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// WorkflowClient talks to the CI host.
type WorkflowClient interface {
	Dispatch(ctx context.Context, token, ref string) error
	LatestRun(ctx context.Context, token string) (entity.WorkflowRun, error)
}

// Prompt asks the user for a credential. Returning "" or ErrCredentialDeclined
// declines.
type Prompt interface {
	Credential(ctx context.Context) (string, error)
}

// PromptFunc adapts a function to Prompt.
type PromptFunc func(ctx context.Context) (string, error)

// Credential calls f.
func (f PromptFunc) Credential(ctx context.Context) (string, error) { return f(ctx) }

// Reloader reloads the dashboard dataset.
type Reloader interface {
	Reload(ctx context.Context) (dashboard.ReloadResult, error)
}

// Sleeper waits for d or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f.
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// Notifier receives a report for every run that reached done or failed.
type Notifier interface {
	NotifyRefresh(ctx context.Context, report entity.RefreshReport) error
}

// Config holds the timing of a run.
type Config struct {
	Ref          string
	TriggerDelay time.Duration
	PollInterval time.Duration
	MaxAttempts  int
	PublishDelay time.Duration
}

// DefaultConfig returns the production timings: 3s before the first poll, up
// to 60 polls 5s apart, and 2s for the published files to propagate.
func DefaultConfig() Config {
	return Config{
		Ref:          "main",
		TriggerDelay: 3 * time.Second,
		PollInterval: 5 * time.Second,
		MaxAttempts:  60,
		PublishDelay: 2 * time.Second,
	}
}

// Status is a snapshot of the current or last run.
type Status struct {
	State       State     `json:"state"`
	Refreshing  bool      `json:"refreshing"`
	RunStatus   string    `json:"run_status,omitempty"`
	RunURL      string    `json:"run_url,omitempty"`
	Attempt     int       `json:"attempt"`
	MaxAttempts int       `json:"max_attempts"`
	Message     string    `json:"message"`
	Delta       *int      `json:"delta,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Outcome is the result of Run.
type Outcome struct {
	// Skipped is set when another run was already in flight.
	Skipped  bool
	State    State
	Run      entity.WorkflowRun
	Attempts int
	Reload   dashboard.ReloadResult
}

// Orchestrator runs refreshes. It is safe for concurrent use.
type Orchestrator struct {
	client   WorkflowClient
	reloader Reloader
	cfg      Config
	sleeper  Sleeper
	notifier Notifier
	now      func() time.Time
	logger   *slog.Logger

	refreshing atomic.Bool

	mu     sync.RWMutex
	status Status
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSleeper overrides the timer-based sleeper.
func WithSleeper(s Sleeper) Option {
	return func(o *Orchestrator) { o.sleeper = s }
}

// WithNotifier sets the outcome notifier.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New returns an idle orchestrator. Zero fields of cfg take their defaults.
func New(client WorkflowClient, reloader Reloader, cfg Config, opts ...Option) *Orchestrator {
	def := DefaultConfig()
	if cfg.Ref == "" {
		cfg.Ref = def.Ref
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}

	o := &Orchestrator{
		client:   client,
		reloader: reloader,
		cfg:      cfg,
		sleeper:  SleeperFunc(sleep),
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.status = Status{State: StateIdle, MaxAttempts: cfg.MaxAttempts, UpdatedAt: o.now()}
	return o
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Config returns the effective configuration.
func (o *Orchestrator) Config() Config {
	return o.cfg
}

// Refreshing reports whether a run is in flight.
func (o *Orchestrator) Refreshing() bool {
	return o.refreshing.Load()
}

// Status returns a snapshot of the current or last run.
func (o *Orchestrator) Status() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s := o.status
	s.Refreshing = o.refreshing.Load()
	return s
}

// Run performs a refresh and blocks until it finishes. The credential is read
// from store, or requested once from prompt when absent; a supplied credential
// is saved to store.
func (o *Orchestrator) Run(ctx context.Context, store repository.StorageRepository, prompt Prompt) (Outcome, error) {
	if !o.refreshing.CompareAndSwap(false, true) {
		return o.skip(ctx), nil
	}
	defer o.refreshing.Store(false)

	token, err := o.credential(ctx, store, prompt)
	if err != nil {
		o.abort(ctx, err)
		return Outcome{State: StateIdle}, err
	}
	return o.execute(ctx, store, token)
}

// Start resolves the credential synchronously and performs the rest of the
// refresh in the background. started is false when a run was already in
// flight. ctx must outlive the caller's request.
func (o *Orchestrator) Start(ctx context.Context, store repository.StorageRepository, prompt Prompt) (started bool, err error) {
	if !o.refreshing.CompareAndSwap(false, true) {
		o.skip(ctx)
		return false, nil
	}

	token, err := o.credential(ctx, store, prompt)
	if err != nil {
		o.abort(ctx, err)
		o.refreshing.Store(false)
		return false, err
	}

	go func() {
		defer o.refreshing.Store(false)
		defer func() {
			if r := recover(); r != nil {
				o.logger.ErrorContext(ctx, "refresh panicked", slog.Any("panic", r))
				o.setStatus(func(s *Status) {
					s.State = StateFailed
					s.Message = "Refresh failed: internal error"
				})
			}
		}()
		_, _ = o.execute(ctx, store, token)
	}()
	return true, nil
}

func (o *Orchestrator) skip(ctx context.Context) Outcome {
	metrics.RecordRefreshOutcome("skipped", 0, 0)
	o.logger.InfoContext(ctx, "refresh already in progress, request dropped")
	return Outcome{Skipped: true, State: o.Status().State}
}

// abort returns to idle when no credential could be obtained. A declined or
// failed prompt cancels the refresh; a storage error fails it.
func (o *Orchestrator) abort(ctx context.Context, err error) {
	var credErr *CredentialError
	var msg string
	switch {
	case errors.Is(err, ErrCredentialDeclined):
		msg = "Refresh cancelled: no credential"
	case errors.As(err, &credErr):
		msg = "Refresh cancelled: " + err.Error()
	default:
		metrics.RecordRefreshOutcome("error", 0, 0)
		o.logger.ErrorContext(ctx, "refresh failed before dispatch", slog.Any("error", err))
		o.setStatus(func(s *Status) {
			*s = Status{State: StateIdle, MaxAttempts: o.cfg.MaxAttempts, Message: "Refresh failed: credential storage unavailable"}
		})
		return
	}
	metrics.RecordRefreshOutcome("aborted", 0, 0)
	o.logger.InfoContext(ctx, "refresh aborted", slog.Any("error", err))
	o.setStatus(func(s *Status) {
		*s = Status{State: StateIdle, MaxAttempts: o.cfg.MaxAttempts, Message: msg}
	})
}

func (o *Orchestrator) credential(ctx context.Context, store repository.StorageRepository, prompt Prompt) (string, error) {
	token, ok, err := store.Get(ctx, repository.KeyGitHubToken)
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	if ok && token != "" {
		return token, nil
	}
	if prompt == nil {
		return "", &CredentialError{Err: ErrCredentialDeclined}
	}

	token, err = prompt.Credential(ctx)
	if err != nil {
		return "", &CredentialError{Err: err}
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", &CredentialError{Err: ErrCredentialDeclined}
	}
	if err := store.Set(ctx, repository.KeyGitHubToken, token); err != nil {
		return "", fmt.Errorf("save credential: %w", err)
	}
	return token, nil
}

func (o *Orchestrator) execute(ctx context.Context, store repository.StorageRepository, token string) (out Outcome, err error) {
	start := o.now()
	ctx, span := tracing.GetTracer().Start(ctx, "refresh.Run",
		trace.WithAttributes(attribute.String("refresh.ref", o.cfg.Ref)))
	defer span.End()
	defer func() { o.finish(ctx, span, start, out, err) }()

	o.setStatus(func(s *Status) {
		*s = Status{State: StateTriggering, MaxAttempts: o.cfg.MaxAttempts, Message: "Triggering crawl workflow"}
	})
	dispatchedAt := o.now()
	if err := o.client.Dispatch(ctx, token, o.cfg.Ref); err != nil {
		return o.fail(ctx, store, out, triggerError(err))
	}

	o.setStatus(func(s *Status) {
		s.State = StateWaiting
		s.Message = "Waiting for the workflow run to start"
	})
	if err := o.sleeper.Sleep(ctx, o.cfg.TriggerDelay); err != nil {
		return o.fail(ctx, store, out, err)
	}

	run, attempts, err := o.poll(ctx, token, dispatchedAt)
	out.Run, out.Attempts = run, attempts
	if err != nil {
		return o.fail(ctx, store, out, err)
	}

	o.setStatus(func(s *Status) { s.Message = "Crawl finished, loading new data" })
	if err := o.sleeper.Sleep(ctx, o.cfg.PublishDelay); err != nil {
		return o.fail(ctx, store, out, err)
	}
	res, err := o.reloader.Reload(ctx)
	if err != nil {
		return o.fail(ctx, store, out, fmt.Errorf("reload dataset: %w", err))
	}

	out.State = StateDone
	out.Reload = res
	metrics.RecordRefreshDelta(res.Delta)
	o.setStatus(func(s *Status) {
		s.State = StateDone
		s.Delta = &res.Delta
		s.Message = doneMessage(res.Delta)
	})
	return out, nil
}

// poll checks the latest run until it completes or the attempt budget is
// spent. Transport errors consume an attempt. Runs created well before the
// dispatch belong to an earlier refresh and are treated as not yet started.
func (o *Orchestrator) poll(ctx context.Context, token string, dispatchedAt time.Time) (entity.WorkflowRun, int, error) {
	o.setStatus(func(s *Status) {
		s.State = StatePolling
		s.Message = "Waiting for the crawl to finish"
	})

	var last entity.WorkflowRun
	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := o.sleeper.Sleep(ctx, o.cfg.PollInterval); err != nil {
				return last, attempt - 1, err
			}
		}

		run, err := o.client.LatestRun(ctx, token)
		if err != nil {
			if code, ok := rejected(err); ok {
				return last, attempt, &CredentialError{Rejected: true, StatusCode: code, Err: err}
			}
			if ctx.Err() != nil {
				return last, attempt, ctx.Err()
			}
			o.logger.WarnContext(ctx, "workflow status check failed",
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			o.setStatus(func(s *Status) {
				s.Attempt = attempt
				s.Message = "Status check failed, retrying"
			})
			continue
		}
		if stale(run, dispatchedAt) {
			run = entity.WorkflowRun{}
		}
		last = run

		o.setStatus(func(s *Status) {
			s.Attempt = attempt
			s.RunStatus = run.Status
			s.RunURL = run.HTMLURL
			s.Message = pollMessage(run, attempt, o.cfg.MaxAttempts)
		})
		o.logger.DebugContext(ctx, "workflow status",
			slog.Int("attempt", attempt),
			slog.String("status", run.Status),
			slog.String("conclusion", run.Conclusion))

		if run.Completed() {
			if run.Succeeded() {
				return run, attempt, nil
			}
			return run, attempt, &CrawlFailedError{Conclusion: run.Conclusion, RunURL: run.HTMLURL}
		}
	}
	return last, o.cfg.MaxAttempts, &PollTimeoutError{Attempts: o.cfg.MaxAttempts}
}

// stale reports whether run predates the dispatch by more than the tolerated
// clock skew between this host and the CI host.
func stale(run entity.WorkflowRun, dispatchedAt time.Time) bool {
	const skew = time.Minute
	return !run.CreatedAt.IsZero() && run.CreatedAt.Before(dispatchedAt.Add(-skew))
}

func (o *Orchestrator) fail(ctx context.Context, store repository.StorageRepository, out Outcome, err error) (Outcome, error) {
	var credErr *CredentialError
	if errors.As(err, &credErr) && credErr.Rejected {
		if delErr := store.Delete(ctx, repository.KeyGitHubToken); delErr != nil {
			o.logger.WarnContext(ctx, "failed to evict rejected credential", slog.Any("error", delErr))
		}
	}
	out.State = StateFailed
	o.setStatus(func(s *Status) {
		s.State = StateFailed
		s.Message = failMessage(err)
	})
	return out, err
}

func (o *Orchestrator) finish(ctx context.Context, span trace.Span, start time.Time, out Outcome, err error) {
	outcome := string(out.State)
	if out.State != StateDone {
		outcome = string(StateFailed)
		if err == nil {
			err = errors.New("refresh interrupted")
		}
	}
	duration := o.now().Sub(start)
	metrics.RecordRefreshOutcome(outcome, out.Attempts, duration)

	span.SetAttributes(
		attribute.String("refresh.outcome", outcome),
		attribute.Int("refresh.attempts", out.Attempts),
		attribute.Int("refresh.delta", out.Reload.Delta),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.WarnContext(ctx, "refresh failed",
			slog.Int("attempts", out.Attempts),
			slog.Duration("duration", duration),
			slog.Any("error", err))
	} else {
		o.logger.InfoContext(ctx, "refresh completed",
			slog.Int("attempts", out.Attempts),
			slog.Int("delta", out.Reload.Delta),
			slog.Duration("duration", duration))
	}

	if o.notifier == nil {
		return
	}
	report := entity.RefreshReport{
		Outcome:    outcome,
		Conclusion: out.Run.Conclusion,
		RunURL:     out.Run.HTMLURL,
		Attempts:   out.Attempts,
		Delta:      out.Reload.Delta,
		Message:    o.Status().Message,
		Duration:   duration,
	}
	if nerr := o.notifier.NotifyRefresh(context.WithoutCancel(ctx), report); nerr != nil {
		o.logger.WarnContext(ctx, "refresh notification failed", slog.Any("error", nerr))
	}
}

func (o *Orchestrator) setStatus(update func(*Status)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	update(&o.status)
	o.status.UpdatedAt = o.now()
}

// triggerError classifies a dispatch failure.
func triggerError(err error) error {
	if code, ok := rejected(err); ok {
		return &CredentialError{Rejected: true, StatusCode: code, Err: err}
	}
	var httpErr *retry.HTTPError
	if errors.As(err, &httpErr) {
		return &TriggerError{StatusCode: httpErr.StatusCode, Message: httpErr.Message}
	}
	return fmt.Errorf("trigger workflow: %w", err)
}

func rejected(err error) (int, bool) {
	var httpErr *retry.HTTPError
	if errors.As(err, &httpErr) &&
		(httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
		return httpErr.StatusCode, true
	}
	return 0, false
}

func pollMessage(run entity.WorkflowRun, attempt, limit int) string {
	status := run.Status
	if status == "" {
		status = "pending"
	}
	return fmt.Sprintf("Crawl %s (check %d/%d)", strings.ReplaceAll(status, "_", " "), attempt, limit)
}

func doneMessage(delta int) string {
	switch {
	case delta > 0:
		return fmt.Sprintf("Refresh complete: %d new articles", delta)
	case delta < 0:
		return fmt.Sprintf("Refresh complete: %d fewer articles", -delta)
	default:
		return "Refresh complete: no new articles"
	}
}

func failMessage(err error) string {
	var (
		credErr    *CredentialError
		triggerErr *TriggerError
		timeoutErr *PollTimeoutError
		crawlErr   *CrawlFailedError
	)
	switch {
	case errors.As(err, &credErr):
		return "Refresh failed: the GitHub token was rejected and has been cleared"
	case errors.As(err, &triggerErr):
		return fmt.Sprintf("Refresh failed: could not trigger the crawl (HTTP %d)", triggerErr.StatusCode)
	case errors.As(err, &timeoutErr):
		return "Refresh failed: the crawl did not finish in time"
	case errors.As(err, &crawlErr):
		return fmt.Sprintf("Refresh failed: the crawl finished with %q", crawlErr.Conclusion)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Refresh cancelled"
	default:
		return "Refresh failed: " + err.Error()
	}
}
