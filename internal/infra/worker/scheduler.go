// Package worker runs background jobs on a cron schedule. The dashboard uses
// it to reload the published dataset periodically.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one unit of scheduled work. It must honour ctx.
type Job func(ctx context.Context) error

// ErrAlreadyRunning is returned by RunOnce while a previous run is active.
var ErrAlreadyRunning = errors.New("job already running")

// Config describes when and how long a job runs.
type Config struct {
	Name     string
	Schedule string // five-field cron expression or descriptor such as "@hourly"
	Timezone string // IANA name, "" means UTC
	Timeout  time.Duration
}

// Scheduler runs a Job on its schedule. Overlapping runs are skipped.
type Scheduler struct {
	cfg     Config
	job     Job
	metrics *JobMetrics
	logger  *slog.Logger
	cron    *cron.Cron

	mu      sync.Mutex
	running bool
	base    context.Context
	cancel  context.CancelFunc
}

// NewScheduler validates cfg and returns a stopped scheduler. metrics may be nil.
func NewScheduler(cfg Config, job Job, metrics *JobMetrics, logger *slog.Logger) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("job is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	s := &Scheduler{cfg: cfg, job: job, metrics: metrics, logger: logger.With(slog.String("job", cfg.Name))}
	s.base, s.cancel = context.WithCancel(context.Background())

	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
		cron.WithLogger(cronLogger{s.logger}),
	)
	if _, err := s.cron.AddFunc(cfg.Schedule, func() { _ = s.RunOnce(s.base) }); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}
	return s, nil
}

// Start begins firing the job on schedule.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started",
		slog.String("schedule", s.cfg.Schedule),
		slog.String("timezone", s.cfg.Timezone))
}

// Stop stops the schedule, cancels a running job and waits for it to return
// or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the next scheduled fire time, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunOnce runs the job now, outside the schedule. It returns
// ErrAlreadyRunning without running when a run is active.
func (s *Scheduler) RunOnce(ctx context.Context) (err error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.record("skipped")
		s.logger.Info("job still running, run skipped")
		return ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	s.record("started")
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
		if s.metrics != nil {
			s.metrics.RecordDuration(time.Since(start).Seconds())
		}
		if err != nil {
			s.record("failure")
			s.logger.Error("job failed", slog.Any("error", err), slog.Duration("duration", time.Since(start)))
			return
		}
		s.record("success")
		if s.metrics != nil {
			s.metrics.RecordLastSuccess()
		}
		s.logger.Info("job completed", slog.Duration("duration", time.Since(start)))
	}()

	return s.job(ctx)
}

func (s *Scheduler) record(status string) {
	if s.metrics != nil {
		s.metrics.RecordRun(status)
	}
}

// cronLogger routes the cron library's messages to slog.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
