package notify

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"einvoice-news/internal/domain/entity"

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const requestIDKey contextKey = "request_id"

const (
	circuitBreakerThreshold = 5                // consecutive failures before a channel is paused
	circuitBreakerTimeout   = 5 * time.Minute  // how long a paused channel stays paused
	workerPoolTimeout       = 5 * time.Second  // wait for a free worker slot
	notificationTimeout     = 30 * time.Second // per-delivery deadline
)

// ChannelHealthStatus is the health of one channel.
type ChannelHealthStatus struct {
	Name               string
	Enabled            bool
	CircuitBreakerOpen bool
	DisabledUntil      *time.Time
}

// Service dispatches refresh reports to every enabled channel without
// blocking the caller.
type Service struct {
	channels       []Channel
	workerPool     chan struct{}
	channelHealth  map[string]*channelHealth
	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
	now            func() time.Time
}

type channelHealth struct {
	mu                  sync.Mutex
	consecutiveFailures int
	disabledUntil       time.Time
}

// NewService creates a service over channels with at most maxConcurrent
// deliveries in flight.
func NewService(channels []Channel, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	s := &Service{
		channels:       channels,
		workerPool:     make(chan struct{}, maxConcurrent),
		channelHealth:  make(map[string]*channelHealth, len(channels)),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
		now:            time.Now,
	}
	enabled := 0
	for _, ch := range channels {
		s.channelHealth[ch.Name()] = &channelHealth{}
		if ch.IsEnabled() {
			enabled++
		}
	}
	SetChannelsEnabled(enabled)
	return s
}

// NotifyRefresh dispatches report to every enabled channel in the background.
// It always returns nil; delivery failures are logged and counted.
func (s *Service) NotifyRefresh(ctx context.Context, report entity.RefreshReport) error {
	if s.shutdownCtx.Err() != nil {
		for _, ch := range s.channels {
			if ch.IsEnabled() {
				RecordDropped(ch.Name(), "shutdown")
			}
		}
		return nil
	}

	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		requestID = uuid.New().String()
	}

	for _, ch := range s.channels {
		if !ch.IsEnabled() {
			continue
		}
		s.wg.Add(1)
		go s.notifyChannel(requestID, ch, report)
	}
	return nil
}

func (s *Service) notifyChannel(requestID string, channel Channel, report entity.RefreshReport) {
	defer s.wg.Done()

	activeNotifications.Inc()
	defer activeNotifications.Dec()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in notification channel",
				slog.String("request_id", requestID),
				slog.String("channel", channel.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	timer := time.NewTimer(workerPoolTimeout)
	defer timer.Stop()
	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-timer.C:
		slog.Warn("Notification dropped: worker pool full",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()))
		RecordDropped(channel.Name(), "pool_full")
		return
	case <-s.shutdownCtx.Done():
		RecordDropped(channel.Name(), "shutdown")
		return
	}

	health := s.channelHealth[channel.Name()]
	if until, open := health.open(s.now()); open {
		slog.Warn("Channel temporarily disabled due to circuit breaker",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.Time("disabled_until", until))
		RecordDropped(channel.Name(), "circuit_open")
		return
	}

	ctx, cancel := context.WithTimeout(s.shutdownCtx, notificationTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	start := s.now()
	RecordDispatch(channel.Name())
	err := channel.Send(ctx, report)
	duration := s.now().Sub(start)

	if health.record(err, s.now()) {
		slog.Error("Circuit breaker opened for channel",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()))
		RecordCircuitBreakerOpen(channel.Name())
	}

	if err != nil {
		RecordFailure(channel.Name(), duration)
		slog.Warn("Channel notification failed",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.String("outcome", report.Outcome),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
		return
	}
	RecordSuccess(channel.Name(), duration)
	slog.Info("Channel notification sent successfully",
		slog.String("request_id", requestID),
		slog.String("channel", channel.Name()),
		slog.String("outcome", report.Outcome),
		slog.Duration("send_duration", duration))
}

func (h *channelHealth) open(now time.Time) (time.Time, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disabledUntil, now.Before(h.disabledUntil)
}

// record updates the failure streak and reports whether this failure paused
// the channel. Disabled-channel errors do not count.
func (h *channelHealth) record(err error, now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil || errors.Is(err, ErrChannelDisabled) {
		h.consecutiveFailures = 0
		return false
	}
	h.consecutiveFailures++
	if h.consecutiveFailures < circuitBreakerThreshold {
		return false
	}
	h.consecutiveFailures = 0
	h.disabledUntil = now.Add(circuitBreakerTimeout)
	return true
}

// ChannelHealth returns the health of every channel.
func (s *Service) ChannelHealth() []ChannelHealthStatus {
	now := s.now()
	statuses := make([]ChannelHealthStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		st := ChannelHealthStatus{Name: ch.Name(), Enabled: ch.IsEnabled()}
		if until, open := s.channelHealth[ch.Name()].open(now); open {
			st.CircuitBreakerOpen = true
			st.DisabledUntil = &until
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// Shutdown cancels in-flight deliveries and waits for them to return, or for
// ctx to expire.
func (s *Service) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down notification service")
	s.shutdownCancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Notification service shutdown complete")
		return nil
	case <-ctx.Done():
		slog.Warn("Notification service shutdown timeout")
		return ctx.Err()
	}
}
