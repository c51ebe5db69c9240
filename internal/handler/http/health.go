// Package http provides the HTTP middleware and operational endpoints of the
// dashboard API: health and readiness probes, Prometheus metrics, request
// logging, panic recovery and rate limiting.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"einvoice-news/internal/domain/entity"
	"einvoice-news/internal/handler/http/respond"

	"github.com/sony/gobreaker"
)

const (
	statusHealthy       = "healthy"
	statusDegraded      = "degraded"
	statusUnhealthy     = "unhealthy"
	statusNotConfigured = "not_configured"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// DatasetStatus exposes the currently served dataset.
type DatasetStatus interface {
	Dataset() *entity.Dataset
	Loading() bool
}

// Pinger is satisfied by *sql.DB and the database circuit breaker.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Breaker reports the state of a circuit breaker.
type Breaker interface {
	Name() string
	State() gobreaker.State
}

// HealthHandler reports the dataset, storage and circuit breaker status.
// Only a missing dataset or a failing database makes the service unhealthy;
// stale data and open breakers are reported as degraded.
type HealthHandler struct {
	Dataset  DatasetStatus
	DB       Pinger // nil when storage is in memory
	Breakers []Breaker
	Version  string

	// MaxDatasetAge marks the dataset degraded when its lastUpdated is older. Zero disables.
	MaxDatasetAge time.Duration
	Now           func() time.Time
}

// ServeHTTP returns 200 when healthy or degraded, 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	checks := map[string]CheckStatus{
		"dataset":  h.checkDataset(now()),
		"database": h.checkDatabase(ctx),
	}
	if len(h.Breakers) > 0 {
		checks["circuit_breakers"] = h.checkBreakers()
	}

	status := statusHealthy
	statusCode := http.StatusOK
	for _, c := range checks {
		if c.Status == statusUnhealthy {
			status = statusUnhealthy
			statusCode = http.StatusServiceUnavailable
			break
		}
		if c.Status == statusDegraded {
			status = statusDegraded
		}
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, statusCode, HealthResponse{
		Status:    status,
		Timestamp: now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkDataset(now time.Time) CheckStatus {
	if h.Dataset == nil {
		return CheckStatus{Status: statusUnhealthy, Message: "not configured"}
	}
	ds := h.Dataset.Dataset()
	if ds == nil {
		msg := "not loaded"
		if h.Dataset.Loading() {
			msg = "loading"
		}
		return CheckStatus{Status: statusUnhealthy, Message: msg}
	}

	details := map[string]any{
		"articles":     ds.ArticleCount(),
		"crawl_status": ds.News.CrawlStatus,
		"loaded_at":    ds.LoadedAt.UTC().Format(time.RFC3339),
		"loading":      h.Dataset.Loading(),
	}
	if !ds.News.LastUpdated.IsZero() {
		details["last_updated"] = ds.News.LastUpdated.UTC().Format(time.RFC3339)
		if h.MaxDatasetAge > 0 && now.Sub(ds.News.LastUpdated.Time) > h.MaxDatasetAge {
			return CheckStatus{Status: statusDegraded, Message: "dataset is stale", Details: details}
		}
	}
	return CheckStatus{Status: statusHealthy, Details: details}
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if h.DB == nil {
		return CheckStatus{Status: statusNotConfigured, Message: "in-memory storage"}
	}
	if err := h.DB.PingContext(ctx); err != nil {
		slog.Default().Warn("health: database ping failed", slog.String("error", respond.SanitizeError(err)))
		return CheckStatus{Status: statusUnhealthy, Message: "ping failed"}
	}
	return CheckStatus{Status: statusHealthy}
}

func (h *HealthHandler) checkBreakers() CheckStatus {
	details := make(map[string]any, len(h.Breakers))
	status := statusHealthy
	for _, b := range h.Breakers {
		state := b.State()
		details[b.Name()] = state.String()
		if state != gobreaker.StateClosed {
			status = statusDegraded
		}
	}
	return CheckStatus{Status: status, Details: details}
}

// ReadyHandler answers readiness probes: ready once a dataset is loaded and
// the database, when configured, answers a ping.
type ReadyHandler struct {
	Dataset DatasetStatus
	DB      Pinger
}

// ServeHTTP returns 200 "ready" or 503 with the reason.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.Dataset == nil || h.Dataset.Dataset() == nil {
		http.Error(w, "dataset not loaded", http.StatusServiceUnavailable)
		return
	}
	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			http.Error(w, "database not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ready")); err != nil {
		slog.Default().Debug("ready: failed to write response", slog.Any("error", err))
	}
}

// LiveHandler answers liveness probes and always returns 200.
type LiveHandler struct{}

// ServeHTTP writes "alive".
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("alive")); err != nil {
		slog.Default().Debug("alive: failed to write response", slog.Any("error", err))
	}
}
