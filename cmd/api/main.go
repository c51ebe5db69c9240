package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"einvoice-news/internal/config"
	"einvoice-news/internal/infra/adapter/persistence/memory"
	pgRepo "einvoice-news/internal/infra/adapter/persistence/postgres"
	"einvoice-news/internal/infra/db"
	"einvoice-news/internal/observability/logging"
	cfgpkg "einvoice-news/internal/pkg/config"
	"einvoice-news/internal/repository"
	"einvoice-news/internal/resilience/circuitbreaker"

	_ "einvoice-news/docs" // swagger docs
)

// @title           eInvoice News Dashboard API
// @version         1.0
// @description     Filtered e-invoicing news from the published crawl datasets,
// @description     with an on-demand crawl refresh through the CI workflow.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load(logger, cfgpkg.NewConfigMetrics("dashboard"))
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Any("config", cfg))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing := initTracing(logger)
	defer shutdownTracing()

	store, err := initStorage(ctx, logger, cfg.Database)
	if err != nil {
		logger.Error("failed to initialise storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.close()

	app, err := setupApp(ctx, logger, cfg, store)
	if err != nil {
		logger.Error("failed to set up application", slog.Any("error", err))
		os.Exit(1)
	}

	runServer(ctx, logger, cfg, app)
}

// initTracing installs the SDK tracer provider so spans carry real trace ids
// that the tracing middleware echoes and the logs correlate. OTEL_SAMPLE_RATIO
// sets the sampling ratio for new traces.
func initTracing(logger *slog.Logger) func() {
	ratio := cfgpkg.LoadEnv("OTEL_SAMPLE_RATIO", 1.0,
		func(s string) (float64, error) { return strconv.ParseFloat(s, 64) },
		func(v float64) error {
			if v < 0 || v > 1 {
				return errors.New("must be between 0 and 1")
			}
			return nil
		})
	if ratio.FallbackApplied {
		logger.Warn(ratio.Warning)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio.Value))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			slog.Default().Error("tracer provider shutdown failed", slog.Any("error", err))
		}
	}
}

// storage bundles the client storage backend and what health checks need of it.
type storage struct {
	namespaces repository.StorageNamespaces
	db         *sql.DB
	pinger     *circuitbreaker.DBCircuitBreaker // nil for in-memory storage
	pg         *pgRepo.StorageNamespaces        // nil for in-memory storage
}

func (s storage) close() {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		slog.Default().Error("failed to close database", slog.Any("error", err))
	}
}

// initStorage opens PostgreSQL when DATABASE_URL is set and falls back to an
// in-memory store otherwise.
func initStorage(ctx context.Context, logger *slog.Logger, cfg config.DatabaseConfig) (storage, error) {
	if cfg.URL == "" {
		logger.Info("client storage: in memory")
		return storage{namespaces: memory.NewStore()}, nil
	}

	database, err := db.Open(ctx, cfg.URL)
	if err != nil {
		return storage{}, err
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		_ = database.Close()
		return storage{}, err
	}
	guarded := circuitbreaker.NewDBCircuitBreaker(database)
	pg := pgRepo.NewStorageNamespaces(guarded)
	logger.Info("client storage: postgres")
	return storage{namespaces: pg, db: database, pinger: guarded, pg: pg}, nil
}

// runServer serves until ctx is cancelled, then drains requests, stops the
// background jobs and flushes pending notifications.
func runServer(ctx context.Context, logger *slog.Logger, cfg *config.Config, app *app) {
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Server.Addr),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server...")
	case err := <-errCh:
		logger.Error("server failed", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	app.stop(shutdownCtx)
	logger.Info("server stopped")
}
