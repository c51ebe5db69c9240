package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"einvoice-news/internal/common/pagination"
	"einvoice-news/internal/config"
	hhttp "einvoice-news/internal/handler/http"
	hauth "einvoice-news/internal/handler/http/auth"
	hdash "einvoice-news/internal/handler/http/dashboard"
	"einvoice-news/internal/handler/http/middleware"
	hrefresh "einvoice-news/internal/handler/http/refresh"
	"einvoice-news/internal/handler/http/requestid"
	"einvoice-news/internal/infra/datasource"
	"einvoice-news/internal/infra/github"
	"einvoice-news/internal/infra/notifier"
	"einvoice-news/internal/infra/worker"
	"einvoice-news/internal/observability/tracing"
	authUC "einvoice-news/internal/usecase/auth"
	dashUC "einvoice-news/internal/usecase/dashboard"
	datasetUC "einvoice-news/internal/usecase/dataset"
	"einvoice-news/internal/usecase/notify"
	refreshUC "einvoice-news/internal/usecase/refresh"
)

const (
	// staleDatasetAge marks the dataset degraded in /health when the last
	// crawl is older.
	staleDatasetAge = 48 * time.Hour
	// profileRetention matches the profile cookie lifetime; storage rows not
	// written for longer belong to profiles no browser can present anymore.
	profileRetention = 365 * 24 * time.Hour
	maxRequestBody   = 1 << 20
)

// app is the wired HTTP handler plus the background work to stop on shutdown.
type app struct {
	handler    http.Handler
	schedulers []*worker.Scheduler
	notifier   *notify.Service
}

func (a *app) stop(ctx context.Context) {
	for _, s := range a.schedulers {
		if err := s.Stop(ctx); err != nil {
			slog.Default().Warn("scheduler stop timed out", slog.Any("error", err))
		}
	}
	if a.notifier != nil {
		if err := a.notifier.Shutdown(ctx); err != nil {
			slog.Default().Warn("notification shutdown timed out", slog.Any("error", err))
		}
	}
}

// setupApp builds the use cases, starts the background jobs and returns the
// HTTP handler with its middleware chain.
func setupApp(ctx context.Context, logger *slog.Logger, cfg *config.Config, store storage) (*app, error) {
	a := &app{}
	var breakers []hhttp.Breaker

	fetcher, err := newFetcher(cfg.Dataset)
	if err != nil {
		return nil, err
	}
	if hf, ok := fetcher.(*datasource.HTTPFetcher); ok {
		breakers = append(breakers, hf.Breaker())
	}

	loader := datasetUC.NewLoader(fetcher, datasetUC.WithLogger(logger))
	dash := dashUC.NewService(loader, dashUC.WithLogger(logger))
	if err := dash.Init(ctx); err != nil {
		// Keep serving: /ready stays 503 and the next scheduled reload retries.
		logger.Error("initial dataset load failed", slog.Any("error", err))
	}

	if err := a.startJobs(ctx, logger, cfg, dash, store); err != nil {
		return nil, err
	}

	var orch *refreshUC.Orchestrator
	if cfg.GitHub.Enabled() {
		client, err := github.NewClient(github.Config{
			BaseURL:  cfg.GitHub.APIURL,
			Owner:    cfg.GitHub.Owner,
			Repo:     cfg.GitHub.Repo,
			Workflow: cfg.GitHub.Workflow,
			Timeout:  cfg.GitHub.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("github client: %w", err)
		}
		breakers = append(breakers, client.Breaker())

		a.notifier = newNotifier(logger, cfg.Notify)
		orch = refreshUC.New(client, dash, refreshUC.Config{
			Ref:          cfg.GitHub.Ref,
			TriggerDelay: cfg.Refresh.TriggerDelay,
			PollInterval: cfg.Refresh.PollInterval,
			MaxAttempts:  cfg.Refresh.MaxAttempts,
			PublishDelay: cfg.Refresh.PublishDelay,
		}, refreshUC.WithNotifier(a.notifier), refreshUC.WithLogger(logger))
		logger.Info("refresh enabled",
			slog.String("repo", cfg.GitHub.Owner+"/"+cfg.GitHub.Repo),
			slog.String("workflow", cfg.GitHub.Workflow))
	} else {
		logger.Info("refresh disabled: github owner, repo and workflow not configured")
	}

	gate := authUC.NewGate(cfg.Auth.Password,
		authUC.WithTTL(cfg.Auth.SessionTTL),
		authUC.WithLogger(logger))

	loginLimiter := hhttp.NewRateLimiter(cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)
	loginLimiter.TrustProxyHeaders = cfg.Server.TrustProxyHeaders
	if err := a.schedule(logger, worker.Config{Name: "login_limiter_cleanup", Schedule: "@every 1m"},
		func(context.Context) error {
			loginLimiter.Cleanup(time.Now())
			return nil
		}); err != nil {
		return nil, err
	}

	health := &hhttp.HealthHandler{
		Dataset:       dash,
		Breakers:      breakers,
		Version:       cfg.Version,
		MaxDatasetAge: staleDatasetAge,
	}
	ready := &hhttp.ReadyHandler{Dataset: dash}
	if store.pinger != nil {
		health.DB = store.pinger
		health.Breakers = append(health.Breakers, store.pinger)
		ready.DB = store.pinger
	}

	mux := http.NewServeMux()
	mux.Handle("GET /health", health)
	mux.Handle("GET /ready", ready)
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	hauth.Register(mux, gate, loginLimiter.Limit, logger)
	protect := hauth.RequireSession(gate)
	hdash.Register(mux, hdash.Handler{
		Svc: dash,
		Pagination: pagination.Config{
			DefaultLimit: cfg.Pagination.DefaultLimit,
			MaxLimit:     cfg.Pagination.MaxLimit,
		},
		Logger: logger,
	}, protect)
	if orch != nil {
		hrefresh.Register(mux, hrefresh.Handler{Orch: orch, Logger: logger}, protect)
	}

	a.handler = applyMiddleware(logger, cfg.Server, store, mux)
	return a, nil
}

func newFetcher(cfg config.DatasetConfig) (datasetUC.Fetcher, error) {
	if cfg.Remote() {
		f, err := datasource.NewHTTPFetcher(cfg.BaseURL,
			datasource.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout}))
		if err != nil {
			return nil, fmt.Errorf("dataset fetcher: %w", err)
		}
		return f, nil
	}
	f, err := datasource.NewDirFetcher(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("dataset fetcher: %w", err)
	}
	return f, nil
}

// startJobs schedules the dataset reload, the optional directory watcher and
// the storage purge.
func (a *app) startJobs(ctx context.Context, logger *slog.Logger, cfg *config.Config, dash *dashUC.Service, store storage) error {
	reload := func(ctx context.Context) error {
		res, err := dash.Reload(ctx)
		if err != nil {
			return err
		}
		logger.Info("dataset reloaded", slog.Int("articles", res.New), slog.Int("delta", res.Delta))
		return nil
	}

	if cfg.Dataset.ReloadSchedule != "" {
		if err := a.schedule(logger, worker.Config{
			Name:     "dataset_reload",
			Schedule: cfg.Dataset.ReloadSchedule,
			Timezone: cfg.Dataset.Timezone,
			Timeout:  3 * cfg.Dataset.FetchTimeout,
		}, reload); err != nil {
			return err
		}
	} else {
		logger.Info("scheduled dataset reload disabled")
	}

	if cfg.Dataset.Watch && !cfg.Dataset.Remote() {
		w := datasource.NewWatcher(cfg.Dataset.Dir, datasetUC.Documents, func(ctx context.Context) {
			if err := reload(ctx); err != nil {
				logger.Error("dataset reload after change failed", slog.Any("error", err))
			}
		})
		w.SetLogger(logger)
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Error("dataset watcher stopped", slog.Any("error", err))
			}
		}()
	}

	if store.pg != nil {
		if err := a.schedule(logger, worker.Config{Name: "storage_purge", Schedule: "@daily"},
			func(ctx context.Context) error {
				n, err := store.pg.PurgeBefore(ctx, time.Now().Add(-profileRetention))
				if err != nil {
					return err
				}
				logger.Info("client storage purged", slog.Int64("rows", n))
				return nil
			}); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) schedule(logger *slog.Logger, cfg worker.Config, job worker.Job) error {
	s, err := worker.NewScheduler(cfg, job, worker.NewJobMetrics(nil, cfg.Name), logger)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Name, err)
	}
	s.Start()
	a.schedulers = append(a.schedulers, s)
	return nil
}

func newNotifier(logger *slog.Logger, cfg config.NotifyConfig) *notify.Service {
	var channels []notify.Channel
	if cfg.Slack.Enabled {
		channels = append(channels, notify.NewSlackChannel(notifier.SlackConfig{
			Enabled:    true,
			WebhookURL: cfg.Slack.WebhookURL,
			Timeout:    cfg.Timeout,
		}))
	}
	if cfg.Discord.Enabled {
		channels = append(channels, notify.NewDiscordChannel(notifier.DiscordConfig{
			Enabled:    true,
			WebhookURL: cfg.Discord.WebhookURL,
			Timeout:    cfg.Timeout,
		}))
	}
	logger.Info("notification service initialized",
		slog.Int("channels", len(channels)),
		slog.Int("max_concurrent", cfg.MaxConcurrent))
	return notify.NewService(channels, cfg.MaxConcurrent)
}

// applyMiddleware wraps the mux. Request id and tracing come first so every
// later log line carries both; the profile store is resolved last, right
// before routing.
func applyMiddleware(logger *slog.Logger, cfg config.ServerConfig, store storage, mux http.Handler) http.Handler {
	cors := middleware.DefaultCORSConfig(cfg.CORSOrigins)
	cors.Logger = logger
	if len(cfg.CORSOrigins) > 0 {
		logger.Info("CORS enabled", slog.Any("allowed_origins", cfg.CORSOrigins))
	}

	csp := middleware.DefaultCSPConfig()
	csp.ReportOnly = cfg.CSPReportOnly

	return hhttp.Chain(mux,
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.MetricsMiddleware,
		middleware.CORS(cors),
		middleware.CSP(csp),
		hhttp.InputValidation(),
		hhttp.LimitRequestBody(maxRequestBody),
		hauth.Profile(store.namespaces, cfg.SecureCookies),
	)
}
