// Package config assembles the dashboard service configuration from defaults,
// an optional YAML file and environment variables, in that order of
// precedence (environment wins).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"einvoice-news/internal/domain/entity"
	cfgpkg "einvoice-news/internal/pkg/config"
)

// FileEnv names the variable holding the optional YAML overlay path.
const FileEnv = "DASHBOARD_CONFIG_FILE"

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	Dataset    DatasetConfig    `yaml:"dataset"`
	GitHub     GitHubConfig     `yaml:"github"`
	Refresh    RefreshConfig    `yaml:"refresh"`
	Database   DatabaseConfig   `yaml:"database"`
	Notify     NotifyConfig     `yaml:"notify"`
	Pagination PaginationConfig `yaml:"pagination"`
	Version    string           `yaml:"version"`
}

// ServerConfig configures the HTTP listener and browser-facing middleware.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	TrustProxyHeaders bool          `yaml:"trust_proxy_headers"`
	CORSOrigins       []string      `yaml:"cors_allowed_origins"`
	CSPReportOnly     bool          `yaml:"csp_report_only"`
	SecureCookies     bool          `yaml:"secure_cookies"`
}

// AuthConfig configures the login gate.
type AuthConfig struct {
	Password        string        `yaml:"password"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	LoginRateLimit  int           `yaml:"login_rate_limit"`
	LoginRateWindow time.Duration `yaml:"login_rate_window"`
}

// DatasetConfig says where the published documents live. BaseURL wins over
// Dir when both are set.
type DatasetConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Dir            string        `yaml:"dir"`
	ReloadSchedule string        `yaml:"reload_schedule"` // empty disables scheduled reloads
	Timezone       string        `yaml:"timezone"`
	Watch          bool          `yaml:"watch"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
}

// Remote reports whether documents are fetched over HTTP.
func (d DatasetConfig) Remote() bool {
	return d.BaseURL != ""
}

// GitHubConfig identifies the crawl workflow.
type GitHubConfig struct {
	APIURL   string        `yaml:"api_url"`
	Owner    string        `yaml:"owner"`
	Repo     string        `yaml:"repo"`
	Workflow string        `yaml:"workflow"`
	Ref      string        `yaml:"ref"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Enabled reports whether enough is configured to trigger the workflow.
func (g GitHubConfig) Enabled() bool {
	return g.Owner != "" && g.Repo != "" && g.Workflow != ""
}

// RefreshConfig tunes the refresh orchestrator.
type RefreshConfig struct {
	TriggerDelay time.Duration `yaml:"trigger_delay"`
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxAttempts  int           `yaml:"max_attempts"`
	PublishDelay time.Duration `yaml:"publish_delay"`
}

// DatabaseConfig selects PostgreSQL storage when URL is set.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// NotifyConfig configures refresh outcome notifications.
type NotifyConfig struct {
	MaxConcurrent int           `yaml:"max_concurrent"`
	Timeout       time.Duration `yaml:"timeout"`
	Slack         WebhookConfig `yaml:"slack"`
	Discord       WebhookConfig `yaml:"discord"`
}

// WebhookConfig is one webhook channel.
type WebhookConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// PaginationConfig bounds /api/articles pages.
type PaginationConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			SessionTTL:      24 * time.Hour,
			LoginRateLimit:  10,
			LoginRateWindow: time.Minute,
		},
		Dataset: DatasetConfig{
			Dir:            "data",
			ReloadSchedule: "*/30 * * * *",
			Timezone:       "UTC",
			FetchTimeout:   15 * time.Second,
		},
		GitHub: GitHubConfig{
			APIURL:  "https://api.github.com",
			Ref:     "main",
			Timeout: 15 * time.Second,
		},
		Refresh: RefreshConfig{
			TriggerDelay: 3 * time.Second,
			PollInterval: 5 * time.Second,
			MaxAttempts:  60,
			PublishDelay: 2 * time.Second,
		},
		Notify: NotifyConfig{
			MaxConcurrent: 5,
			Timeout:       10 * time.Second,
		},
		Pagination: PaginationConfig{
			DefaultLimit: 20,
			MaxLimit:     100,
		},
		Version: "dev",
	}
}

// Load builds the configuration. Malformed environment values fall back with
// a warning; structural problems found by Validate are returned as an error.
// metrics may be nil.
func Load(logger *slog.Logger, metrics *cfgpkg.ConfigMetrics) (*Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnv); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(&cfg, cfgpkg.NewLoader(logger, metrics))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadFile overlays the YAML document at path onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(path string, cfg *Config) error {
	// #nosec G304 -- path comes from the operator's environment
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, l *cfgpkg.Loader) {
	positive := cfgpkg.ValidatePositiveDuration

	cfg.Server.Addr = cfgpkg.LoadEnvString("HTTP_ADDR", cfg.Server.Addr)
	cfg.Server.ShutdownTimeout = l.Duration("shutdown_timeout", "SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout, positive)
	cfg.Server.TrustProxyHeaders = l.Bool("trust_proxy_headers", "TRUST_PROXY_HEADERS", cfg.Server.TrustProxyHeaders)
	cfg.Server.CORSOrigins = cfgpkg.LoadEnvStringList("CORS_ALLOWED_ORIGINS", cfg.Server.CORSOrigins)
	cfg.Server.CSPReportOnly = l.Bool("csp_report_only", "CSP_REPORT_ONLY", cfg.Server.CSPReportOnly)
	cfg.Server.SecureCookies = l.Bool("secure_cookies", "SECURE_COOKIES", cfg.Server.SecureCookies)

	cfg.Auth.Password = cfgpkg.LoadEnvString("DASHBOARD_PASSWORD", cfg.Auth.Password)
	cfg.Auth.SessionTTL = l.Duration("session_ttl", "SESSION_TTL", cfg.Auth.SessionTTL, positive)
	cfg.Auth.LoginRateLimit = l.Int("login_rate_limit", "LOGIN_RATE_LIMIT", cfg.Auth.LoginRateLimit, cfgpkg.IntRange(1, 1000))
	cfg.Auth.LoginRateWindow = l.Duration("login_rate_window", "LOGIN_RATE_WINDOW", cfg.Auth.LoginRateWindow, positive)

	cfg.Dataset.BaseURL = cfgpkg.LoadEnvString("DATASET_BASE_URL", cfg.Dataset.BaseURL)
	cfg.Dataset.Dir = cfgpkg.LoadEnvString("DATASET_DIR", cfg.Dataset.Dir)
	cfg.Dataset.ReloadSchedule = l.String("reload_schedule", "DATASET_RELOAD_SCHEDULE", cfg.Dataset.ReloadSchedule, cfgpkg.ValidateCronSchedule)
	cfg.Dataset.Timezone = l.String("timezone", "TIMEZONE", cfg.Dataset.Timezone, cfgpkg.ValidateTimezone)
	cfg.Dataset.Watch = l.Bool("dataset_watch", "DATASET_WATCH", cfg.Dataset.Watch)
	cfg.Dataset.FetchTimeout = l.Duration("fetch_timeout", "DATASET_FETCH_TIMEOUT", cfg.Dataset.FetchTimeout,
		cfgpkg.DurationRange(time.Second, 5*time.Minute))

	cfg.GitHub.APIURL = cfgpkg.LoadEnvString("GITHUB_API_URL", cfg.GitHub.APIURL)
	cfg.GitHub.Owner = cfgpkg.LoadEnvString("GITHUB_OWNER", cfg.GitHub.Owner)
	cfg.GitHub.Repo = cfgpkg.LoadEnvString("GITHUB_REPO", cfg.GitHub.Repo)
	cfg.GitHub.Workflow = cfgpkg.LoadEnvString("GITHUB_WORKFLOW", cfg.GitHub.Workflow)
	cfg.GitHub.Ref = cfgpkg.LoadEnvString("GITHUB_REF", cfg.GitHub.Ref)

	cfg.Refresh.TriggerDelay = l.Duration("refresh_trigger_delay", "REFRESH_TRIGGER_DELAY", cfg.Refresh.TriggerDelay,
		cfgpkg.DurationRange(0, 5*time.Minute))
	cfg.Refresh.PollInterval = l.Duration("refresh_poll_interval", "REFRESH_POLL_INTERVAL", cfg.Refresh.PollInterval,
		cfgpkg.DurationRange(time.Second, 5*time.Minute))
	cfg.Refresh.MaxAttempts = l.Int("refresh_max_attempts", "REFRESH_MAX_ATTEMPTS", cfg.Refresh.MaxAttempts, cfgpkg.IntRange(1, 1000))
	cfg.Refresh.PublishDelay = l.Duration("refresh_publish_delay", "REFRESH_PUBLISH_DELAY", cfg.Refresh.PublishDelay,
		cfgpkg.DurationRange(0, 5*time.Minute))

	cfg.Database.URL = cfgpkg.LoadEnvString("DATABASE_URL", cfg.Database.URL)

	cfg.Notify.MaxConcurrent = l.Int("notify_max_concurrent", "NOTIFY_MAX_CONCURRENT", cfg.Notify.MaxConcurrent, cfgpkg.IntRange(1, 100))
	cfg.Notify.Slack.Enabled = l.Bool("slack_enabled", "SLACK_ENABLED", cfg.Notify.Slack.Enabled)
	cfg.Notify.Slack.WebhookURL = cfgpkg.LoadEnvString("SLACK_WEBHOOK_URL", cfg.Notify.Slack.WebhookURL)
	cfg.Notify.Discord.Enabled = l.Bool("discord_enabled", "DISCORD_ENABLED", cfg.Notify.Discord.Enabled)
	cfg.Notify.Discord.WebhookURL = cfgpkg.LoadEnvString("DISCORD_WEBHOOK_URL", cfg.Notify.Discord.WebhookURL)

	cfg.Pagination.DefaultLimit = l.Int("pagination_default_limit", "PAGINATION_DEFAULT_LIMIT", cfg.Pagination.DefaultLimit, cfgpkg.IntRange(1, 1000))
	cfg.Pagination.MaxLimit = l.Int("pagination_max_limit", "PAGINATION_MAX_LIMIT", cfg.Pagination.MaxLimit, cfgpkg.IntRange(1, 1000))

	cfg.Version = cfgpkg.LoadEnvString("VERSION", cfg.Version)

	l.Finish()
}

// Validate reports every structural problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch {
	case c.Dataset.Remote():
		if err := entity.ValidateURL("dataset.base_url", c.Dataset.BaseURL); err != nil {
			errs = append(errs, err)
		}
		if c.Dataset.Watch {
			errs = append(errs, errors.New("dataset.watch requires a local dataset.dir, not base_url"))
		}
	case c.Dataset.Dir == "":
		errs = append(errs, errors.New("one of dataset.base_url or dataset.dir is required"))
	}
	if c.Dataset.ReloadSchedule != "" {
		if err := cfgpkg.ValidateCronSchedule(c.Dataset.ReloadSchedule); err != nil {
			errs = append(errs, err)
		}
	}
	if err := cfgpkg.ValidateTimezone(c.Dataset.Timezone); err != nil {
		errs = append(errs, err)
	}

	if err := cfgpkg.ValidatePositiveDuration(c.Auth.SessionTTL); err != nil {
		errs = append(errs, fmt.Errorf("auth.session_ttl: %w", err))
	}

	gh := c.GitHub
	if gh.Owner != "" || gh.Repo != "" || gh.Workflow != "" {
		if !gh.Enabled() {
			errs = append(errs, errors.New("github.owner, github.repo and github.workflow must be set together"))
		}
		if err := entity.ValidateURL("github.api_url", gh.APIURL); err != nil {
			errs = append(errs, err)
		}
		if gh.Ref == "" {
			errs = append(errs, errors.New("github.ref is required"))
		}
	}
	if err := cfgpkg.ValidateIntRange(c.Refresh.MaxAttempts, 1, 1000); err != nil {
		errs = append(errs, fmt.Errorf("refresh.max_attempts: %w", err))
	}

	for name, wh := range map[string]WebhookConfig{"slack": c.Notify.Slack, "discord": c.Notify.Discord} {
		if !wh.Enabled {
			continue
		}
		if err := entity.ValidateURL("notify."+name+".webhook_url", wh.WebhookURL); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Pagination.DefaultLimit > c.Pagination.MaxLimit {
		errs = append(errs, fmt.Errorf("pagination.default_limit (%d) exceeds pagination.max_limit (%d)",
			c.Pagination.DefaultLimit, c.Pagination.MaxLimit))
	}

	return errors.Join(errs...)
}

// LogValue redacts secrets so the configuration can be logged at startup.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", c.Server.Addr),
		slog.Bool("password_set", c.Auth.Password != ""),
		slog.String("dataset_base_url", c.Dataset.BaseURL),
		slog.String("dataset_dir", c.Dataset.Dir),
		slog.String("reload_schedule", c.Dataset.ReloadSchedule),
		slog.Bool("refresh_enabled", c.GitHub.Enabled()),
		slog.Bool("database", c.Database.URL != ""),
		slog.Bool("slack", c.Notify.Slack.Enabled),
		slog.Bool("discord", c.Notify.Discord.Enabled),
		slog.String("version", c.Version),
	)
}
