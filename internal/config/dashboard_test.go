package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Dataset.Remote())
	assert.False(t, cfg.GitHub.Enabled())
	assert.Equal(t, 60, cfg.Refresh.MaxAttempts)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DASHBOARD_PASSWORD", "letmein")
	t.Setenv("DATASET_BASE_URL", "https://example.github.io/einvoice/data")
	t.Setenv("DATASET_RELOAD_SCHEDULE", "0 * * * *")
	t.Setenv("GITHUB_OWNER", "acme")
	t.Setenv("GITHUB_REPO", "einvoice-news")
	t.Setenv("GITHUB_WORKFLOW", "crawl.yml")
	t.Setenv("REFRESH_MAX_ATTEMPTS", "10")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://news.example.com, https://*.example.org")

	cfg, err := Load(quietLogger(), nil)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "letmein", cfg.Auth.Password)
	assert.True(t, cfg.Dataset.Remote())
	assert.Equal(t, "0 * * * *", cfg.Dataset.ReloadSchedule)
	assert.True(t, cfg.GitHub.Enabled())
	assert.Equal(t, 10, cfg.Refresh.MaxAttempts)
	assert.Equal(t, []string{"https://news.example.com", "https://*.example.org"}, cfg.Server.CORSOrigins)
}

func TestLoad_InvalidEnvFallsBack(t *testing.T) {
	t.Setenv("DATASET_RELOAD_SCHEDULE", "whenever")
	t.Setenv("TIMEZONE", "Mars/Olympus")
	t.Setenv("REFRESH_POLL_INTERVAL", "5 seconds")

	cfg, err := Load(quietLogger(), nil)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Dataset.ReloadSchedule, cfg.Dataset.ReloadSchedule)
	assert.Equal(t, def.Dataset.Timezone, cfg.Dataset.Timezone)
	assert.Equal(t, def.Refresh.PollInterval, cfg.Refresh.PollInterval)
}

func TestLoad_FileOverlayThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	doc := `
dataset:
  dir: /srv/einvoice/data
  watch: true
  reload_schedule: ""
refresh:
  poll_interval: 10s
  max_attempts: 30
notify:
  slack:
    enabled: true
    webhook_url: https://hooks.slack.com/services/T/B/X
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	t.Setenv(FileEnv, path)
	t.Setenv("REFRESH_MAX_ATTEMPTS", "45")

	cfg, err := Load(quietLogger(), nil)
	require.NoError(t, err)

	assert.Equal(t, "/srv/einvoice/data", cfg.Dataset.Dir)
	assert.True(t, cfg.Dataset.Watch)
	assert.Empty(t, cfg.Dataset.ReloadSchedule)
	assert.Equal(t, 10*time.Second, cfg.Refresh.PollInterval)
	assert.Equal(t, 45, cfg.Refresh.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Refresh.PublishDelay)
	assert.True(t, cfg.Notify.Slack.Enabled)
}

func TestLoad_FileErrors(t *testing.T) {
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load(quietLogger(), nil)
	assert.ErrorContains(t, err, "read config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("refresh: [unterminated"), 0o600))
	t.Setenv(FileEnv, path)
	_, err = Load(quietLogger(), nil)
	assert.ErrorContains(t, err, "parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "no dataset source",
			mutate:  func(c *Config) { c.Dataset.Dir = "" },
			wantErr: "dataset.base_url or dataset.dir",
		},
		{
			name:    "bad base url",
			mutate:  func(c *Config) { c.Dataset.BaseURL = "ftp://example.com/data" },
			wantErr: "http or https",
		},
		{
			name: "watch with remote dataset",
			mutate: func(c *Config) {
				c.Dataset.BaseURL = "https://example.com/data"
				c.Dataset.Watch = true
			},
			wantErr: "dataset.watch",
		},
		{
			name:    "partial github config",
			mutate:  func(c *Config) { c.GitHub.Owner = "acme" },
			wantErr: "must be set together",
		},
		{
			name:    "slack enabled without url",
			mutate:  func(c *Config) { c.Notify.Slack.Enabled = true },
			wantErr: "URL is required",
		},
		{
			name:    "pagination limits inverted",
			mutate:  func(c *Config) { c.Pagination.DefaultLimit = 500 },
			wantErr: "exceeds pagination.max_limit",
		},
		{
			name:    "zero session ttl",
			mutate:  func(c *Config) { c.Auth.SessionTTL = 0 },
			wantErr: "auth.session_ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestConfig_LogValueRedactsSecrets(t *testing.T) {
	cfg := Default()
	cfg.Auth.Password = "hunter2"
	cfg.Database.URL = "postgres://user:secret@db/news"
	cfg.Notify.Slack.WebhookURL = "https://hooks.slack.com/services/T/B/secret"

	var buf []byte
	w := writerFunc(func(p []byte) (int, error) { buf = append(buf, p...); return len(p), nil })
	slog.New(slog.NewTextHandler(w, nil)).Info("config", slog.Any("config", cfg))

	out := string(buf)
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "password_set=true")
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
