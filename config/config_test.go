package config

import (
	"log/slog"
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	t.Setenv("NODE_ENV", "")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.API.BaseURL != "http://localhost:8080/api" {
		t.Errorf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Errorf("unexpected timeout %v", cfg.API.Timeout)
	}
	if !cfg.API.ProbeOnStart {
		t.Error("expected probe on start by default")
	}
	if cfg.Storage.Backend != StorageFile {
		t.Errorf("unexpected storage backend %q", cfg.Storage.Backend)
	}
	if cfg.Redis.KeyPrefix != "joinify:" {
		t.Errorf("unexpected redis prefix %q", cfg.Redis.KeyPrefix)
	}
	if cfg.Observability.Metrics.IsEnabled() {
		t.Error("expected metrics disabled by default")
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("unexpected log level %v", cfg.SlogLevel())
	}
}

func TestAppConfig_ParseEnv(t *testing.T) {
	t.Setenv("JOINIFY_API_BASE_URL", " https://joinify.example.com/api/ ")
	t.Setenv("JOINIFY_API_TIMEOUT", "3s")
	t.Setenv("JOINIFY_API_PROBE_ON_START", "false")
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("REDIS_URI", "redis://cache:6379/2")
	t.Setenv("REDIS_KEY_PREFIX", "cli:")
	t.Setenv("DB_HOST", "pg")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("LOG_LEVEL", " WARN ")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	wantAPI := APIConfig{
		BaseURL:      "https://joinify.example.com/api",
		Timeout:      3 * time.Second,
		ProbeOnStart: false,
		UserAgent:    "joinify-go",
	}
	if !reflect.DeepEqual(cfg.API, wantAPI) {
		t.Fatalf("unexpected api configuration:\nexpected: %#v\ngot:      %#v", wantAPI, cfg.API)
	}
	if cfg.Storage.Backend != StorageRedis {
		t.Errorf("expected redis backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Redis.URI != "redis://cache:6379/2" || cfg.Redis.KeyPrefix != "cli:" {
		t.Errorf("unexpected redis configuration: %#v", cfg.Redis)
	}
	if cfg.Postgres.Host != "pg" || cfg.Postgres.Port != 6543 {
		t.Errorf("unexpected postgres configuration: %#v", cfg.Postgres)
	}
	if cfg.SlogLevel() != slog.LevelWarn {
		t.Errorf("expected warn level, got %v", cfg.SlogLevel())
	}
}

func TestAppConfig_DevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	cfg := AppConfig{LogLevel: "error"}
	cfg.Sanitize()

	if !cfg.IsDev {
		t.Fatal("expected dev mode from NODE_ENV")
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level in dev mode, got %v", cfg.SlogLevel())
	}
}

func TestAPIConfig_Sanitize(t *testing.T) {
	cfg := APIConfig{BaseURL: "  ", Timeout: -time.Second}
	cfg.Sanitize()

	if cfg.BaseURL != defaultAPIBaseURL {
		t.Fatalf("expected default base url, got %q", cfg.BaseURL)
	}
	if cfg.Timeout != defaultAPITimeout {
		t.Fatalf("expected default timeout, got %v", cfg.Timeout)
	}
}

func TestParseStorageBackend(t *testing.T) {
	tests := []struct {
		input       string
		expected    StorageBackend
		expectError bool
	}{
		{input: "file", expected: StorageFile},
		{input: " POSTGRES ", expected: StoragePostgres},
		{input: "memory", expected: StorageMemory},
		{input: "", expected: StorageFile},
		{input: "s3", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStorageBackend(tt.input)
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestStorageConfig_Validate(t *testing.T) {
	cfg := StorageConfig{Backend: " Bogus "}
	cfg.Sanitize()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown backend to fail validation")
	}

	cfg = StorageConfig{}
	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend != StorageFile {
		t.Fatalf("expected file backend by default, got %q", cfg.Backend)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}

	cfg.Sanitize()

	if cfg.Enabled {
		t.Fatalf("expected enabled to be false when address is empty")
	}

	cfg = ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " statsd:1234 ",
		Prefix:        ".joinify.",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:1234" {
		t.Fatalf("expected address to be trimmed, got %q", cfg.StatsdAddress)
	}
	if cfg.Prefix != "joinify" {
		t.Fatalf("expected prefix dots to be trimmed, got %q", cfg.Prefix)
	}
}

func TestObservabilityNotificationsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityNotificationsConfig{
		Enabled:    true,
		Timeout:    0,
		RetryLimit: -1,
		MinLevel:   "loud",
		Slack: SlackNotificationConfig{
			Enabled:    true,
			WebhookURL: " ",
			Channel:    "  ",
			Username:   "",
		},
	}

	cfg.Sanitize()

	if cfg.Timeout <= 0 {
		t.Fatalf("expected timeout to fall back to default, got %v", cfg.Timeout)
	}
	if cfg.RetryLimit < 0 {
		t.Fatalf("expected retry limit to be clamped to >= 0, got %d", cfg.RetryLimit)
	}
	if cfg.MinLevel != "warning" {
		t.Fatalf("expected min level to fall back to warning, got %q", cfg.MinLevel)
	}
	if cfg.Slack.Enabled {
		t.Fatal("expected slack to be disabled without a webhook url")
	}
	if cfg.Slack.Username != "joinify" {
		t.Fatalf("expected default slack username, got %q", cfg.Slack.Username)
	}
}

func TestObservabilityNotificationsConfig_DisabledTurnsOffSinks(t *testing.T) {
	cfg := ObservabilityNotificationsConfig{
		Enabled: false,
		Slack: SlackNotificationConfig{
			Enabled:    true,
			WebhookURL: "https://hooks.slack.test/abc",
		},
	}

	cfg.Sanitize()

	if cfg.Slack.Enabled {
		t.Fatal("expected slack to be disabled when notifications are off")
	}
}
