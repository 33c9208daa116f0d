// Package config holds the environment-driven settings of the joinify CLI.
package config

import (
	"log/slog"
	"os"
	"strings"
)

// AppConfig is the root configuration. Each field group is documented in
// its own file: api.go, storage.go, database.go and observability.go.
type AppConfig struct {
	// IsDev switches to debug text logs. NODE_ENV=development also sets it.
	IsDev    bool   `env:"DEV"       envDefault:"false"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	API     APIConfig
	Storage StorageConfig

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	Observability ObservabilityConfig
}

// Sanitize normalizes every group. Call it once after env parsing.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Storage.Sanitize()
	c.Redis.Sanitize()
	c.Observability.Sanitize()

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if !c.IsDev {
		switch strings.ToLower(os.Getenv("NODE_ENV")) {
		case "development", "dev":
			c.IsDev = true
		}
	}
}

var slogLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// SlogLevel returns the configured level; dev mode always logs debug.
func (c *AppConfig) SlogLevel() slog.Level {
	if c.IsDev {
		return slog.LevelDebug
	}
	if l, ok := slogLevels[c.LogLevel]; ok {
		return l
	}
	return slog.LevelInfo
}
