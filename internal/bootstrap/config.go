package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/joinify/joinify-go/config"
)

// InitLogger installs the default slog logger writing to w (stderr when
// nil): JSON normally, text in dev mode.
func InitLogger(cfg *config.AppConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	dev := false
	if cfg != nil {
		opts.Level, dev = cfg.SlogLevel(), cfg.IsDev
	}

	logger := slog.New(slog.NewJSONHandler(w, opts))
	if dev {
		logger = slog.New(slog.NewTextHandler(w, opts))
	}
	slog.SetDefault(logger)
	return logger
}

// LoadConfig reads an optional .env file, parses the environment and
// sanitizes the result. Storage settings are validated before returning.
func LoadConfig() (config.AppConfig, error) {
	var cfg config.AppConfig
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env file: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	return cfg, cfg.Storage.Validate()
}
