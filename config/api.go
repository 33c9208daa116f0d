package config

import (
	"strings"
	"time"
)

const (
	defaultAPIBaseURL = "http://localhost:8080/api"
	defaultAPITimeout = 15 * time.Second
)

// APIConfig points the client at a Joinify backend.
type APIConfig struct {
	BaseURL string        `env:"JOINIFY_API_BASE_URL"       envDefault:"http://localhost:8080/api"`
	Timeout time.Duration `env:"JOINIFY_API_TIMEOUT"        envDefault:"15s"`
	// ProbeOnStart runs the connectivity check when the CLI starts.
	ProbeOnStart bool   `env:"JOINIFY_API_PROBE_ON_START" envDefault:"true"`
	UserAgent    string `env:"JOINIFY_API_USER_AGENT"     envDefault:"joinify-go"`
}

// Sanitize trims the base URL and restores defaults for empty values.
func (c *APIConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = defaultAPIBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultAPITimeout
	}
	c.UserAgent = strings.TrimSpace(c.UserAgent)
}
