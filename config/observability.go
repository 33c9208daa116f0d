package config

import (
	"slices"
	"strings"
	"time"
)

// notifyLevels are the accepted values of OBSERVABILITY_NOTIFICATIONS_MIN_LEVEL,
// lowest first.
var notifyLevels = []string{"info", "success", "warning", "error"}

// ObservabilityConfig covers request metrics and remote notice delivery.
type ObservabilityConfig struct {
	Metrics       ObservabilityMetricsConfig
	Notifications ObservabilityNotificationsConfig
}

// Sanitize normalizes both halves.
func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
	c.Notifications.Sanitize()
}

// ObservabilityMetricsConfig turns on StatsD counters and timings for
// backend calls.
type ObservabilityMetricsConfig struct {
	Enabled       bool   `env:"OBSERVABILITY_METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string `env:"OBSERVABILITY_METRICS_PREFIX"         envDefault:"joinify"`
}

// Sanitize trims values; an empty address disables metrics.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	c.Prefix = strings.Trim(strings.TrimSpace(c.Prefix), ".")
	c.Enabled = c.Enabled && c.StatsdAddress != ""
}

// IsEnabled reports whether a StatsD client should be built.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}

// ObservabilityNotificationsConfig selects which notices leave the process.
// Notices below MinLevel only reach the console and the log.
type ObservabilityNotificationsConfig struct {
	Enabled    bool                    `env:"OBSERVABILITY_NOTIFICATIONS_ENABLED"     envDefault:"false"`
	Timeout    time.Duration           `env:"OBSERVABILITY_NOTIFICATIONS_TIMEOUT"     envDefault:"5s"`
	RetryLimit int                     `env:"OBSERVABILITY_NOTIFICATIONS_RETRY_LIMIT" envDefault:"3"`
	MinLevel   string                  `env:"OBSERVABILITY_NOTIFICATIONS_MIN_LEVEL"   envDefault:"warning"`
	Slack      SlackNotificationConfig `envPrefix:"OBSERVABILITY_NOTIFICATIONS_SLACK_"`
}

// Sanitize clamps numbers, falls back to "warning" for unknown levels and
// disables Slack unless notifications are on and a webhook is set.
func (c *ObservabilityNotificationsConfig) Sanitize() {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	c.RetryLimit = max(c.RetryLimit, 0)
	c.MinLevel = strings.ToLower(strings.TrimSpace(c.MinLevel))
	if !slices.Contains(notifyLevels, c.MinLevel) {
		c.MinLevel = "warning"
	}

	s := &c.Slack
	s.WebhookURL = strings.TrimSpace(s.WebhookURL)
	s.Channel = strings.TrimSpace(s.Channel)
	s.AppURL = strings.TrimSpace(s.AppURL)
	s.Username = strings.TrimSpace(s.Username)
	if s.Username == "" {
		s.Username = "joinify"
	}
	s.Enabled = s.Enabled && c.Enabled && s.WebhookURL != ""
}

// SlackNotificationConfig is the Slack incoming webhook target.
type SlackNotificationConfig struct {
	Enabled    bool   `env:"ENABLED"     envDefault:"false"`
	WebhookURL string `env:"WEBHOOK_URL"`
	Channel    string `env:"CHANNEL"`
	Username   string `env:"USERNAME"    envDefault:"joinify"`
	AppURL     string `env:"APP_URL"`
}
