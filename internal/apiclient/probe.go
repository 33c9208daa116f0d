package apiclient

import (
	"context"

	"github.com/joinify/joinify-go/internal/observability/notify"
)

// ProbeWarning is the notice emitted when the backend cannot be reached.
const ProbeWarning = "Cannot connect to backend server"

// Probe checks connectivity by calling the public stats endpoint.
func (c *Client) Probe(ctx context.Context) error {
	_, err := c.UserStats(ctx)
	return err
}

// StartProbe runs Probe once in the background. On failure a warning is sent
// to sink; delivery problems are only logged. The returned channel receives
// the probe result and is then closed; callers may ignore it.
func (c *Client) StartProbe(ctx context.Context, sink notify.Sink) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		err := c.Probe(ctx)
		if err != nil {
			c.logger.WarnContext(ctx, "backend connection failed; some features may not work",
				"base_url", c.baseURL, "error", err)
			notify.Send(ctx, sink, notify.Notification{
				Level:    notify.LevelWarning,
				Message:  ProbeWarning,
				Metadata: map[string]string{"base_url": c.baseURL},
			})
		} else {
			c.logger.InfoContext(ctx, "backend connection successful", "base_url", c.baseURL)
		}
		done <- err
	}()
	return done
}
