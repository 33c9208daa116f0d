// Package slack forwards notifications to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/joinify/joinify-go/internal/observability/notify"
)

// Config holds the webhook settings.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	// RetryLimit is the number of extra attempts after a retryable failure.
	RetryLimit int
	Client     *http.Client
	// AppURL, when a valid absolute URL, is linked from every message.
	AppURL string
}

// Client delivers notifications to a Slack webhook.
type Client struct {
	webhookURL string
	channel    string
	username   string
	retryLimit int
	appURL     string
	client     *http.Client
	backoff    time.Duration
}

var _ notify.Sink = (*Client)(nil)

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}
	hc := cfg.Client
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	username := strings.TrimSpace(cfg.Username)
	if username == "" {
		username = "joinify"
	}
	return &Client{
		webhookURL: webhookURL,
		channel:    strings.TrimSpace(cfg.Channel),
		username:   username,
		retryLimit: max(cfg.RetryLimit, 0),
		appURL:     absoluteURL(cfg.AppURL),
		client:     hc,
		backoff:    200 * time.Millisecond,
	}, nil
}

// message is the webhook payload: a short text plus one coloured attachment.
type message struct {
	Text        string       `json:"text"`
	Username    string       `json:"username"`
	Channel     string       `json:"channel,omitempty"`
	Attachments []attachment `json:"attachments"`
}

type attachment struct {
	Color  string  `json:"color"`
	Text   string  `json:"text"`
	Fields []field `json:"fields,omitempty"`
	Footer string  `json:"footer"`
	TS     int64   `json:"ts"`
}

type field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// Notify posts n, retrying 429 and 5xx responses and transport errors
// with linear backoff.
func (c *Client) Notify(ctx context.Context, n notify.Notification) error {
	body, err := json.Marshal(c.buildMessage(n))
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryLimit; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(time.Duration(attempt) * c.backoff)
			select {
			case <-ctx.Done():
				t.Stop()
				return errors.Join(lastErr, ctx.Err())
			case <-t.C:
			}
		}
		retry, err := c.post(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return lastErr
}

func (c *Client) buildMessage(n notify.Notification) message {
	level := n.Level
	if level == "" {
		level = notify.LevelInfo
	}
	at := n.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}

	keys := make([]string, 0, len(n.Metadata))
	for k := range n.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, field{Title: k, Value: escape(n.Metadata[k]), Short: true})
	}

	footer := "Joinify"
	if c.appURL != "" {
		footer = "<" + c.appURL + "|Open Joinify>"
	}

	return message{
		Text:     fmt.Sprintf("%s *Joinify %s*", icon(level), level),
		Username: c.username,
		Channel:  c.channel,
		Attachments: []attachment{{
			Color:  color(level),
			Text:   escape(n.Message),
			Fields: fields,
			Footer: footer,
			TS:     at.Unix(),
		}},
	}
}

// post sends one request and reports whether a failure is worth retrying.
func (c *Client) post(ctx context.Context, body []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("slack request failed: %w", err)
	}
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	closeErr := resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return false, errors.Join(readErr, closeErr)
	}
	retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
	return retry, fmt.Errorf("slack webhook %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
}

func icon(l notify.Level) string {
	switch l {
	case notify.LevelError:
		return ":x:"
	case notify.LevelWarning:
		return ":warning:"
	case notify.LevelSuccess:
		return ":white_check_mark:"
	default:
		return ":information_source:"
	}
}

func color(l notify.Level) string {
	switch l {
	case notify.LevelError:
		return "danger"
	case notify.LevelWarning:
		return "warning"
	case notify.LevelSuccess:
		return "good"
	default:
		return "#439FE0"
	}
}

func absoluteURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.String()
}

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return slackEscaper.Replace(s) }
