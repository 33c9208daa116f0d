// Package statsd emits StatsD-style metrics for API calls made by the client.
package statsd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Sink receives counters and timings.
type Sink interface {
	Count(name string, value int64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

// Config describes a StatsD endpoint.
type Config struct {
	Address string
	Prefix  string
	// Tags are added to every metric; per-call tags win on conflict.
	Tags        map[string]string
	DialTimeout time.Duration
	Logger      *slog.Logger
}

// Client writes one DogStatsD line per datagram. It is safe for concurrent
// use; write failures are logged at debug level and otherwise ignored.
type Client struct {
	enc    encoder
	logger *slog.Logger

	mu sync.Mutex
	w  io.WriteCloser
}

var (
	_ Sink = (*Client)(nil)
	_ Sink = Nop{}
)

// Nop discards every metric.
type Nop struct{}

// Count implements Sink.
func (Nop) Count(string, int64, map[string]string) {}

// Timing implements Sink.
func (Nop) Timing(string, time.Duration, map[string]string) {}

// NewClient dials the UDP endpoint.
func NewClient(cfg Config) (*Client, error) {
	addr := strings.TrimSpace(cfg.Address)
	if addr == "" {
		return nil, errors.New("statsd address is required")
	}
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	conn, err := (&net.Dialer{}).DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("statsd dial %s: %w", addr, err)
	}
	return newClient(conn, cfg), nil
}

func newClient(w io.WriteCloser, cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		enc:    encoder{prefix: cleanName(cfg.Prefix), tags: cleanTags(cfg.Tags)},
		logger: logger.With("component", "statsd"),
		w:      w,
	}
}

// Count increments a counter.
func (c *Client) Count(name string, value int64, tags map[string]string) {
	if c == nil {
		return
	}
	c.send(c.enc.line(name, strconv.FormatInt(value, 10), "c", tags))
}

// Timing records a duration in milliseconds.
func (c *Client) Timing(name string, value time.Duration, tags map[string]string) {
	if c == nil {
		return
	}
	ms := strconv.FormatFloat(float64(value)/float64(time.Millisecond), 'f', -1, 64)
	c.send(c.enc.line(name, ms, "ms", tags))
}

// Close releases the connection. Later metrics are dropped.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.w == nil {
		return nil
	}
	err := c.w.Close()
	c.w = nil
	return err
}

func (c *Client) send(line string) {
	if c == nil || line == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.w == nil {
		return
	}
	if _, err := io.WriteString(c.w, line); err != nil {
		c.logger.Debug("statsd write failed", "error", err)
	}
}

// encoder renders the DogStatsD line format: name:value|type|#k:v,k:v.
type encoder struct {
	prefix string
	tags   map[string]string
}

func (e encoder) line(name, value, kind string, tags map[string]string) string {
	name = cleanName(name)
	if name == "" {
		return ""
	}
	var b strings.Builder
	if e.prefix != "" {
		b.WriteString(e.prefix)
		b.WriteByte('.')
	}
	b.WriteString(name)
	b.WriteByte(':')
	b.WriteString(value)
	b.WriteByte('|')
	b.WriteString(kind)

	merged := make(map[string]string, len(e.tags)+len(tags))
	for k, v := range e.tags {
		merged[k] = v
	}
	for k, v := range cleanTags(tags) {
		merged[k] = v
	}
	if len(merged) == 0 {
		return b.String()
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteString("|#")
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(merged[k])
	}
	return b.String()
}

// cleanName maps characters outside the metric alphabet to '_' and drops
// empty dot segments.
func cleanName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-', r == '{', r == '}':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(s))
	parts := strings.Split(s, ".")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ".")
}

// cleanTags trims keys and values, drops empty keys and replaces the line
// protocol separators.
func cleanTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	sep := strings.NewReplacer(",", "_", "|", "_", "#", "_")
	for k, v := range tags {
		k = sep.Replace(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		out[k] = sep.Replace(strings.TrimSpace(v))
	}
	return out
}
