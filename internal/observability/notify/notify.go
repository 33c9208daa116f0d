// Package notify carries short user-facing notices (the dashboard "toasts") to
// one or more sinks.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Level is the visual weight of a notification.
type Level string

// Levels recognised by sinks.
const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// rank orders levels for threshold filtering. Unknown levels rank as info.
func (l Level) rank() int {
	switch l {
	case LevelError:
		return 3
	case LevelWarning:
		return 2
	case LevelSuccess:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether l is at or above min.
func (l Level) AtLeast(minLevel Level) bool {
	return l.rank() >= minLevel.rank()
}

// Notification is a single notice.
type Notification struct {
	Level      Level
	Message    string
	OccurredAt time.Time
	Metadata   map[string]string
}

// Sink describes a destination capable of consuming notifications.
type Sink interface {
	Notify(ctx context.Context, n Notification) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, n Notification) error

// Notify implements the Sink interface.
func (f SinkFunc) Notify(ctx context.Context, n Notification) error {
	if f == nil {
		return nil
	}
	return f(ctx, n)
}

// Multi fans a notification out to every non-nil sink. All sinks are tried;
// their errors are joined.
func Multi(sinks ...Sink) Sink {
	var out []Sink
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return multiSink(out)
}

type multiSink []Sink

func (m multiSink) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, s := range m {
		if err := s.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Threshold drops notifications below minLevel before handing them to next.
func Threshold(minLevel Level, next Sink) Sink {
	return SinkFunc(func(ctx context.Context, n Notification) error {
		if next == nil || !n.Level.AtLeast(minLevel) {
			return nil
		}
		return next.Notify(ctx, n)
	})
}

// LogSink writes notifications to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

// Notify implements the Sink interface.
func (s LogSink) Notify(ctx context.Context, n Notification) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{"notice_level", string(n.Level)}
	for k, v := range n.Metadata {
		attrs = append(attrs, k, v)
	}
	logger.Log(ctx, slogLevel(n.Level), n.Message, attrs...)
	return nil
}

func slogLevel(l Level) slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Send delivers n to sink, stamping OccurredAt and logging delivery failures
// instead of returning them.
func Send(ctx context.Context, sink Sink, n Notification) {
	if sink == nil {
		return
	}
	if n.OccurredAt.IsZero() {
		n.OccurredAt = time.Now()
	}
	if err := sink.Notify(ctx, n); err != nil {
		slog.Default().WarnContext(ctx, "notification delivery failed", "error", err, "level", string(n.Level))
	}
}

// Recorder keeps every notification it receives. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify implements the Sink interface.
func (r *Recorder) Notify(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
	return nil
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Messages returns the recorded messages in order.
func (r *Recorder) Messages() []string {
	all := r.All()
	out := make([]string, len(all))
	for i, n := range all {
		out[i] = n.Message
	}
	return out
}
