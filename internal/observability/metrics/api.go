// Package metrics emits standardised metrics for backend API calls.
package metrics

import (
	"strconv"
	"strings"
	"time"

	obserrors "github.com/joinify/joinify-go/internal/observability/errors"
	"github.com/joinify/joinify-go/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metric names.
const (
	RequestTiming = "api.request"
	RequestCount  = "api.request.count"
)

// APIRequest captures one completed backend call.
type APIRequest struct {
	Method   string
	Path     string
	Status   int // 0 when no response was received
	Duration time.Duration
	Err      error
}

// EmitAPIRequest records a count and, when known, the duration of req.
func EmitAPIRequest(sink statsd.Sink, req APIRequest) {
	if sink == nil {
		return
	}

	result := ResultSuccess
	if req.Err != nil {
		result = ResultError
	}
	status := "none"
	if req.Status > 0 {
		status = strconv.Itoa(req.Status)
	}

	tags := map[string]string{
		"method": strings.ToUpper(req.Method),
		"route":  Route(req.Path),
		"status": status,
		"result": result,
	}
	if req.Err != nil {
		if class := obserrors.Classify(req.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count(RequestCount, 1, tags)

	if req.Duration > 0 {
		sink.Timing(RequestTiming, req.Duration, CloneTags(tags))
	}
}

// Route collapses numeric path segments to "{id}" so that per-resource URLs
// share one tag value. The query string is dropped.
func Route(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
