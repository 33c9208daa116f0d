package apiclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/joinify/joinify-go/internal/errors"
	"github.com/joinify/joinify-go/internal/observability/metrics"
	"github.com/joinify/joinify-go/internal/observability/statsd"
	"github.com/joinify/joinify-go/internal/testutil"
)

func newTestClient(t *testing.T, b *testutil.Backend, tokens TokenProvider) (*Client, *statsd.Recorder) {
	t.Helper()
	rec := &statsd.Recorder{}
	c, err := NewClient(Config{BaseURL: b.BaseURL(), Tokens: tokens, Metrics: rec, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c, rec
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr string
	}{
		{"missing", "  ", "api base url is required"},
		{"relative", "/api", "absolute http(s) url"},
		{"wrong scheme", "ftp://example.com/api", "absolute http(s) url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(Config{BaseURL: tt.baseURL})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	c, err := NewClient(Config{BaseURL: "http://localhost:8080/api/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", c.BaseURL())
	assert.NotNil(t, c.http.Jar)
}

func TestDoSetsDefaultHeaders(t *testing.T) {
	b := testutil.NewBackend(t)
	b.JSON(http.MethodGet, "/users/stats", http.StatusOK, map[string]int{"total": 1})
	c, _ := newTestClient(t, b, StaticToken("abc.def.ghi"))

	_, err := c.Do(context.Background(), Request{Path: "/users/stats"})
	require.NoError(t, err)

	reqs := b.Requests()
	require.Len(t, reqs, 1)
	h := reqs[0].Header
	assert.Equal(t, "Bearer abc.def.ghi", h.Get("Authorization"))
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.NotEmpty(t, h.Get("X-Request-ID"))
	assert.Equal(t, "joinify-go", h.Get("User-Agent"))
}

func TestDoOmitsAuthorizationWithoutToken(t *testing.T) {
	b := testutil.NewBackend(t)
	b.JSON(http.MethodGet, "/events", http.StatusOK, []any{})

	failing := TokenProviderFunc(func(context.Context) (string, error) { return "", errors.New("store offline") })
	for _, tokens := range []TokenProvider{nil, StaticToken(""), failing} {
		c, _ := newTestClient(t, b, tokens)
		_, err := c.Do(context.Background(), Request{Path: "/events"})
		require.NoError(t, err)
	}
	for _, r := range b.Requests() {
		assert.Empty(t, r.Header.Get("Authorization"))
	}
}

func TestDoCallerHeadersOverride(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Text(http.MethodPut, "/users/change-password", http.StatusOK, "Password updated successfully")
	c, _ := newTestClient(t, b, StaticToken("tok"))

	msg, err := c.ChangePassword(context.Background(), "N3w&pass!")
	require.NoError(t, err)
	assert.Equal(t, "Password updated successfully", msg)

	reqs := b.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "application/x-www-form-urlencoded", reqs[0].Header.Get("Content-Type"))
	assert.Equal(t, "newPassword=N3w%26pass%21", string(reqs[0].Body))
	assert.Equal(t, "Bearer tok", reqs[0].Header.Get("Authorization"))
}

func TestDoJSONErrorMessage(t *testing.T) {
	b := testutil.NewBackend(t)
	b.JSON(http.MethodGet, "/events/99", http.StatusNotFound, map[string]string{"message": "Event not found"})
	c, _ := newTestClient(t, b, nil)

	_, err := c.EventByID(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, "Event not found", err.Error())
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, apperrors.GetStatus(err))
}

func TestDoErrorMessageFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		status int
		setup  func(b *testutil.Backend)
		want   string
		code   apperrors.ErrorCode
	}{
		{
			name: "text body",
			setup: func(b *testutil.Backend) {
				b.Text(http.MethodGet, "/x", http.StatusConflict, "Already RSVP'd")
			},
			want: "Already RSVP'd",
			code: apperrors.ErrCodeConflict,
		},
		{
			name: "empty body",
			setup: func(b *testutil.Backend) {
				b.Handle(http.MethodGet, "/x", func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusForbidden)
				})
			},
			want: "HTTP 403: Forbidden",
			code: apperrors.ErrCodeForbidden,
		},
		{
			name: "json object without message",
			setup: func(b *testutil.Backend) {
				b.JSON(http.MethodGet, "/x", http.StatusInternalServerError, map[string]string{"error": "boom"})
			},
			want: "HTTP 500: Internal Server Error",
			code: apperrors.ErrCodeInternal,
		},
		{
			name: "json array body",
			setup: func(b *testutil.Backend) {
				b.JSON(http.MethodGet, "/x", http.StatusBadRequest, []map[string]string{{"field": "title", "message": "too short"}})
			},
			want: "HTTP 400: Bad Request",
			code: apperrors.ErrCodeValidation,
		},
		{
			name: "json null body",
			setup: func(b *testutil.Backend) {
				b.Handle(http.MethodGet, "/x", func(w http.ResponseWriter, _ *http.Request) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusNotFound)
					_, _ = w.Write([]byte("null"))
				})
			},
			want: "HTTP 404: Not Found",
			code: apperrors.ErrCodeNotFound,
		},
		{
			name: "unmapped status",
			setup: func(b *testutil.Backend) {
				b.Text(http.MethodGet, "/x", http.StatusTeapot, "")
			},
			want: "HTTP 418: I'm a teapot",
			code: apperrors.ErrCodeHTTP,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testutil.NewBackend(t)
			tt.setup(b)
			c, _ := newTestClient(t, b, nil)

			resp, err := c.Do(context.Background(), Request{Path: "/x"})
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, tt.code, apperrors.GetCode(err))
		})
	}
}

func TestDoTextResponseIsLiteral(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Text(http.MethodGet, "/auth/check-username/bob", http.StatusOK, "true")
	c, _ := newTestClient(t, b, nil)

	resp, err := c.Do(context.Background(), Request{Path: "/auth/check-username/bob"})
	require.NoError(t, err)
	assert.False(t, resp.IsJSON())
	assert.Equal(t, "true", resp.Text())

	var v any
	assert.True(t, apperrors.IsParse(resp.Decode(&v)))
}

func TestDoNetworkError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	base := "http://" + addr + "/api"
	rec := &statsd.Recorder{}
	c, err := NewClient(Config{BaseURL: base, Metrics: rec})
	require.NoError(t, err)

	_, err = c.UserStats(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsNetwork(err))
	assert.Equal(t, NetworkErrorMessage(base), apperrors.Message(err))
	assert.True(t, strings.HasPrefix(apperrors.Message(err), "Network error: cannot connect to backend server at "+base))

	counts := rec.Named(metrics.RequestCount)
	require.Len(t, counts, 1)
	assert.Equal(t, "network", counts[0].Tags["error_class"])
}

func TestDoCanceledContext(t *testing.T) {
	b := testutil.NewBackend(t)
	b.JSON(http.MethodGet, "/events", http.StatusOK, []any{})
	c, _ := newTestClient(t, b, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Events(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsCanceled(err))
}

func TestDoTimeout(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Handle(http.MethodGet, "/events", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	})
	c, err := NewClient(Config{BaseURL: b.BaseURL(), Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Events(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsTimeout(err), "got %v", err)
}

func TestDoRecordsMetrics(t *testing.T) {
	b := testutil.NewBackend(t)
	b.JSON(http.MethodGet, "/events/7/capacity", http.StatusOK, map[string]any{
		"maxCapacity": 10, "confirmedAttendees": 3, "availableSpots": 7, "atCapacity": false,
	})
	c, rec := newTestClient(t, b, nil)

	capInfo, err := c.EventCapacity(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, capInfo.AvailableSpots)

	counts := rec.Named(metrics.RequestCount)
	require.Len(t, counts, 1)
	assert.Equal(t, "/events/{id}/capacity", counts[0].Tags["route"])
	assert.Equal(t, "200", counts[0].Tags["status"])
	assert.Len(t, rec.Named(metrics.RequestTiming), 1)
}

func TestDecodeRejectsShapeMismatch(t *testing.T) {
	b := testutil.NewBackend(t)
	b.JSON(http.MethodGet, "/rsvp/my-rsvps", http.StatusOK, []map[string]any{
		{"id": 1, "status": "MAYBE", "event": map[string]any{"id": 1, "title": "Go"}},
	})
	b.JSON(http.MethodGet, "/users/stats", http.StatusOK, "not an object")
	c, _ := newTestClient(t, b, nil)

	_, err := c.MyRSVPs(context.Background())
	assert.True(t, apperrors.IsParse(err), "got %v", err)

	_, err = c.UserStats(context.Background())
	assert.True(t, apperrors.IsParse(err), "got %v", err)
}
