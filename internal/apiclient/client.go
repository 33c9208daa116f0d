// Package apiclient is the single gateway to the Joinify REST backend. It
// injects the bearer token, normalizes JSON and text responses, and turns
// non-2xx replies and transport failures into typed application errors.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"

	apperrors "github.com/joinify/joinify-go/internal/errors"
	"github.com/joinify/joinify-go/internal/observability/metrics"
	"github.com/joinify/joinify-go/internal/observability/statsd"
)

// DefaultBaseURL is the backend location used when none is configured.
const DefaultBaseURL = "http://localhost:8080/api"

// TokenProvider yields the current bearer token. An empty token means the
// request is sent unauthenticated.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenProviderFunc adapts a function to TokenProvider.
type TokenProviderFunc func(ctx context.Context) (string, error)

// Token implements TokenProvider.
func (f TokenProviderFunc) Token(ctx context.Context) (string, error) {
	if f == nil {
		return "", nil
	}
	return f(ctx)
}

// StaticToken always returns the same token.
func StaticToken(token string) TokenProvider {
	return TokenProviderFunc(func(context.Context) (string, error) { return token, nil })
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Tokens     TokenProvider
	Logger     *slog.Logger
	Metrics    statsd.Sink
	UserAgent  string
}

// Client issues requests against the backend. It is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenProvider
	logger    *slog.Logger
	metrics   statsd.Sink
	userAgent string
	requestID func() string
}

// NewClient validates cfg and builds a Client. Without an explicit
// HTTPClient a client with a cookie jar and cfg.Timeout is created.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("api base url is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("api base url must be an absolute http(s) url, got %q", base)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		jar, jarErr := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if jarErr != nil {
			return nil, fmt.Errorf("create cookie jar: %w", jarErr)
		}
		hc = &http.Client{Timeout: timeout, Jar: jar}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := cfg.Metrics
	if sink == nil {
		sink = statsd.Nop{}
	}
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = StaticToken("")
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = "joinify-go"
	}

	return &Client{
		baseURL:   base,
		http:      hc,
		tokens:    tokens,
		logger:    logger.With("component", "apiclient"),
		metrics:   sink,
		userAgent: ua,
		requestID: uuid.NewString,
	}, nil
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Request describes one backend call. Path is relative to the base URL.
// Body is JSON-encoded unless RawBody is set.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	RawBody []byte
	Headers http.Header
}

// Do performs req. A non-nil Response is returned whenever the backend
// answered, including alongside the error for non-2xx statuses.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := c.do(ctx, req)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	metrics.EmitAPIRequest(c.metrics, metrics.APIRequest{
		Method:   req.Method,
		Path:     req.Path,
		Status:   status,
		Duration: time.Since(start),
		Err:      err,
	})

	if err != nil {
		c.logger.DebugContext(ctx, "api request failed",
			"method", req.Method, "path", req.Path, "status", status, "error", err)
	} else {
		c.logger.DebugContext(ctx, "api request",
			"method", req.Method, "path", req.Path, "status", status)
	}
	return resp, err
}

func (c *Client) do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	body, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.url(req), body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	c.setHeaders(ctx, httpReq, req.Headers)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}

	resp, err := readResponse(httpResp)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, apperrors.HTTPStatus(resp.StatusCode, resp.ErrorMessage())
	}
	return resp, nil
}

func (c *Client) url(req Request) string {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}

func encodeBody(req Request) (io.Reader, error) {
	if req.RawBody != nil {
		return bytes.NewReader(req.RawBody), nil
	}
	if req.Body == nil {
		return nil, nil
	}
	b, err := json.Marshal(req.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode request body")
	}
	return bytes.NewReader(b), nil
}

func (c *Client) setHeaders(ctx context.Context, r *http.Request, extra http.Header) {
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json, text/plain, */*")
	r.Header.Set("User-Agent", c.userAgent)
	r.Header.Set("X-Request-ID", c.requestID())

	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "token lookup failed; sending unauthenticated request", "error", err)
	}
	if token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(r)
	}

	for k, vs := range extra {
		r.Header.Del(k)
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
}

func (c *Client) transportError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return apperrors.Wrap(err, apperrors.ErrCodeCanceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "request timed out")
	default:
		return apperrors.Network(NetworkErrorMessage(c.baseURL), err)
	}
}

// NetworkErrorMessage is the user-facing text for an unreachable backend.
func NetworkErrorMessage(baseURL string) string {
	return fmt.Sprintf(
		"Network error: cannot connect to backend server at %s. Please ensure the Joinify API is running.",
		baseURL,
	)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
