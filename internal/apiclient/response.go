package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/joinify/joinify-go/internal/domain/model"
	apperrors "github.com/joinify/joinify-go/internal/errors"
)

// Response is a fully read backend reply.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func readResponse(resp *http.Response) (*Response, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return nil, errors.Join(
				fmt.Errorf("read response body: %w", err),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if err := resp.Body.Close(); err != nil {
		return nil, fmt.Errorf("close response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// IsJSON reports whether the backend labelled the body as JSON.
func (r *Response) IsJSON() bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}

// Text returns the raw body.
func (r *Response) Text() string {
	return string(r.Body)
}

// Decode unmarshals a JSON body into v.
func (r *Response) Decode(v any) error {
	if !r.IsJSON() {
		return apperrors.Parsef("expected JSON response, got %q", r.Header.Get("Content-Type"))
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return apperrors.Parsef("decode response: %v", err)
	}
	return nil
}

// ErrorMessage picks the user-facing message for a failed response: the
// "message" field of a JSON object, else the raw body, else a status line.
// JSON arrays and null never supply a message.
func (r *Response) ErrorMessage() string {
	if r.IsJSON() {
		var v any
		if err := json.Unmarshal(r.Body, &v); err == nil {
			switch t := v.(type) {
			case map[string]any:
				if msg, ok := t["message"].(string); ok && msg != "" {
					return msg
				}
				return r.statusLine()
			case []any, nil:
				return r.statusLine()
			case string:
				if t != "" {
					return t
				}
			}
		}
	}
	if text := strings.TrimSpace(r.Text()); text != "" {
		return text
	}
	return r.statusLine()
}

func (r *Response) statusLine() string {
	return "HTTP " + strconv.Itoa(r.StatusCode) + ": " + http.StatusText(r.StatusCode)
}

// decode parses the body as T with schema validation. An empty body
// yields the zero value.
func decode[T any](r *Response) (T, error) {
	var zero T
	if r == nil || len(strings.TrimSpace(r.Text())) == 0 {
		return zero, nil
	}
	return model.Decode[T](r.Body)
}

// decodeBool accepts a JSON boolean or a text body of "true"/"false".
func decodeBool(r *Response) (bool, error) {
	text := strings.TrimSpace(r.Text())
	if r.IsJSON() {
		var b bool
		if err := json.Unmarshal(r.Body, &b); err != nil {
			return false, apperrors.Parsef("decode boolean response: %v", err)
		}
		return b, nil
	}
	b, err := strconv.ParseBool(text)
	if err != nil {
		return false, apperrors.Parsef("decode boolean response %q", text)
	}
	return b, nil
}

// decodeString accepts a JSON string or a text body.
func decodeString(r *Response) (string, error) {
	if r.IsJSON() {
		var s string
		if err := json.Unmarshal(r.Body, &s); err != nil {
			return "", apperrors.Parsef("decode string response: %v", err)
		}
		return s, nil
	}
	return strings.TrimSpace(r.Text()), nil
}

func getJSON[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	return sendJSON[T](ctx, c, Request{Method: http.MethodGet, Path: path, Query: query})
}

func sendJSON[T any](ctx context.Context, c *Client, req Request) (T, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](resp)
}
