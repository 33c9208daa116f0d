package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/joinify/joinify-go/internal/domain/auth"
	"github.com/joinify/joinify-go/internal/domain/model"
)

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg auth.Registration) (model.RegisterResponse, error) {
	return sendJSON[model.RegisterResponse](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   reg,
	})
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, creds auth.Credentials) (model.LoginResponse, error) {
	return sendJSON[model.LoginResponse](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   creds,
	})
}

// CheckUsername reports whether username is already taken.
func (c *Client) CheckUsername(ctx context.Context, username string) (bool, error) {
	return c.getBool(ctx, "/auth/check-username/"+url.PathEscape(username))
}

// CheckEmail reports whether email is already registered.
func (c *Client) CheckEmail(ctx context.Context, email string) (bool, error) {
	return c.getBool(ctx, "/auth/check-email/"+url.PathEscape(email))
}

func (c *Client) getBool(ctx context.Context, path string) (bool, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return false, err
	}
	return decodeBool(resp)
}
