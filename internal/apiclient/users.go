package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/joinify/joinify-go/internal/domain/auth"
	"github.com/joinify/joinify-go/internal/domain/model"
)

// UserStats returns the platform user breakdown. It needs no authentication.
func (c *Client) UserStats(ctx context.Context) (model.UserStats, error) {
	return getJSON[model.UserStats](ctx, c, "/users/stats", nil)
}

// CurrentUser returns the profile of the token holder.
func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	return getJSON[model.User](ctx, c, "/users/profile", nil)
}

// UpdateProfile changes the current user's username or email.
func (c *Client) UpdateProfile(ctx context.Context, in model.ProfileUpdate) (model.User, error) {
	return sendJSON[model.User](ctx, c, Request{Method: http.MethodPut, Path: "/users/profile", Body: in})
}

// ChangePassword sets a new password and returns the backend's confirmation text.
// The password travels form-encoded.
func (c *Client) ChangePassword(ctx context.Context, newPassword string) (string, error) {
	resp, err := c.Do(ctx, Request{
		Method:  http.MethodPut,
		Path:    "/users/change-password",
		RawBody: []byte(url.Values{"newPassword": {newPassword}}.Encode()),
		Headers: http.Header{"Content-Type": {"application/x-www-form-urlencoded"}},
	})
	if err != nil {
		return "", err
	}
	return decodeString(resp)
}

// UserByID fetches a user's public profile.
func (c *Client) UserByID(ctx context.Context, id int64) (model.User, error) {
	return getJSON[model.User](ctx, c, userPath(id), nil)
}

// Users lists every user.
func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	return getJSON[[]model.User](ctx, c, "/users", nil)
}

// Organizers lists users with the organizer role.
func (c *Client) Organizers(ctx context.Context) ([]model.User, error) {
	return getJSON[[]model.User](ctx, c, "/users/organizers", nil)
}

// Attendees lists users with the attendee role.
func (c *Client) Attendees(ctx context.Context) ([]model.User, error) {
	return getJSON[[]model.User](ctx, c, "/users/attendees", nil)
}

// UsersByRole lists users holding role.
func (c *Client) UsersByRole(ctx context.Context, role auth.Role) ([]model.User, error) {
	return getJSON[[]model.User](ctx, c, "/users/role/"+url.PathEscape(role.String()), nil)
}

// DeleteUser removes a user by ID.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	_, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: userPath(id)})
	return err
}

// DeleteCurrentUser removes the token holder's account and returns the
// backend's confirmation text.
func (c *Client) DeleteCurrentUser(ctx context.Context) (string, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: "/users/profile"})
	if err != nil {
		return "", err
	}
	return decodeString(resp)
}

func userPath(id int64) string {
	return fmt.Sprintf("/users/%d", id)
}
