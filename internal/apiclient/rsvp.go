package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/joinify/joinify-go/internal/domain/model"
	apperrors "github.com/joinify/joinify-go/internal/errors"
)

// CreateRSVP registers the current user for an event. A duplicate RSVP
// comes back as a conflict error.
func (c *Client) CreateRSVP(ctx context.Context, eventID int64) (model.RSVP, error) {
	return sendJSON[model.RSVP](ctx, c, Request{Method: http.MethodPost, Path: rsvpPath(eventID)})
}

// CancelRSVP withdraws the current user's RSVP.
func (c *Client) CancelRSVP(ctx context.Context, eventID int64) error {
	_, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: rsvpPath(eventID)})
	return err
}

// UpdateRSVPStatus changes the current user's RSVP status for an event.
func (c *Client) UpdateRSVPStatus(ctx context.Context, eventID int64, status model.RSVPStatus) (model.RSVP, error) {
	return sendJSON[model.RSVP](ctx, c, Request{
		Method: http.MethodPut,
		Path:   rsvpPath(eventID) + "/status",
		Query:  url.Values{"status": {status.String()}},
	})
}

// RSVPStatus returns the current user's RSVP status for an event.
func (c *Client) RSVPStatus(ctx context.Context, eventID int64) (model.RSVPStatus, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: rsvpPath(eventID) + "/status"})
	if err != nil {
		return "", err
	}
	s, err := decodeString(resp)
	if err != nil {
		return "", err
	}
	status := model.RSVPStatus(s)
	if !status.Valid() {
		return "", apperrors.Parsef("unknown rsvp status %q", s)
	}
	return status, nil
}

// CheckRSVP reports whether the current user has RSVP'd to an event.
func (c *Client) CheckRSVP(ctx context.Context, eventID int64) (bool, error) {
	return c.getBool(ctx, rsvpPath(eventID)+"/check")
}

// EventRSVPs lists every RSVP for an event.
func (c *Client) EventRSVPs(ctx context.Context, eventID int64) ([]model.RSVP, error) {
	return getJSON[[]model.RSVP](ctx, c, rsvpPath(eventID), nil)
}

// EventAttendees lists confirmed attendees of an event.
func (c *Client) EventAttendees(ctx context.Context, eventID int64) ([]model.User, error) {
	return getJSON[[]model.User](ctx, c, rsvpPath(eventID)+"/attendees", nil)
}

// PendingRSVPs lists pending RSVPs for an event.
func (c *Client) PendingRSVPs(ctx context.Context, eventID int64) ([]model.RSVP, error) {
	return getJSON[[]model.RSVP](ctx, c, rsvpPath(eventID)+"/pending", nil)
}

// MyRSVPs lists the current user's RSVPs.
func (c *Client) MyRSVPs(ctx context.Context) ([]model.RSVP, error) {
	return getJSON[[]model.RSVP](ctx, c, "/rsvp/my-rsvps", nil)
}

// MyUpcomingRSVPs lists the current user's RSVPs for upcoming events.
func (c *Client) MyUpcomingRSVPs(ctx context.Context) ([]model.RSVP, error) {
	return getJSON[[]model.RSVP](ctx, c, "/rsvp/my-rsvps/upcoming", nil)
}

// MyPastRSVPs lists the current user's RSVPs for past events.
func (c *Client) MyPastRSVPs(ctx context.Context) ([]model.RSVP, error) {
	return getJSON[[]model.RSVP](ctx, c, "/rsvp/my-rsvps/past", nil)
}

// RSVPCount returns the RSVP aggregate for an event.
func (c *Client) RSVPCount(ctx context.Context, eventID int64) (model.RSVPCount, error) {
	return getJSON[model.RSVPCount](ctx, c, rsvpPath(eventID)+"/count", nil)
}

// ConfirmPendingRSVPs confirms every pending RSVP of an event and returns them.
func (c *Client) ConfirmPendingRSVPs(ctx context.Context, eventID int64) ([]model.RSVP, error) {
	return sendJSON[[]model.RSVP](ctx, c, Request{Method: http.MethodPost, Path: rsvpPath(eventID) + "/confirm-pending"})
}

func rsvpPath(eventID int64) string {
	return fmt.Sprintf("/rsvp/event/%d", eventID)
}
