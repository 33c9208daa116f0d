package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/joinify/joinify-go/internal/domain/model"
)

// Events lists every event.
func (c *Client) Events(ctx context.Context) ([]model.Event, error) {
	return getJSON[[]model.Event](ctx, c, "/events", nil)
}

// UpcomingEvents lists events that have not started.
func (c *Client) UpcomingEvents(ctx context.Context) ([]model.Event, error) {
	return getJSON[[]model.Event](ctx, c, "/events/upcoming", nil)
}

// PastEvents lists events that already started.
func (c *Client) PastEvents(ctx context.Context) ([]model.Event, error) {
	return getJSON[[]model.Event](ctx, c, "/events/past", nil)
}

// AvailableEvents lists events with free places.
func (c *Client) AvailableEvents(ctx context.Context) ([]model.Event, error) {
	return getJSON[[]model.Event](ctx, c, "/events/available", nil)
}

// EventByID fetches one event.
func (c *Client) EventByID(ctx context.Context, id int64) (model.Event, error) {
	return getJSON[model.Event](ctx, c, eventPath(id), nil)
}

// CreateEvent creates an event owned by the current organizer.
func (c *Client) CreateEvent(ctx context.Context, in model.EventInput) (model.Event, error) {
	return sendJSON[model.Event](ctx, c, Request{Method: http.MethodPost, Path: "/events", Body: in})
}

// UpdateEvent replaces an event's editable fields.
func (c *Client) UpdateEvent(ctx context.Context, id int64, in model.EventInput) (model.Event, error) {
	return sendJSON[model.Event](ctx, c, Request{Method: http.MethodPut, Path: eventPath(id), Body: in})
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	_, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: eventPath(id)})
	return err
}

// SearchEventsByTitle finds events whose title contains keyword.
func (c *Client) SearchEventsByTitle(ctx context.Context, keyword string) ([]model.Event, error) {
	return getJSON[[]model.Event](ctx, c, "/events/search/title", url.Values{"keyword": {keyword}})
}

// SearchEventsByLocation finds events whose location contains location.
func (c *Client) SearchEventsByLocation(ctx context.Context, location string) ([]model.Event, error) {
	return getJSON[[]model.Event](ctx, c, "/events/search/location", url.Values{"location": {location}})
}

// EventsByDateRange lists events starting between start and end, sent as
// zone-less local times.
func (c *Client) EventsByDateRange(ctx context.Context, start, end time.Time) ([]model.Event, error) {
	q := url.Values{
		"startDate": {start.In(time.Local).Format(model.LocalDateTimeLayout)},
		"endDate":   {end.In(time.Local).Format(model.LocalDateTimeLayout)},
	}
	return getJSON[[]model.Event](ctx, c, "/events/date-range", q)
}

// MyEvents lists the current organizer's events.
func (c *Client) MyEvents(ctx context.Context) ([]model.Event, error) {
	return getJSON[[]model.Event](ctx, c, "/events/my-events", nil)
}

// MyUpcomingEvents lists the current organizer's upcoming events.
func (c *Client) MyUpcomingEvents(ctx context.Context) ([]model.Event, error) {
	return getJSON[[]model.Event](ctx, c, "/events/my-events/upcoming", nil)
}

// MyPastEvents lists the current organizer's past events.
func (c *Client) MyPastEvents(ctx context.Context) ([]model.Event, error) {
	return getJSON[[]model.Event](ctx, c, "/events/my-events/past", nil)
}

// EventsByOrganizer lists events owned by organizerID.
func (c *Client) EventsByOrganizer(ctx context.Context, organizerID int64) ([]model.Event, error) {
	return getJSON[[]model.Event](ctx, c, fmt.Sprintf("/events/organizer/%d", organizerID), nil)
}

// EventCapacity returns the capacity summary of an event.
func (c *Client) EventCapacity(ctx context.Context, id int64) (model.EventCapacity, error) {
	return getJSON[model.EventCapacity](ctx, c, eventPath(id)+"/capacity", nil)
}

func eventPath(id int64) string {
	return fmt.Sprintf("/events/%d", id)
}
