// Package testutil provides testing utilities and helpers for the Joinify client.
package testutil

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/joinify/joinify-go/internal/domain/model"
)

// Token builds an unsigned JWT-shaped token whose payload segment carries claims.
func Token(claims map[string]any) string {
	payload, err := json.Marshal(claims)
	if err != nil {
		panic(err)
	}
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString(payload) + ".c2ln"
}

// EventBuilder provides a fluent interface for building events for testing.
type EventBuilder struct {
	ev model.Event
}

// NewEvent creates an EventBuilder with sensible defaults: a 50-seat event a day after TestTime.
func NewEvent(id int64) *EventBuilder {
	return &EventBuilder{
		ev: model.Event{
			ID:          id,
			Title:       "Go Meetup",
			Description: "Monthly gathering",
			DateTime:    model.NewDateTime(TestTime().Add(24 * time.Hour)),
			Location:    "Main Hall",
			MaxCapacity: 50,
			Organizer:   &model.UserRef{ID: 1, Username: "olga"},
		},
	}
}

// WithTitle sets the title.
func (b *EventBuilder) WithTitle(title string) *EventBuilder {
	b.ev.Title = title
	return b
}

// WithDescription sets the description.
func (b *EventBuilder) WithDescription(desc string) *EventBuilder {
	b.ev.Description = desc
	return b
}

// WithLocation sets the location.
func (b *EventBuilder) WithLocation(loc string) *EventBuilder {
	b.ev.Location = loc
	return b
}

// At sets the start time.
func (b *EventBuilder) At(t time.Time) *EventBuilder {
	b.ev.DateTime = model.NewDateTime(t)
	return b
}

// WithCapacity sets the maximum capacity.
func (b *EventBuilder) WithCapacity(n int) *EventBuilder {
	b.ev.MaxCapacity = n
	return b
}

// Build returns the event.
func (b *EventBuilder) Build() model.Event {
	return b.ev
}

// RSVPFor wraps an event in an RSVP with the given status.
func RSVPFor(id int64, ev model.Event, status model.RSVPStatus) model.RSVP {
	return model.RSVP{ID: id, Event: ev, Status: status}
}
