package model

import "time"

// UserRef is the embedded user summary carried on events and RSVPs.
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Event is an organizer-created gathering attendees can RSVP to.
type Event struct {
	ID          int64    `json:"id"                    validate:"required"`
	Title       string   `json:"title"                 validate:"required"`
	Description string   `json:"description,omitempty"`
	DateTime    DateTime `json:"dateTime"`
	Location    string   `json:"location"`
	MaxCapacity int      `json:"maxCapacity"           validate:"gte=0"`
	Fee         float64  `json:"fee"                   validate:"gte=0"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Organizer   *UserRef `json:"organizer,omitempty"`
}

// IsUpcoming reports whether the event starts after now.
func (e Event) IsUpcoming(now time.Time) bool {
	return e.DateTime.After(now)
}

// OrganizerName returns the organizer's username or "Unknown".
func (e Event) OrganizerName() string {
	if e.Organizer == nil || e.Organizer.Username == "" {
		return "Unknown"
	}
	return e.Organizer.Username
}

// EventInput is the payload for creating or updating an event.
type EventInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	DateTime    DateTime `json:"dateTime"`
	Location    string   `json:"location"`
	MaxCapacity int      `json:"maxCapacity"`
	Fee         float64  `json:"fee"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

// InputFromEvent builds an update payload prefilled from an existing event.
func InputFromEvent(e Event) EventInput {
	return EventInput{
		Title:       e.Title,
		Description: e.Description,
		DateTime:    e.DateTime,
		Location:    e.Location,
		MaxCapacity: e.MaxCapacity,
		Fee:         e.Fee,
		ImageURL:    e.ImageURL,
	}
}

// EventCapacity is the backend's capacity summary for one event.
type EventCapacity struct {
	MaxCapacity        int   `json:"maxCapacity"        validate:"gte=0"`
	ConfirmedAttendees int64 `json:"confirmedAttendees" validate:"gte=0"`
	AvailableSpots     int   `json:"availableSpots"`
	AtCapacity         bool  `json:"atCapacity"`
}
