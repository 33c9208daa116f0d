package service

import (
	"context"

	"github.com/joinify/joinify-go/internal/apiclient"
	"github.com/joinify/joinify-go/internal/domain/auth"
	"github.com/joinify/joinify-go/internal/domain/model"
)

// SessionAPI is the backend surface used by SessionManager.
type SessionAPI interface {
	Login(ctx context.Context, creds auth.Credentials) (model.LoginResponse, error)
	Register(ctx context.Context, reg auth.Registration) (model.RegisterResponse, error)
	CurrentUser(ctx context.Context) (model.User, error)
}

// HomeAPI is the backend surface used by HomeDashboard.
type HomeAPI interface {
	UpcomingEvents(ctx context.Context) ([]model.Event, error)
	UserStats(ctx context.Context) (model.UserStats, error)
}

// AttendeeAPI is the backend surface used by AttendeeDashboard.
type AttendeeAPI interface {
	CurrentUser(ctx context.Context) (model.User, error)
	UpcomingEvents(ctx context.Context) ([]model.Event, error)
	MyRSVPs(ctx context.Context) ([]model.RSVP, error)
	MyUpcomingRSVPs(ctx context.Context) ([]model.RSVP, error)
	MyPastRSVPs(ctx context.Context) ([]model.RSVP, error)
	EventByID(ctx context.Context, id int64) (model.Event, error)
	EventCapacity(ctx context.Context, id int64) (model.EventCapacity, error)
	CreateRSVP(ctx context.Context, eventID int64) (model.RSVP, error)
	CancelRSVP(ctx context.Context, eventID int64) error
}

// OrganizerAPI is the backend surface used by OrganizerDashboard.
type OrganizerAPI interface {
	CurrentUser(ctx context.Context) (model.User, error)
	MyEvents(ctx context.Context) ([]model.Event, error)
	EventByID(ctx context.Context, id int64) (model.Event, error)
	EventAttendees(ctx context.Context, eventID int64) ([]model.User, error)
	CreateEvent(ctx context.Context, in model.EventInput) (model.Event, error)
	UpdateEvent(ctx context.Context, id int64, in model.EventInput) (model.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
}

var (
	_ SessionAPI   = (*apiclient.Client)(nil)
	_ HomeAPI      = (*apiclient.Client)(nil)
	_ AttendeeAPI  = (*apiclient.Client)(nil)
	_ OrganizerAPI = (*apiclient.Client)(nil)
)
