package service

import (
	"context"

	"github.com/joinify/joinify-go/internal/domain/auth"
)

// Destinations a user can be routed to.
const (
	DestinationOrganizer = "dashboard-organizer"
	DestinationAttendee  = "dashboard-attendee"
	DestinationIndex     = "index"
)

// DestinationFor maps a role to its landing dashboard. Unknown and empty
// roles land on the generic index.
func DestinationFor(role auth.Role) string {
	switch role {
	case auth.RoleOrganizer:
		return DestinationOrganizer
	case auth.RoleAttendee:
		return DestinationAttendee
	default:
		return DestinationIndex
	}
}

// DashboardLabel is the navigation label for a role's dashboard.
func DashboardLabel(role auth.Role) string {
	switch role {
	case auth.RoleOrganizer:
		return "Organizer Dashboard"
	case auth.RoleAttendee:
		return "My Events"
	default:
		return "Dashboard"
	}
}

// Navigator decides where the current session should land.
type Navigator struct {
	sessions *SessionManager
}

// NewNavigator constructs a Navigator.
func NewNavigator(sessions *SessionManager) *Navigator {
	return &Navigator{sessions: sessions}
}

// Destination returns the landing page for the current session.
func (n *Navigator) Destination(ctx context.Context) string {
	if !n.sessions.IsLoggedIn(ctx) {
		return DestinationIndex
	}
	return DestinationFor(n.sessions.CurrentRole(ctx))
}

// Guard re-validates the session and checks it holds want. It returns the
// destination to redirect to and false when access is denied.
func (n *Navigator) Guard(ctx context.Context, want auth.Role) (string, bool) {
	if _, err := n.sessions.CheckAuthStatus(ctx); err != nil {
		return DestinationIndex, false
	}
	if !n.sessions.IsLoggedIn(ctx) || n.sessions.CurrentRole(ctx) != want {
		return DestinationIndex, false
	}
	return "", true
}
