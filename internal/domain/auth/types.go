package auth

// Package auth contains domain-level types for client authentication and sessions.
// It is pure and free of transport/storage concerns.

import "strings"

// Role represents a Joinify account role.
// Keep string form so it round-trips through JSON and token claims unchanged.
type Role string

const (
	RoleOrganizer Role = "ORGANIZER"
	RoleAttendee  Role = "ATTENDEE"
	// RoleNone is the null role: nothing could be resolved.
	RoleNone Role = ""
)

// ParseRole normalizes typed user input (trimmed, upper-cased). Roles from
// the backend and from token claims are kept exactly as sent.
// Unknown values are returned as-is so callers can treat them as unrecognized.
func ParseRole(s string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(s)))
}

// IsKnown reports whether the role is part of the closed set.
func (r Role) IsKnown() bool {
	return r == RoleOrganizer || r == RoleAttendee
}

func (r Role) String() string { return string(r) }

// SessionState is the client's authentication state.
type SessionState int

const (
	LoggedOut SessionState = iota
	LoggedIn
)

func (s SessionState) String() string {
	if s == LoggedIn {
		return "LoggedIn"
	}
	return "LoggedOut"
}

// User is the cached identity returned by login or the profile endpoint.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Credentials are submitted by the login form.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is submitted by the sign-up form.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// Session is a point-in-time snapshot of the client session.
// Token is empty when absent; User is nil when no identity is cached.
type Session struct {
	Token string
	User  *User
	State SessionState
}

// HasToken reports whether a bearer token is held.
func (s Session) HasToken() bool { return s.Token != "" }
