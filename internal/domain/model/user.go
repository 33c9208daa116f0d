package model

// User is a Joinify account as returned by the users endpoints.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// UserStats is the platform-wide user breakdown.
type UserStats struct {
	Total      int64 `json:"total"      validate:"gte=0"`
	Organizers int64 `json:"organizers" validate:"gte=0"`
	Attendees  int64 `json:"attendees"  validate:"gte=0"`
}

// LoginResponse is returned by the login endpoint. Token is empty on failure.
type LoginResponse struct {
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	Message  string `json:"message,omitempty"`
}

// RegisterResponse is returned by the registration endpoint.
type RegisterResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ProfileUpdate is the payload for updating the current user's profile.
type ProfileUpdate struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}
