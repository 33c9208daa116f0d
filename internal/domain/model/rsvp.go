package model

// RSVPStatus is the server-driven lifecycle state of an RSVP.
type RSVPStatus string

const (
	RSVPStatusPending   RSVPStatus = "PENDING"
	RSVPStatusConfirmed RSVPStatus = "CONFIRMED"
	RSVPStatusCancelled RSVPStatus = "CANCELLED"
	RSVPStatusAttended  RSVPStatus = "ATTENDED"
)

// Valid returns true if the status is one of the supported values.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPStatusPending, RSVPStatusConfirmed, RSVPStatusCancelled, RSVPStatusAttended:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s RSVPStatus) String() string {
	return string(s)
}

// RSVP is a user's declared intent to attend an event.
type RSVP struct {
	ID       int64      `json:"id"`
	Event    Event      `json:"event"`
	User     *UserRef   `json:"user,omitempty"`
	Status   RSVPStatus `json:"status"             validate:"required,oneof=PENDING CONFIRMED CANCELLED ATTENDED"`
	RSVPDate *DateTime  `json:"rsvpDate,omitempty"`
}

// RSVPCount is the per-event RSVP aggregate. Available and AtCapacity are
// only present when the backend computes them.
type RSVPCount struct {
	Confirmed  int64 `json:"confirmed"            validate:"gte=0"`
	Pending    int64 `json:"pending"              validate:"gte=0"`
	Total      int64 `json:"total"                validate:"gte=0"`
	Available  *int  `json:"available,omitempty"`
	AtCapacity *bool `json:"atCapacity,omitempty"`
}

// SpotsRemaining returns the open places for an event of the given capacity.
func (c RSVPCount) SpotsRemaining(maxCapacity int) int {
	if c.Available != nil {
		return max(*c.Available, 0)
	}
	return max(maxCapacity-int(c.Confirmed), 0)
}

// IsAtCapacity reports whether no places remain.
func (c RSVPCount) IsAtCapacity(maxCapacity int) bool {
	if c.AtCapacity != nil {
		return *c.AtCapacity
	}
	return c.SpotsRemaining(maxCapacity) == 0
}
