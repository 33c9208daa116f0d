package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/joinify/joinify-go/internal/errors"
)

func TestDecode_EventList(t *testing.T) {
	body := []byte(`[
		{"id": 1, "title": "Go Meetup", "dateTime": "2030-05-01T18:30:00", "location": "Hall A",
		 "maxCapacity": 50, "fee": 0, "organizer": {"id": 7, "username": "olga"}},
		{"id": 2, "title": "Rust Night", "dateTime": "2030-05-02T18:30:00Z", "location": "Hall B",
		 "maxCapacity": 20}
	]`)

	events, err := Decode[[]Event](body)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "olga", events[0].OrganizerName())
	assert.Equal(t, "Unknown", events[1].OrganizerName())
	assert.Equal(t, 2030, events[0].DateTime.Year())
	assert.Equal(t, time.UTC, events[1].DateTime.Location())
}

func TestDecode_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing title", body: `{"id": 1, "dateTime": "2030-05-01T18:30:00"}`},
		{name: "wrong type", body: `{"id": "one", "title": "x"}`},
		{name: "bad date", body: `{"id": 1, "title": "x", "dateTime": "tomorrow"}`},
		{name: "negative fee", body: `{"id": 1, "title": "x", "fee": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode[Event]([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, apperrors.IsParse(err), "expected parse error, got %v", err)
		})
	}
}

func TestDecode_RSVPStatus(t *testing.T) {
	_, err := Decode[RSVP]([]byte(`{"id": 3, "event": {"id": 1, "title": "x"}, "status": "MAYBE"}`))
	require.Error(t, err)
	assert.True(t, apperrors.IsParse(err))

	r, err := Decode[RSVP]([]byte(`{"id": 3, "event": {"id": 1, "title": "x"}, "status": "CONFIRMED"}`))
	require.NoError(t, err)
	assert.True(t, r.Status.Valid())
}

func TestRSVPCount_Capacity(t *testing.T) {
	c := RSVPCount{Confirmed: 10, Total: 12}
	assert.Equal(t, 5, c.SpotsRemaining(15))
	assert.False(t, c.IsAtCapacity(15))
	assert.Equal(t, 0, c.SpotsRemaining(8))
	assert.True(t, c.IsAtCapacity(10))

	avail := 3
	full := true
	c = RSVPCount{Confirmed: 1, Available: &avail, AtCapacity: &full}
	assert.Equal(t, 3, c.SpotsRemaining(100))
	assert.True(t, c.IsAtCapacity(100))
}

func TestDateTime_MarshalLocal(t *testing.T) {
	d := NewDateTime(time.Date(2030, 1, 2, 15, 4, 0, 0, time.Local))
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2030-01-02T15:04:00"`, string(b))

	var back DateTime
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, d.Equal(back.Time))

	b, err = json.Marshal(DateTime{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}
