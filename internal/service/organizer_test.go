package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joinify/joinify-go/internal/domain/model"
	apperrors "github.com/joinify/joinify-go/internal/errors"
	"github.com/joinify/joinify-go/internal/testutil"
	"github.com/joinify/joinify-go/internal/validation"
)

func newOrganizerDashboard(t *testing.T, f *fixture) *OrganizerDashboard {
	t.Helper()
	d, err := NewOrganizerDashboard(OrganizerDashboardOptions{
		API:      f.client,
		Sessions: f.sessions,
		Sink:     f.notices,
		Now:      fixedNow,
	})
	require.NoError(t, err)
	return d
}

func attendees(n int) []model.User {
	out := make([]model.User, n)
	for i := range out {
		out[i] = model.User{ID: int64(i + 10), Username: fmt.Sprintf("guest%d", i), Email: fmt.Sprintf("g%d@x.com", i), Role: "ATTENDEE"}
	}
	return out
}

func seedOrganizer(f *fixture) []model.Event {
	events := []model.Event{
		testutil.NewEvent(1).Build(),
		testutil.NewEvent(2).WithTitle("Rust Night").Build(),
		testutil.NewEvent(3).WithTitle("Retro").WithCapacity(100).At(fixedNow().Add(-48 * time.Hour)).Build(),
	}
	f.backend.JSON(http.MethodGet, "/users/profile", http.StatusOK, model.User{ID: 1, Username: "olga", Role: "ORGANIZER"})
	f.backend.JSON(http.MethodGet, "/events/my-events", http.StatusOK, events)
	f.backend.JSON(http.MethodGet, "/rsvp/event/1/attendees", http.StatusOK, attendees(2))
	f.backend.JSON(http.MethodGet, "/rsvp/event/2/attendees", http.StatusOK, []model.User{})
	f.backend.JSON(http.MethodGet, "/rsvp/event/3/attendees", http.StatusOK, attendees(3))
	return events
}

func validInput() model.EventInput {
	return model.EventInput{
		Title:       "Go Meetup",
		DateTime:    model.NewDateTime(fixedNow().Add(24 * time.Hour)),
		Location:    "Main Hall",
		MaxCapacity: 50,
	}
}

func TestNewOrganizerDashboard_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := NewOrganizerDashboard(OrganizerDashboardOptions{Sessions: f.sessions})
	require.EqualError(t, err, "organizer api is required")
	_, err = NewOrganizerDashboard(OrganizerDashboardOptions{API: f.client})
	require.EqualError(t, err, "session manager is required")
}

func TestStatusOf(t *testing.T) {
	now := fixedNow()
	assert.Equal(t, StatusPast, StatusOf(testutil.NewEvent(1).At(now.Add(-time.Minute)).Build(), now))
	assert.Equal(t, StatusUpcoming, StatusOf(testutil.NewEvent(1).At(now.Add(time.Minute)).Build(), now))
	assert.Equal(t, StatusLive, StatusOf(testutil.NewEvent(1).At(now).Build(), now))
}

func TestOrganizerDashboard_Load(t *testing.T) {
	f := newFixture(t)
	f.loginAs(t, "ORGANIZER")
	seedOrganizer(f)

	view := newOrganizerDashboard(t, f).Load(context.Background())

	require.NoError(t, view.EventsErr)
	require.NoError(t, view.StatsErr)
	require.NotNil(t, view.User)
	assert.Equal(t, "olga", view.User.Username)
	// 5 attendees over 200 seats rounds 2.5% up.
	assert.Equal(t, OrganizerStats{TotalEvents: 3, UpcomingEvents: 2, TotalAttendees: 5, AverageAttendance: 3}, view.Stats)

	require.Len(t, view.Recent, 3)
	assert.Equal(t, 2, view.Recent[0].Attendees)
	assert.Equal(t, StatusUpcoming, view.Recent[0].Status)
	assert.Equal(t, 0, view.Recent[1].Attendees)
	assert.Equal(t, StatusPast, view.Recent[2].Status)
	assert.Len(t, view.Events, 3)
}

func TestOrganizerDashboard_LoadAttendeeFailure(t *testing.T) {
	f := newFixture(t)
	f.loginAs(t, "ORGANIZER")
	seedOrganizer(f)
	f.backend.JSON(http.MethodGet, "/rsvp/event/2/attendees", http.StatusInternalServerError, map[string]string{"message": "boom"})

	d := newOrganizerDashboard(t, f)
	view := d.Load(context.Background())

	require.Error(t, view.StatsErr)
	require.Error(t, view.RecentErr)
	require.NoError(t, view.EventsErr)
	assert.Len(t, view.Events, 3)
	assert.Same(t, view, d.View())
}

func TestOrganizerDashboard_LoadEventsFailure(t *testing.T) {
	f := newFixture(t)
	f.loginAs(t, "ORGANIZER")
	f.backend.JSON(http.MethodGet, "/events/my-events", http.StatusForbidden, map[string]string{"message": "denied"})

	view := newOrganizerDashboard(t, f).Load(context.Background())

	assert.True(t, apperrors.IsForbidden(view.EventsErr))
	assert.Equal(t, view.EventsErr, view.StatsErr)
	assert.Equal(t, view.EventsErr, view.RecentErr)
	assert.Nil(t, view.User)
}

func TestOrganizerDashboard_RecentLimit(t *testing.T) {
	f := newFixture(t)
	var events []model.Event
	for i := int64(1); i <= 7; i++ {
		events = append(events, testutil.NewEvent(i).Build())
		f.backend.JSON(http.MethodGet, fmt.Sprintf("/rsvp/event/%d/attendees", i), http.StatusOK, attendees(1))
	}
	f.backend.JSON(http.MethodGet, "/events/my-events", http.StatusOK, events)

	view := newOrganizerDashboard(t, f).Load(context.Background())
	assert.Len(t, view.Recent, RecentEventLimit)
	assert.Equal(t, 7, view.Stats.TotalEvents)
	assert.Equal(t, 7, view.Stats.TotalAttendees)
}

func TestOrganizerDashboard_Analytics(t *testing.T) {
	f := newFixture(t)
	var events []model.Event
	for i := int64(1); i <= 12; i++ {
		b := testutil.NewEvent(i)
		if i%3 == 0 {
			b.At(fixedNow().Add(-time.Duration(i) * time.Hour))
		}
		events = append(events, b.Build())
		f.backend.JSON(http.MethodGet, fmt.Sprintf("/rsvp/event/%d/attendees", i), http.StatusOK, attendees(int(i%4)))
	}
	f.backend.JSON(http.MethodGet, "/events/my-events", http.StatusOK, events)

	got, err := newOrganizerDashboard(t, f).Analytics(context.Background())
	require.NoError(t, err)
	assert.Len(t, got.Attendance, AnalyticsEventLimit)
	assert.Equal(t, 8, got.Upcoming)
	assert.Equal(t, 4, got.Past)
	assert.Equal(t, 1, got.Attendance[0].Attendees)
	assert.Equal(t, StatusPast, got.Attendance[2].Status)
	assert.Zero(t, f.backend.Count(http.MethodGet, "/rsvp/event/11/attendees"))
}

func TestOrganizerDashboard_CreateEvent(t *testing.T) {
	f := newFixture(t)
	created := testutil.NewEvent(42).Build()
	f.backend.JSON(http.MethodPost, "/events", http.StatusCreated, created)

	ev, err := newOrganizerDashboard(t, f).CreateEvent(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, int64(42), ev.ID)
	assert.Equal(t, []string{MsgEventCreated}, f.notices.Messages())
}

func TestOrganizerDashboard_CreateEventInvalid(t *testing.T) {
	f := newFixture(t)
	in := validInput()
	in.Title = ""
	in.MaxCapacity = 0
	in.DateTime = model.NewDateTime(fixedNow().Add(-time.Hour))

	_, err := newOrganizerDashboard(t, f).CreateEvent(context.Background(), in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Title is required", validation.MsgDateNotFuture, validation.MsgCapacityTooSmall}, verr.Messages)
	assert.Equal(t, "Title is required; Event date must be in the future; Maximum capacity must be at least 1", err.Error())
	assert.Zero(t, f.backend.Count(http.MethodPost, "/events"))
	assert.Empty(t, f.notices.Messages())
}

func TestOrganizerDashboard_UpdateEvent(t *testing.T) {
	f := newFixture(t)
	updated := testutil.NewEvent(7).WithTitle("Go Meetup II").Build()
	f.backend.JSON(http.MethodPut, "/events/7", http.StatusOK, updated)
	in := validInput()
	in.Title = "Go Meetup II"

	ev, err := newOrganizerDashboard(t, f).UpdateEvent(context.Background(), 7, in)
	require.NoError(t, err)
	assert.Equal(t, "Go Meetup II", ev.Title)
	assert.Equal(t, []string{MsgEventUpdated}, f.notices.Messages())
}

func TestOrganizerDashboard_DeleteEvent(t *testing.T) {
	f := newFixture(t)
	f.backend.Handle(http.MethodDelete, "/events/3", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	f.backend.JSON(http.MethodDelete, "/events/4", http.StatusForbidden, map[string]string{"message": "not your event"})
	d := newOrganizerDashboard(t, f)

	require.NoError(t, d.DeleteEvent(context.Background(), 3))
	assert.Equal(t, []string{MsgEventDeleted}, f.notices.Messages())

	err := d.DeleteEvent(context.Background(), 4)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Len(t, f.notices.Messages(), 1)
}

func TestOrganizerDashboard_ExportAttendees(t *testing.T) {
	f := newFixture(t)
	f.backend.JSON(http.MethodGet, "/events/1", http.StatusOK, testutil.NewEvent(1).Build())
	f.backend.JSON(http.MethodGet, "/rsvp/event/1/attendees", http.StatusOK, attendees(2))

	var buf bytes.Buffer
	name, err := newOrganizerDashboard(t, f).ExportAttendees(context.Background(), 1, &buf)
	require.NoError(t, err)
	assert.Equal(t, "go-meetup-attendees.csv", name)

	out := buf.String()
	assert.Contains(t, out, `"Event","Go Meetup"`)
	assert.Contains(t, out, `"Attendees","2/50"`)
	assert.Contains(t, out, `"Username","Email","Role"`+"\r\n")
	assert.Contains(t, out, `"guest1","g1@x.com","ATTENDEE"`)
	assert.Contains(t, out, `"Total","2"`)
}

func TestOrganizerDashboard_ExportAttendeesMissingEvent(t *testing.T) {
	f := newFixture(t)
	f.backend.JSON(http.MethodGet, "/rsvp/event/1/attendees", http.StatusOK, attendees(1))

	var buf bytes.Buffer
	_, err := newOrganizerDashboard(t, f).ExportAttendees(context.Background(), 1, &buf)
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestFilterEvents(t *testing.T) {
	events := []model.Event{
		testutil.NewEvent(1).Build(),
		testutil.NewEvent(2).WithTitle("Jazz").WithLocation("Blue Room").Build(),
		testutil.NewEvent(3).WithTitle("Jazz Brunch").At(fixedNow().Add(-time.Hour)).Build(),
	}
	assert.Equal(t, []int64{1, 2, 3}, eventIDs(FilterEvents(events, "", EventsAll, fixedNow())))
	assert.Equal(t, []int64{2, 3}, eventIDs(FilterEvents(events, "jazz", EventsAll, fixedNow())))
	assert.Equal(t, []int64{2}, eventIDs(FilterEvents(events, "jazz", EventsUpcoming, fixedNow())))
	assert.Equal(t, []int64{2}, eventIDs(FilterEvents(events, "blue", EventsAll, fixedNow())))
}
