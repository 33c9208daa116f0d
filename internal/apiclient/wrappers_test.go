package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joinify/joinify-go/internal/domain/auth"
	"github.com/joinify/joinify-go/internal/domain/model"
	apperrors "github.com/joinify/joinify-go/internal/errors"
	"github.com/joinify/joinify-go/internal/testutil"
)

func TestLoginSendsCredentials(t *testing.T) {
	b := testutil.NewBackend(t)
	b.JSON(http.MethodPost, "/auth/login", http.StatusOK, map[string]string{
		"token": "abc.def.ghi", "username": "bob", "email": "b@x.com", "role": "ATTENDEE",
	})
	c, _ := newTestClient(t, b, nil)

	resp, err := c.Login(context.Background(), auth.Credentials{Username: "bob", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", resp.Token)
	assert.Equal(t, "ATTENDEE", resp.Role)

	var sent map[string]string
	require.NoError(t, json.Unmarshal(b.Requests()[0].Body, &sent))
	assert.Equal(t, map[string]string{"username": "bob", "password": "secret1"}, sent)
}

func TestLoginRejected(t *testing.T) {
	b := testutil.NewBackend(t)
	b.JSON(http.MethodPost, "/auth/login", http.StatusUnauthorized, map[string]string{"message": "Invalid username or password"})
	c, _ := newTestClient(t, b, nil)

	_, err := c.Login(context.Background(), auth.Credentials{Username: "bob", Password: "nope"})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, "Invalid username or password", err.Error())
}

func TestCheckUsernameAndEmail(t *testing.T) {
	b := testutil.NewBackend(t)
	b.JSON(http.MethodGet, "/auth/check-username/bob", http.StatusOK, true)
	b.Text(http.MethodGet, "/auth/check-email/b@x.com", http.StatusOK, "false")
	c, _ := newTestClient(t, b, nil)

	taken, err := c.CheckUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = c.CheckEmail(context.Background(), "b@x.com")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestEventQueries(t *testing.T) {
	b := testutil.NewBackend(t)
	ev := testutil.NewEvent(3).Build()
	for _, p := range []string{
		"/events", "/events/upcoming", "/events/past", "/events/available",
		"/events/search/title", "/events/search/location", "/events/date-range",
		"/events/my-events", "/events/my-events/upcoming", "/events/my-events/past",
		"/events/organizer/1",
	} {
		b.JSON(http.MethodGet, p, http.StatusOK, []model.Event{ev})
	}
	c, _ := newTestClient(t, b, StaticToken("tok"))
	ctx := context.Background()

	calls := []func() ([]model.Event, error){
		func() ([]model.Event, error) { return c.Events(ctx) },
		func() ([]model.Event, error) { return c.UpcomingEvents(ctx) },
		func() ([]model.Event, error) { return c.PastEvents(ctx) },
		func() ([]model.Event, error) { return c.AvailableEvents(ctx) },
		func() ([]model.Event, error) { return c.SearchEventsByTitle(ctx, "go & rust") },
		func() ([]model.Event, error) { return c.SearchEventsByLocation(ctx, "Main Hall") },
		func() ([]model.Event, error) {
			start := time.Date(2030, 5, 1, 18, 30, 0, 0, time.Local)
			return c.EventsByDateRange(ctx, start, start.Add(48*time.Hour))
		},
		func() ([]model.Event, error) { return c.MyEvents(ctx) },
		func() ([]model.Event, error) { return c.MyUpcomingEvents(ctx) },
		func() ([]model.Event, error) { return c.MyPastEvents(ctx) },
		func() ([]model.Event, error) { return c.EventsByOrganizer(ctx, 1) },
	}
	for i, call := range calls {
		got, err := call()
		require.NoError(t, err, "call %d", i)
		require.Len(t, got, 1)
		assert.Equal(t, ev.Title, got[0].Title)
	}

	queries := map[string]string{}
	for _, r := range b.Requests() {
		queries[r.Path] = r.Query
	}
	assert.Equal(t, "keyword=go+%26+rust", queries["/events/search/title"])
	assert.Equal(t, "location=Main+Hall", queries["/events/search/location"])
	assert.Equal(t, "endDate=2030-05-03T18%3A30%3A00&startDate=2030-05-01T18%3A30%3A00", queries["/events/date-range"])
}

func TestEventMutations(t *testing.T) {
	b := testutil.NewBackend(t)
	ev := testutil.NewEvent(5).Build()
	b.JSON(http.MethodPost, "/events", http.StatusCreated, ev)
	b.JSON(http.MethodPut, "/events/5", http.StatusOK, ev)
	b.Handle(http.MethodDelete, "/events/5", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c, _ := newTestClient(t, b, StaticToken("tok"))
	ctx := context.Background()

	created, err := c.CreateEvent(ctx, model.InputFromEvent(ev))
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)

	_, err = c.UpdateEvent(ctx, 5, model.InputFromEvent(ev))
	require.NoError(t, err)

	require.NoError(t, c.DeleteEvent(ctx, 5))

	var sent map[string]any
	require.NoError(t, json.Unmarshal(b.Requests()[0].Body, &sent))
	assert.Equal(t, ev.Title, sent["title"])
	assert.Equal(t, ev.DateTime.In(time.Local).Format(model.LocalDateTimeLayout), sent["dateTime"])
}

func TestUserRoutes(t *testing.T) {
	b := testutil.NewBackend(t)
	user := model.User{ID: 2, Username: "bob", Email: "b@x.com", Role: "ATTENDEE"}
	b.JSON(http.MethodGet, "/users/stats", http.StatusOK, model.UserStats{Total: 3, Organizers: 1, Attendees: 2})
	b.JSON(http.MethodGet, "/users/profile", http.StatusOK, user)
	b.JSON(http.MethodPut, "/users/profile", http.StatusOK, user)
	b.JSON(http.MethodGet, "/users/2", http.StatusOK, user)
	for _, p := range []string{"/users", "/users/organizers", "/users/attendees", "/users/role/ATTENDEE"} {
		b.JSON(http.MethodGet, p, http.StatusOK, []model.User{user})
	}
	b.Handle(http.MethodDelete, "/users/2", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	b.Text(http.MethodDelete, "/users/profile", http.StatusOK, "Account deleted successfully")
	c, _ := newTestClient(t, b, StaticToken("tok"))
	ctx := context.Background()

	stats, err := c.UserStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)

	me, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", me.Username)

	_, err = c.UpdateProfile(ctx, model.ProfileUpdate{Email: "b@x.com"})
	require.NoError(t, err)

	_, err = c.UserByID(ctx, 2)
	require.NoError(t, err)

	for _, list := range []func(context.Context) ([]model.User, error){c.Users, c.Organizers, c.Attendees} {
		got, listErr := list(ctx)
		require.NoError(t, listErr)
		assert.Len(t, got, 1)
	}
	byRole, err := c.UsersByRole(ctx, auth.RoleAttendee)
	require.NoError(t, err)
	assert.Len(t, byRole, 1)

	require.NoError(t, c.DeleteUser(ctx, 2))
	msg, err := c.DeleteCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Account deleted successfully", msg)
}

func TestRSVPRoutes(t *testing.T) {
	b := testutil.NewBackend(t)
	ev := testutil.NewEvent(9).Build()
	rsvp := testutil.RSVPFor(1, ev, model.RSVPStatusConfirmed)
	b.JSON(http.MethodPost, "/rsvp/event/9", http.StatusCreated, rsvp)
	b.JSON(http.MethodPut, "/rsvp/event/9/status", http.StatusOK, rsvp)
	b.JSON(http.MethodGet, "/rsvp/event/9/status", http.StatusOK, "CONFIRMED")
	b.JSON(http.MethodGet, "/rsvp/event/9/check", http.StatusOK, true)
	b.JSON(http.MethodGet, "/rsvp/event/9/attendees", http.StatusOK, []model.User{{ID: 2, Username: "bob"}})
	b.JSON(http.MethodGet, "/rsvp/event/9/count", http.StatusOK, map[string]any{
		"confirmed": 4, "total": 5, "available": 46, "atCapacity": false,
	})
	b.JSON(http.MethodPost, "/rsvp/event/9/confirm-pending", http.StatusOK, []model.RSVP{rsvp})
	for _, p := range []string{"/rsvp/event/9", "/rsvp/event/9/pending", "/rsvp/my-rsvps", "/rsvp/my-rsvps/upcoming", "/rsvp/my-rsvps/past"} {
		b.JSON(http.MethodGet, p, http.StatusOK, []model.RSVP{rsvp})
	}
	c, _ := newTestClient(t, b, StaticToken("tok"))
	ctx := context.Background()

	created, err := c.CreateRSVP(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, model.RSVPStatusConfirmed, created.Status)

	updated, err := c.UpdateRSVPStatus(ctx, 9, model.RSVPStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, int64(9), updated.Event.ID)

	status, err := c.RSVPStatus(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, model.RSVPStatusConfirmed, status)

	has, err := c.CheckRSVP(ctx, 9)
	require.NoError(t, err)
	assert.True(t, has)

	attendees, err := c.EventAttendees(ctx, 9)
	require.NoError(t, err)
	assert.Len(t, attendees, 1)

	count, err := c.RSVPCount(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 46, count.SpotsRemaining(ev.MaxCapacity))

	confirmed, err := c.ConfirmPendingRSVPs(ctx, 9)
	require.NoError(t, err)
	assert.Len(t, confirmed, 1)

	for _, list := range []func() ([]model.RSVP, error){
		func() ([]model.RSVP, error) { return c.EventRSVPs(ctx, 9) },
		func() ([]model.RSVP, error) { return c.PendingRSVPs(ctx, 9) },
		func() ([]model.RSVP, error) { return c.MyRSVPs(ctx) },
		func() ([]model.RSVP, error) { return c.MyUpcomingRSVPs(ctx) },
		func() ([]model.RSVP, error) { return c.MyPastRSVPs(ctx) },
	} {
		got, listErr := list()
		require.NoError(t, listErr)
		assert.Len(t, got, 1)
	}

	for _, r := range b.Requests() {
		if r.Method == http.MethodPut {
			assert.Equal(t, "status=CONFIRMED", r.Query)
		}
	}
}

func TestCreateRSVPConflictAndCancelTwice(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Handle(http.MethodPost, "/rsvp/event/4", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	var cancels atomic.Int32
	b.Handle(http.MethodDelete, "/rsvp/event/4", func(w http.ResponseWriter, _ *http.Request) {
		if cancels.Add(1) > 1 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	c, _ := newTestClient(t, b, StaticToken("tok"))
	ctx := context.Background()

	_, err := c.CreateRSVP(ctx, 4)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, "HTTP 409: Conflict", err.Error())

	require.NoError(t, c.CancelRSVP(ctx, 4))
	err = c.CancelRSVP(ctx, 4)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRSVPStatusRejectsUnknownValue(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Text(http.MethodGet, "/rsvp/event/1/status", http.StatusOK, "MAYBE")
	c, _ := newTestClient(t, b, StaticToken("tok"))

	_, err := c.RSVPStatus(context.Background(), 1)
	assert.True(t, apperrors.IsParse(err))
}
