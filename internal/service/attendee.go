package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joinify/joinify-go/internal/domain/auth"
	"github.com/joinify/joinify-go/internal/domain/model"
	"github.com/joinify/joinify-go/internal/observability/notify"
)

// UpcomingRSVPLimit is how many upcoming RSVPs the attendee overview shows.
const UpcomingRSVPLimit = 3

// Attendee success messages.
const (
	MsgJoined        = "Successfully joined the event!"
	MsgRSVPCancelled = "RSVP cancelled successfully"
)

// DiscoverFilter narrows the discover list.
type DiscoverFilter string

// Discover filters.
const (
	DiscoverAll       DiscoverFilter = "all"
	DiscoverUpcoming  DiscoverFilter = "upcoming"
	DiscoverAvailable DiscoverFilter = "available"
)

// RSVPFilter narrows the attendee's own RSVP list.
type RSVPFilter string

// RSVP filters.
const (
	RSVPAll      RSVPFilter = "all"
	RSVPUpcoming RSVPFilter = "upcoming"
	RSVPToday    RSVPFilter = "today"
)

// AttendeeStats are the attendee overview counters.
type AttendeeStats struct {
	UpcomingRSVPs   int
	TotalRSVPs      int
	EventsAttended  int
	AvailableEvents int
}

// AttendeeView is the attendee dashboard view model. Each section carries
// its own error so one failed fetch does not blank the others.
type AttendeeView struct {
	User        *model.User
	Stats       AttendeeStats
	StatsErr    error
	Upcoming    []model.RSVP
	UpcomingErr error
	Discover    []model.Event
	DiscoverErr error
	MyRSVPs     []model.RSVP
	MyRSVPsErr  error
	History     []model.RSVP
	HistoryErr  error
}

// EventDetails is an event with its capacity gating.
type EventDetails struct {
	Event       model.Event
	Capacity    *model.EventCapacity
	CapacityErr error
	Upcoming    bool
	CanJoin     bool
}

// AttendeeDashboardOptions groups dependencies for AttendeeDashboard.
type AttendeeDashboardOptions struct {
	API      AttendeeAPI
	Sessions *SessionManager
	Sink     notify.Sink
	Now      func() time.Time
	Logger   *slog.Logger
}

// AttendeeDashboard serves the attendee's overview, discovery and RSVP actions.
type AttendeeDashboard struct {
	api      AttendeeAPI
	sessions *SessionManager
	nav      *Navigator
	sink     notify.Sink
	now      func() time.Time
	logger   *slog.Logger

	mu   sync.RWMutex
	last *AttendeeView
}

// NewAttendeeDashboard constructs an AttendeeDashboard.
func NewAttendeeDashboard(opts AttendeeDashboardOptions) (*AttendeeDashboard, error) {
	if opts.API == nil {
		return nil, errors.New("attendee api is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session manager is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendeeDashboard{
		api:      opts.API,
		sessions: opts.Sessions,
		nav:      NewNavigator(opts.Sessions),
		sink:     opts.Sink,
		now:      now,
		logger:   logger.With("component", "attendee_dashboard"),
	}, nil
}

// Guard admits only attendees; others get the index destination.
func (d *AttendeeDashboard) Guard(ctx context.Context) (string, bool) {
	return d.nav.Guard(ctx, auth.RoleAttendee)
}

// Load fetches every section concurrently and caches the result as the
// current view.
func (d *AttendeeDashboard) Load(ctx context.Context) *AttendeeView {
	var (
		view        AttendeeView
		myRSVPs     []model.RSVP
		upcomingEvs []model.Event
		upcomingErr error
	)
	now := d.now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := d.api.CurrentUser(gctx)
		if err != nil {
			d.logger.WarnContext(gctx, "load user info", "error", err)
			return nil
		}
		view.User = &u
		return nil
	})
	g.Go(func() error {
		myRSVPs, view.MyRSVPsErr = d.api.MyRSVPs(gctx)
		return nil
	})
	g.Go(func() error {
		upcomingEvs, upcomingErr = d.api.UpcomingEvents(gctx)
		return nil
	})
	g.Go(func() error {
		rsvps, err := d.api.MyUpcomingRSVPs(gctx)
		view.Upcoming, view.UpcomingErr = firstN(rsvps, UpcomingRSVPLimit), err
		return nil
	})
	g.Go(func() error {
		view.History, view.HistoryErr = d.api.MyPastRSVPs(gctx)
		return nil
	})
	_ = g.Wait()

	view.MyRSVPs = myRSVPs

	if err := errors.Join(view.MyRSVPsErr, upcomingErr); err != nil {
		view.StatsErr = err
		view.DiscoverErr = err
	} else {
		view.Discover = discoverable(upcomingEvs, myRSVPs)
		view.Stats = attendeeStats(myRSVPs, upcomingEvs, now)
	}

	for _, section := range []struct {
		name string
		err  error
	}{
		{"my_rsvps", view.MyRSVPsErr},
		{"upcoming_rsvps", view.UpcomingErr},
		{"history", view.HistoryErr},
		{"discover", view.DiscoverErr},
	} {
		if section.err != nil {
			d.logger.ErrorContext(ctx, "load dashboard section", "section", section.name, "error", section.err)
		}
	}

	d.mu.Lock()
	d.last = &view
	d.mu.Unlock()
	return &view
}

// View returns the last loaded view, or nil before the first Load.
func (d *AttendeeDashboard) View() *AttendeeView {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last
}

// Join RSVPs to an event and reloads. On failure the previous view is
// returned unchanged alongside the error.
func (d *AttendeeDashboard) Join(ctx context.Context, eventID int64) (*AttendeeView, error) {
	if _, err := d.api.CreateRSVP(ctx, eventID); err != nil {
		return d.View(), err
	}
	notify.Send(ctx, d.sink, notify.Notification{Level: notify.LevelSuccess, Message: MsgJoined})
	return d.Load(ctx), nil
}

// Cancel withdraws an RSVP and reloads. On failure the previous view is
// returned unchanged alongside the error.
func (d *AttendeeDashboard) Cancel(ctx context.Context, eventID int64) (*AttendeeView, error) {
	if err := d.api.CancelRSVP(ctx, eventID); err != nil {
		return d.View(), err
	}
	notify.Send(ctx, d.sink, notify.Notification{Level: notify.LevelInfo, Message: MsgRSVPCancelled})
	return d.Load(ctx), nil
}

// EventDetails loads an event and its capacity. A capacity failure is
// recorded; joining then depends on the start time alone.
func (d *AttendeeDashboard) EventDetails(ctx context.Context, eventID int64) (EventDetails, error) {
	ev, err := d.api.EventByID(ctx, eventID)
	if err != nil {
		return EventDetails{}, err
	}
	out := EventDetails{Event: ev, Upcoming: ev.IsUpcoming(d.now())}

	c, err := d.api.EventCapacity(ctx, eventID)
	if err != nil {
		out.CapacityErr = err
	} else {
		out.Capacity = &c
	}
	out.CanJoin = out.Upcoming && (out.Capacity == nil || !out.Capacity.AtCapacity)
	return out, nil
}

func discoverable(events []model.Event, rsvps []model.RSVP) []model.Event {
	joined := make(map[int64]struct{}, len(rsvps))
	for _, r := range rsvps {
		joined[r.Event.ID] = struct{}{}
	}
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if _, ok := joined[ev.ID]; !ok {
			out = append(out, ev)
		}
	}
	return out
}

func attendeeStats(rsvps []model.RSVP, upcoming []model.Event, now time.Time) AttendeeStats {
	s := AttendeeStats{TotalRSVPs: len(rsvps)}
	for _, r := range rsvps {
		if r.Event.IsUpcoming(now) {
			s.UpcomingRSVPs++
		} else if r.Status != model.RSVPStatusCancelled {
			s.EventsAttended++
		}
	}
	for _, ev := range discoverable(upcoming, rsvps) {
		if ev.IsUpcoming(now) {
			s.AvailableEvents++
		}
	}
	return s
}

// SearchEvents keeps events whose title, location or description contains
// term, case-insensitively. A blank term keeps everything.
func SearchEvents(events []model.Event, term string) []model.Event {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return events
	}
	var out []model.Event
	for _, ev := range events {
		if strings.Contains(strings.ToLower(ev.Title), term) ||
			strings.Contains(strings.ToLower(ev.Location), term) ||
			strings.Contains(strings.ToLower(ev.Description), term) {
			out = append(out, ev)
		}
	}
	return out
}

// FilterDiscover applies a discover filter. Upcoming and available both
// keep events that have not started; per-event capacity is not known here.
func FilterDiscover(events []model.Event, filter DiscoverFilter, now time.Time) []model.Event {
	switch filter {
	case DiscoverUpcoming, DiscoverAvailable:
		var out []model.Event
		for _, ev := range events {
			if ev.IsUpcoming(now) {
				out = append(out, ev)
			}
		}
		return out
	default:
		return events
	}
}

// FilterMyRSVPs applies an RSVP filter. Today means the event starts on
// now's calendar day in now's location.
func FilterMyRSVPs(rsvps []model.RSVP, filter RSVPFilter, now time.Time) []model.RSVP {
	var keep func(model.RSVP) bool
	switch filter {
	case RSVPUpcoming:
		keep = func(r model.RSVP) bool { return r.Event.IsUpcoming(now) }
	case RSVPToday:
		y, m, d := now.Date()
		start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 0, 1)
		keep = func(r model.RSVP) bool {
			t := r.Event.DateTime.Time
			return !t.Before(start) && t.Before(end)
		}
	default:
		return rsvps
	}
	var out []model.RSVP
	for _, r := range rsvps {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
