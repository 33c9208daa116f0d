package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joinify/joinify-go/internal/domain/auth"
	"github.com/joinify/joinify-go/internal/domain/model"
	apperrors "github.com/joinify/joinify-go/internal/errors"
	"github.com/joinify/joinify-go/internal/export"
	"github.com/joinify/joinify-go/internal/observability/notify"
	"github.com/joinify/joinify-go/internal/validation"
)

// Organizer dashboard limits.
const (
	RecentEventLimit    = 5
	AnalyticsEventLimit = 10
	attendeeFetchLimit  = 4
)

// Organizer success messages.
const (
	MsgEventCreated = "Event created successfully!"
	MsgEventUpdated = "Event updated successfully!"
	MsgEventDeleted = "Event deleted successfully"
)

// EventStatus is an event's position relative to now.
type EventStatus string

// Event statuses.
const (
	StatusPast     EventStatus = "Past"
	StatusUpcoming EventStatus = "Upcoming"
	StatusLive     EventStatus = "Live"
)

// StatusOf classifies an event against now. Live only when the start time
// equals now.
func StatusOf(ev model.Event, now time.Time) EventStatus {
	switch t := ev.DateTime.Time; {
	case t.Before(now):
		return StatusPast
	case t.After(now):
		return StatusUpcoming
	default:
		return StatusLive
	}
}

// OrganizerStats are the organizer overview counters.
type OrganizerStats struct {
	TotalEvents    int
	UpcomingEvents int
	TotalAttendees int
	// AverageAttendance is confirmed attendees over total capacity, as a
	// rounded percentage.
	AverageAttendance int
}

// EventRow is an event with its confirmed attendee count.
type EventRow struct {
	Event     model.Event
	Attendees int
	Status    EventStatus
}

// OrganizerView is the organizer dashboard view model.
type OrganizerView struct {
	User      *model.User
	Stats     OrganizerStats
	StatsErr  error
	Recent    []EventRow
	RecentErr error
	Events    []model.Event
	EventsErr error
}

// Analytics is attendance for the first events plus status counts.
type Analytics struct {
	Attendance []EventRow
	Upcoming   int
	Past       int
}

// EventFilter narrows the organizer's event list.
type EventFilter string

// Event filters.
const (
	EventsAll      EventFilter = "all"
	EventsUpcoming EventFilter = "upcoming"
)

// OrganizerDashboardOptions groups dependencies for OrganizerDashboard.
type OrganizerDashboardOptions struct {
	API      OrganizerAPI
	Sessions *SessionManager
	Sink     notify.Sink
	Now      func() time.Time
	Logger   *slog.Logger
}

// OrganizerDashboard serves the organizer's overview and event management.
type OrganizerDashboard struct {
	api    OrganizerAPI
	nav    *Navigator
	sink   notify.Sink
	now    func() time.Time
	logger *slog.Logger

	mu   sync.RWMutex
	last *OrganizerView
}

// NewOrganizerDashboard constructs an OrganizerDashboard.
func NewOrganizerDashboard(opts OrganizerDashboardOptions) (*OrganizerDashboard, error) {
	if opts.API == nil {
		return nil, errors.New("organizer api is required")
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
	return &OrganizerDashboard{
		api:    opts.API,
		nav:    NewNavigator(opts.Sessions),
		sink:   opts.Sink,
		now:    now,
		logger: logger.With("component", "organizer_dashboard"),
	}, nil
}

// Guard admits only organizers; others get the index destination.
func (d *OrganizerDashboard) Guard(ctx context.Context) (string, bool) {
	return d.nav.Guard(ctx, auth.RoleOrganizer)
}

// Load fetches the organizer's events, then attendee counts per event, and
// builds every section. A failed attendee count fails stats and recent rows
// but leaves the event list intact.
func (d *OrganizerDashboard) Load(ctx context.Context) *OrganizerView {
	var view OrganizerView
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
		view.Events, view.EventsErr = d.api.MyEvents(gctx)
		return nil
	})
	_ = g.Wait()

	if view.EventsErr != nil {
		d.logger.ErrorContext(ctx, "load events", "error", view.EventsErr)
		view.StatsErr, view.RecentErr = view.EventsErr, view.EventsErr
		d.store(&view)
		return &view
	}

	rows, err := d.rows(ctx, view.Events, now)
	if err != nil {
		d.logger.ErrorContext(ctx, "load attendee counts", "error", err)
		view.StatsErr, view.RecentErr = err, err
	} else {
		view.Stats = organizerStats(rows, now)
		view.Recent = firstN(rows, RecentEventLimit)
	}

	d.store(&view)
	return &view
}

// View returns the last loaded view, or nil before the first Load.
func (d *OrganizerDashboard) View() *OrganizerView {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last
}

func (d *OrganizerDashboard) store(v *OrganizerView) {
	d.mu.Lock()
	d.last = v
	d.mu.Unlock()
}

// rows counts confirmed attendees for each event with bounded concurrency.
func (d *OrganizerDashboard) rows(ctx context.Context, events []model.Event, now time.Time) ([]EventRow, error) {
	rows := make([]EventRow, len(events))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(attendeeFetchLimit)
	for i, ev := range events {
		g.Go(func() error {
			attendees, err := d.api.EventAttendees(gctx, ev.ID)
			if err != nil {
				return err
			}
			rows[i] = EventRow{Event: ev, Attendees: len(attendees), Status: StatusOf(ev, now)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func organizerStats(rows []EventRow, now time.Time) OrganizerStats {
	s := OrganizerStats{TotalEvents: len(rows)}
	capacity := 0
	for _, r := range rows {
		if r.Event.IsUpcoming(now) {
			s.UpcomingEvents++
		}
		s.TotalAttendees += r.Attendees
		capacity += r.Event.MaxCapacity
	}
	if capacity > 0 {
		s.AverageAttendance = int(math.Round(float64(s.TotalAttendees) / float64(capacity) * 100))
	}
	return s
}

// Attendees lists confirmed attendees of an event.
func (d *OrganizerDashboard) Attendees(ctx context.Context, eventID int64) ([]model.User, error) {
	return d.api.EventAttendees(ctx, eventID)
}

// CreateEvent validates in and creates the event.
func (d *OrganizerDashboard) CreateEvent(ctx context.Context, in model.EventInput) (model.Event, error) {
	if err := d.validate(in); err != nil {
		return model.Event{}, err
	}
	ev, err := d.api.CreateEvent(ctx, in)
	if err != nil {
		return model.Event{}, err
	}
	notify.Send(ctx, d.sink, notify.Notification{Level: notify.LevelSuccess, Message: MsgEventCreated})
	return ev, nil
}

// UpdateEvent validates in and updates event id.
func (d *OrganizerDashboard) UpdateEvent(ctx context.Context, id int64, in model.EventInput) (model.Event, error) {
	if err := d.validate(in); err != nil {
		return model.Event{}, err
	}
	ev, err := d.api.UpdateEvent(ctx, id, in)
	if err != nil {
		return model.Event{}, err
	}
	notify.Send(ctx, d.sink, notify.Notification{Level: notify.LevelSuccess, Message: MsgEventUpdated})
	return ev, nil
}

// DeleteEvent removes an event.
func (d *OrganizerDashboard) DeleteEvent(ctx context.Context, id int64) error {
	if err := d.api.DeleteEvent(ctx, id); err != nil {
		return err
	}
	notify.Send(ctx, d.sink, notify.Notification{Level: notify.LevelSuccess, Message: MsgEventDeleted})
	return nil
}

func (d *OrganizerDashboard) validate(in model.EventInput) error {
	if errs := validation.ValidateEvent(in, d.now()); len(errs) > 0 {
		return &ValidationError{Messages: errs}
	}
	return nil
}

// Analytics reports attendance for the first events and upcoming/past counts.
func (d *OrganizerDashboard) Analytics(ctx context.Context) (Analytics, error) {
	events, err := d.api.MyEvents(ctx)
	if err != nil {
		return Analytics{}, err
	}
	now := d.now()
	rows, err := d.rows(ctx, firstN(events, AnalyticsEventLimit), now)
	if err != nil {
		return Analytics{}, err
	}
	out := Analytics{Attendance: rows}
	for _, ev := range events {
		if ev.IsUpcoming(now) {
			out.Upcoming++
		} else {
			out.Past++
		}
	}
	return out, nil
}

// ExportAttendees writes the attendee roster of an event as CSV to w and
// returns the suggested file name.
func (d *OrganizerDashboard) ExportAttendees(ctx context.Context, eventID int64, w io.Writer) (string, error) {
	var (
		ev        model.Event
		attendees []model.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ev, err = d.api.EventByID(gctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		attendees, err = d.api.EventAttendees(gctx, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	summary := export.SummaryFromEvent(ev)
	if err := export.WriteAttendeesCSV(w, summary, attendees, d.now()); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "write attendee csv")
	}
	return export.FileName(summary), nil
}

// FilterEvents narrows an organizer's events by a title/location term and a
// status filter.
func FilterEvents(events []model.Event, term string, filter EventFilter, now time.Time) []model.Event {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []model.Event
	for _, ev := range events {
		if term != "" &&
			!strings.Contains(strings.ToLower(ev.Title), term) &&
			!strings.Contains(strings.ToLower(ev.Location), term) {
			continue
		}
		if filter == EventsUpcoming && !ev.IsUpcoming(now) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// ValidationError lists every failed form rule.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}
