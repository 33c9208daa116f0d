package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/joinify/joinify-go/internal/apiclient"
	"github.com/joinify/joinify-go/internal/domain/auth"
	"github.com/joinify/joinify-go/internal/service"
	"github.com/joinify/joinify-go/internal/util"
)

// errDenied marks a role check failure already explained to the user.
var errDenied = errors.New("not permitted")

func requireOrganizer(cmdCtx *commandContext) error {
	return requireRole(cmdCtx, auth.RoleOrganizer, cmdCtx.App.Organizer.Guard)
}

func requireAttendee(cmdCtx *commandContext) error {
	return requireRole(cmdCtx, auth.RoleAttendee, cmdCtx.App.Attendee.Guard)
}

func requireRole(cmdCtx *commandContext, want auth.Role, guard func(context.Context) (string, bool)) error {
	dest, ok := guard(cmdCtx.Ctx)
	if ok {
		return nil
	}
	if !cmdCtx.App.Sessions.IsLoggedIn(cmdCtx.Ctx) {
		_ = writeln(cmdCtx.Out, "Please log in first: joinify login")
		return errDenied
	}
	_ = writef(cmdCtx.Out, "This command is only available to %s accounts (redirecting to %s).\n",
		util.CapitalizeFirst(string(want)), dest)
	return errDenied
}

func runHome(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "home")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	view := cmdCtx.App.Home.Load(cmdCtx.Ctx)
	out := cmdCtx.Out

	if err := writef(out, "Joinify: %d users (%d organizers, %d attendees)\n\n",
		view.Stats.Total, view.Stats.Organizers, view.Stats.Attendees); err != nil {
		return err
	}
	if err := writeln(out, "Upcoming events"); err != nil {
		return err
	}
	if view.EventsErr != nil {
		return sectionError(out, "Upcoming events", view.EventsErr)
	}
	if err := writeEvents(out, view.Events, time.Now()); err != nil {
		return err
	}
	next := "joinify login"
	if cmdCtx.App.Sessions.IsLoggedIn(cmdCtx.Ctx) {
		next = "joinify dashboard"
	}
	return writef(out, "\nNext: %s\n", next)
}

func runStats(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "stats")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	stats, err := cmdCtx.App.API.UserStats(cmdCtx.Ctx)
	if err != nil {
		return err
	}
	tw := newTable(cmdCtx.Out)
	if err := writef(tw, "Users\t%d\nOrganizers\t%d\nAttendees\t%d\n",
		stats.Total, stats.Organizers, stats.Attendees); err != nil {
		return err
	}
	return tw.Flush()
}

func runDashboard(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "dashboard")
	search := fs.String("search", "", "Narrow event lists by a search term")
	filter := fs.String("filter", "all", "Event filter: all, upcoming or available")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if _, ok := cmdCtx.App.Organizer.Guard(cmdCtx.Ctx); ok {
		return organizerDashboard(cmdCtx, *search, service.EventFilter(*filter))
	}
	if _, ok := cmdCtx.App.Attendee.Guard(cmdCtx.Ctx); ok {
		return attendeeDashboard(cmdCtx, *search, service.DiscoverFilter(*filter))
	}
	if !cmdCtx.App.Sessions.IsLoggedIn(cmdCtx.Ctx) {
		_ = writeln(cmdCtx.Out, "Please log in first: joinify login")
		return errDenied
	}
	_ = writef(cmdCtx.Out, "No dashboard for this account; go to %s.\n", cmdCtx.App.Navigator.Destination(cmdCtx.Ctx))
	return errDenied
}

func greeting(w io.Writer, label, username string) error {
	if username == "" {
		return writef(w, "%s\n\n", label)
	}
	return writef(w, "%s: welcome back, %s\n\n", label, username)
}

func attendeeDashboard(cmdCtx *commandContext, search string, filter service.DiscoverFilter) error {
	view := cmdCtx.App.Attendee.Load(cmdCtx.Ctx)
	out := cmdCtx.Out
	now := time.Now()

	var name string
	if view.User != nil {
		name = view.User.Username
	}
	if err := greeting(out, service.DashboardLabel(auth.RoleAttendee), name); err != nil {
		return err
	}

	if view.StatsErr != nil {
		if err := sectionError(out, "Overview", view.StatsErr); err != nil {
			return err
		}
	} else {
		s := view.Stats
		if err := writef(out, "Upcoming RSVPs: %d  Total RSVPs: %d  Attended: %d  Available events: %d\n",
			s.UpcomingRSVPs, s.TotalRSVPs, s.EventsAttended, s.AvailableEvents); err != nil {
			return err
		}
	}

	sections := []struct {
		title string
		err   error
		write func() error
	}{
		{"Next up", view.UpcomingErr, func() error { return writeRSVPs(out, view.Upcoming, now) }},
		{"Discover events", view.DiscoverErr, func() error {
			events := service.FilterDiscover(service.SearchEvents(view.Discover, search), filter, now)
			return writeEvents(out, events, now)
		}},
		{"History", view.HistoryErr, func() error { return writeRSVPs(out, view.History, now) }},
	}
	for _, s := range sections {
		if err := writef(out, "\n%s\n", s.title); err != nil {
			return err
		}
		if s.err != nil {
			if err := sectionError(out, s.title, s.err); err != nil {
				return err
			}
			continue
		}
		if err := s.write(); err != nil {
			return err
		}
	}
	return nil
}

func organizerDashboard(cmdCtx *commandContext, search string, filter service.EventFilter) error {
	view := cmdCtx.App.Organizer.Load(cmdCtx.Ctx)
	out := cmdCtx.Out
	now := time.Now()

	var name string
	if view.User != nil {
		name = view.User.Username
	}
	if err := greeting(out, service.DashboardLabel(auth.RoleOrganizer), name); err != nil {
		return err
	}

	if view.StatsErr != nil {
		if err := sectionError(out, "Overview", view.StatsErr); err != nil {
			return err
		}
	} else {
		s := view.Stats
		if err := writef(out, "Events: %d  Upcoming: %d  Attendees: %d  Average attendance: %d%%\n",
			s.TotalEvents, s.UpcomingEvents, s.TotalAttendees, s.AverageAttendance); err != nil {
			return err
		}
	}

	if err := writeln(out, "\nRecent events"); err != nil {
		return err
	}
	if view.RecentErr != nil {
		if err := sectionError(out, "Recent events", view.RecentErr); err != nil {
			return err
		}
	} else if err := writeEventRows(out, view.Recent); err != nil {
		return err
	}

	if err := writeln(out, "\nMy events"); err != nil {
		return err
	}
	if view.EventsErr != nil {
		return sectionError(out, "My events", view.EventsErr)
	}
	return writeEvents(out, service.FilterEvents(view.Events, search, filter, now), now)
}

func writeEventRows(w io.Writer, rows []service.EventRow) error {
	if len(rows) == 0 {
		return writeln(w, "No events found.")
	}
	tw := newTable(w)
	if err := writeln(tw, "ID\tTitle\tStatus\tAttendees\tFill"); err != nil {
		return fmt.Errorf("write rows header: %w", err)
	}
	for _, r := range rows {
		fill := "-"
		if r.Event.MaxCapacity > 0 {
			fill = fmt.Sprintf("%d%%", r.Attendees*100/r.Event.MaxCapacity)
		}
		if err := writef(tw, "%d\t%s\t%s\t%d/%d\t%s\n",
			r.Event.ID, util.Truncate(r.Event.Title, 40), r.Status,
			r.Attendees, r.Event.MaxCapacity, fill); err != nil {
			return fmt.Errorf("write row %d: %w", r.Event.ID, err)
		}
	}
	return tw.Flush()
}

func runProbe(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "probe")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	api := cmdCtx.App.API
	if err := api.Probe(cmdCtx.Ctx); err != nil {
		_ = writef(cmdCtx.Out, "%s at %s\n", apiclient.ProbeWarning, api.BaseURL())
		return err
	}
	return writef(cmdCtx.Out, "Backend reachable at %s\n", api.BaseURL())
}
