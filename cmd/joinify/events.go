package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joinify/joinify-go/internal/domain/model"
	"github.com/joinify/joinify-go/internal/service"
	"github.com/joinify/joinify-go/internal/util"
)

type eventListOptions struct {
	filter   string
	search   string
	location string
	from     string
	to       string
	mine     bool
}

func runEvents(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "events")
	var opts eventListOptions
	fs.StringVar(&opts.filter, "filter", "all", "all, upcoming, past or available")
	fs.StringVar(&opts.search, "search", "", "Search titles on the server")
	fs.StringVar(&opts.location, "location", "", "Search locations on the server")
	fs.StringVar(&opts.from, "from", "", "Range start, YYYY-MM-DDTHH:MM (requires --to)")
	fs.StringVar(&opts.to, "to", "", "Range end, YYYY-MM-DDTHH:MM (requires --from)")
	fs.BoolVar(&opts.mine, "mine", false, "Only events you organize")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	events, err := listEvents(cmdCtx, opts)
	if err != nil {
		return err
	}
	return writeEvents(cmdCtx.Out, events, time.Now())
}

func listEvents(cmdCtx *commandContext, opts eventListOptions) ([]model.Event, error) {
	api := cmdCtx.App.API
	ctx := cmdCtx.Ctx

	switch {
	case opts.search != "":
		return api.SearchEventsByTitle(ctx, opts.search)
	case opts.location != "":
		return api.SearchEventsByLocation(ctx, opts.location)
	case opts.from != "" || opts.to != "":
		start, end, err := parseRange(opts.from, opts.to)
		if err != nil {
			_ = writef(cmdCtx.Out, "%v\n", err)
			return nil, errUsage
		}
		return api.EventsByDateRange(ctx, start, end)
	}

	if opts.mine {
		switch opts.filter {
		case "all", "":
			return api.MyEvents(ctx)
		case "upcoming":
			return api.MyUpcomingEvents(ctx)
		case "past":
			return api.MyPastEvents(ctx)
		}
	} else {
		switch opts.filter {
		case "all", "":
			return api.Events(ctx)
		case "upcoming":
			return api.UpcomingEvents(ctx)
		case "past":
			return api.PastEvents(ctx)
		case "available":
			return api.AvailableEvents(ctx)
		}
	}
	_ = writef(cmdCtx.Out, "invalid --filter %q\n", opts.filter)
	return nil, errUsage
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, errors.New("--from and --to must be given together")
	}
	start, err := model.ParseDateTime(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := model.ParseDateTime(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start.Time) {
		return time.Time{}, time.Time{}, errors.New("--to is before --from")
	}
	return start.Time, end.Time, nil
}

func runEvent(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "event")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := eventIDArg(cmdCtx, fs)
	if err != nil {
		return err
	}

	details, err := cmdCtx.App.Attendee.EventDetails(cmdCtx.Ctx, id)
	if err != nil {
		return err
	}
	ev := details.Event
	now := time.Now()

	tw := newTable(cmdCtx.Out)
	rows := [][2]string{
		{"Title", ev.Title},
		{"When", util.FormatDateTime(ev.DateTime.Time, now) + " (" + util.RelativeTime(ev.DateTime.Time, now) + ")"},
		{"Location", ev.Location},
		{"Fee", util.FormatFee(ev.Fee)},
		{"Organizer", ev.OrganizerName()},
	}
	if ev.Description != "" {
		rows = append(rows, [2]string{"Description", ev.Description})
	}
	if ev.ImageURL != "" {
		rows = append(rows, [2]string{"Image", ev.ImageURL})
	}
	if c := details.Capacity; c != nil {
		rows = append(rows, [2]string{"Capacity",
			fmt.Sprintf("%d/%d confirmed, %d spots left", c.ConfirmedAttendees, c.MaxCapacity, c.AvailableSpots)})
	} else {
		rows = append(rows, [2]string{"Capacity", fmt.Sprintf("%d (live count unavailable)", ev.MaxCapacity)})
	}

	sessions := cmdCtx.App.Sessions
	if sessions.IsLoggedIn(cmdCtx.Ctx) {
		rows = append(rows, [2]string{"Your RSVP", rsvpSummary(cmdCtx, id)})
	}
	switch {
	case !details.Upcoming:
		rows = append(rows, [2]string{"Join", "Event has already started"})
	case details.CanJoin:
		rows = append(rows, [2]string{"Join", fmt.Sprintf("joinify join %d", id)})
	default:
		rows = append(rows, [2]string{"Join", "Event is full"})
	}

	for _, r := range rows {
		if err := writef(tw, "%s\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func rsvpSummary(cmdCtx *commandContext, eventID int64) string {
	api := cmdCtx.App.API
	has, err := api.CheckRSVP(cmdCtx.Ctx, eventID)
	if err != nil {
		return "unknown"
	}
	if !has {
		return "none"
	}
	status, err := api.RSVPStatus(cmdCtx.Ctx, eventID)
	if err != nil {
		return "yes"
	}
	return util.FormatRSVPStatus(status)
}

// eventFlags binds the event form to fs; date holds the raw date flag.
type eventFlags struct {
	in   model.EventInput
	date string
}

func bindEventFlags(fs *flag.FlagSet, f *eventFlags) {
	fs.StringVar(&f.in.Title, "title", f.in.Title, "Event title (3-100 characters)")
	fs.StringVar(&f.in.Description, "description", f.in.Description, "Description (up to 500 characters)")
	fs.StringVar(&f.date, "date", f.date, "Start, YYYY-MM-DDTHH:MM in local time")
	fs.StringVar(&f.in.Location, "location", f.in.Location, "Location (3-100 characters)")
	fs.IntVar(&f.in.MaxCapacity, "capacity", f.in.MaxCapacity, "Maximum attendees")
	fs.Float64Var(&f.in.Fee, "fee", f.in.Fee, "Fee; 0 for free")
	fs.StringVar(&f.in.ImageURL, "image", f.in.ImageURL, "Image URL")
}

func (f *eventFlags) input(cmdCtx *commandContext) (model.EventInput, error) {
	in := f.in
	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if f.date != "" {
		dt, err := model.ParseDateTime(strings.TrimSpace(f.date))
		if err != nil {
			_ = writef(cmdCtx.Out, "%v\n", err)
			return model.EventInput{}, errUsage
		}
		in.DateTime = dt
	}
	return in, nil
}

// eventFormError prints validation messages; other errors pass through.
func eventFormError(cmdCtx *commandContext, err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return printInvalid(cmdCtx, verr.Messages)
	}
	return err
}

func runCreateEvent(cmdCtx *commandContext, args []string) error {
	if err := requireOrganizer(cmdCtx); err != nil {
		return err
	}
	fs := newFlagSet(cmdCtx, "create-event")
	f := eventFlags{in: model.EventInput{MaxCapacity: 1}}
	bindEventFlags(fs, &f)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	in, err := f.input(cmdCtx)
	if err != nil {
		return err
	}

	ev, err := cmdCtx.App.Organizer.CreateEvent(cmdCtx.Ctx, in)
	if err != nil {
		return eventFormError(cmdCtx, err)
	}
	return writef(cmdCtx.Out, "Created event %d: %s\n", ev.ID, ev.Title)
}

func runUpdateEvent(cmdCtx *commandContext, args []string) error {
	if err := requireOrganizer(cmdCtx); err != nil {
		return err
	}
	// The first argument is the event ID so flags can be prefilled.
	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		_ = writef(cmdCtx.Out, "usage: joinify update-event <event-id> [flags]\n")
		return errUsage
	}
	idFS := newFlagSet(cmdCtx, "update-event")
	if err := parseFlags(idFS, args[:1]); err != nil {
		return err
	}
	id, err := eventIDArg(cmdCtx, idFS)
	if err != nil {
		return err
	}

	current, err := cmdCtx.App.API.EventByID(cmdCtx.Ctx, id)
	if err != nil {
		return err
	}
	f := eventFlags{in: model.InputFromEvent(current)}
	fs := newFlagSet(cmdCtx, "update-event")
	bindEventFlags(fs, &f)
	if err := parseFlags(fs, args[1:]); err != nil {
		return err
	}
	changed := 0
	fs.Visit(func(*flag.Flag) { changed++ })
	if changed == 0 {
		return writeln(cmdCtx.Out, "Nothing to update.")
	}
	in, err := f.input(cmdCtx)
	if err != nil {
		return err
	}

	ev, err := cmdCtx.App.Organizer.UpdateEvent(cmdCtx.Ctx, id, in)
	if err != nil {
		return eventFormError(cmdCtx, err)
	}
	return writef(cmdCtx.Out, "Updated event %d: %s\n", ev.ID, ev.Title)
}

func runDeleteEvent(cmdCtx *commandContext, args []string) error {
	if err := requireOrganizer(cmdCtx); err != nil {
		return err
	}
	fs := newFlagSet(cmdCtx, "delete-event")
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := eventIDArg(cmdCtx, fs)
	if err != nil {
		return err
	}
	if !*yes {
		answer, err := prompt(cmdCtx, fmt.Sprintf("Delete event %d? This cannot be undone [y/N]", id))
		if err != nil {
			return err
		}
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			return writeln(cmdCtx.Out, "Aborted.")
		}
	}
	return cmdCtx.App.Organizer.DeleteEvent(cmdCtx.Ctx, id)
}

func runAttendees(cmdCtx *commandContext, args []string) error {
	if err := requireOrganizer(cmdCtx); err != nil {
		return err
	}
	fs := newFlagSet(cmdCtx, "attendees")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := eventIDArg(cmdCtx, fs)
	if err != nil {
		return err
	}
	users, err := cmdCtx.App.Organizer.Attendees(cmdCtx.Ctx, id)
	if err != nil {
		return err
	}
	return writeUsers(cmdCtx.Out, users)
}

func runExportAttendees(cmdCtx *commandContext, args []string) error {
	if err := requireOrganizer(cmdCtx); err != nil {
		return err
	}
	fs := newFlagSet(cmdCtx, "export-attendees")
	out := fs.String("out", "", "Output file or directory (default: suggested name in the current directory); - for stdout")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := eventIDArg(cmdCtx, fs)
	if err != nil {
		return err
	}

	if *out == "-" {
		_, err := cmdCtx.App.Organizer.ExportAttendees(cmdCtx.Ctx, id, cmdCtx.Out)
		return err
	}

	var buf strings.Builder
	name, err := cmdCtx.App.Organizer.ExportAttendees(cmdCtx.Ctx, id, &buf)
	if err != nil {
		return err
	}
	path := *out
	switch {
	case path == "":
		path = name
	default:
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			path = filepath.Join(path, name)
		}
	}
	if err := os.WriteFile(path, []byte(buf.String()), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return writef(cmdCtx.Out, "Wrote %s\n", path)
}

func runEventRSVPs(cmdCtx *commandContext, args []string) error {
	if err := requireOrganizer(cmdCtx); err != nil {
		return err
	}
	fs := newFlagSet(cmdCtx, "rsvps")
	pending := fs.Bool("pending", false, "Only pending RSVPs")
	confirm := fs.Bool("confirm-pending", false, "Confirm every pending RSVP")
	setStatus := fs.String("set-status", "", "Set the RSVP status of the event (PENDING, CONFIRMED, CANCELLED, ATTENDED)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := eventIDArg(cmdCtx, fs)
	if err != nil {
		return err
	}

	api := cmdCtx.App.API
	ctx := cmdCtx.Ctx
	now := time.Now()

	if *setStatus != "" {
		status := model.RSVPStatus(strings.ToUpper(strings.TrimSpace(*setStatus)))
		if !status.Valid() {
			_ = writef(cmdCtx.Out, "invalid --set-status %q\n", *setStatus)
			return errUsage
		}
		r, err := api.UpdateRSVPStatus(ctx, id, status)
		if err != nil {
			return err
		}
		return writef(cmdCtx.Out, "RSVP %d is now %s\n", r.ID, util.FormatRSVPStatus(r.Status))
	}
	if *confirm {
		confirmed, err := api.ConfirmPendingRSVPs(ctx, id)
		if err != nil {
			return err
		}
		if err := writef(cmdCtx.Out, "Confirmed %d pending RSVPs.\n", len(confirmed)); err != nil {
			return err
		}
		return writeRSVPs(cmdCtx.Out, confirmed, now)
	}

	var rsvps []model.RSVP
	if *pending {
		rsvps, err = api.PendingRSVPs(ctx, id)
	} else {
		rsvps, err = api.EventRSVPs(ctx, id)
	}
	if err != nil {
		return err
	}
	if count, countErr := api.RSVPCount(ctx, id); countErr == nil {
		if err := writef(cmdCtx.Out, "RSVPs: %d confirmed, %d pending, %d total\n",
			count.Confirmed, count.Pending, count.Total); err != nil {
			return err
		}
	}
	return writeRSVPs(cmdCtx.Out, rsvps, now)
}

func runAnalytics(cmdCtx *commandContext, args []string) error {
	if err := requireOrganizer(cmdCtx); err != nil {
		return err
	}
	fs := newFlagSet(cmdCtx, "analytics")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	a, err := cmdCtx.App.Organizer.Analytics(cmdCtx.Ctx)
	if err != nil {
		return err
	}
	if err := writef(cmdCtx.Out, "Upcoming events: %d\nPast events: %d\n\n", a.Upcoming, a.Past); err != nil {
		return err
	}
	return writeEventRows(cmdCtx.Out, a.Attendance)
}
