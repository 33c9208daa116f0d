package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joinify/joinify-go/internal/domain/model"
	"github.com/joinify/joinify-go/internal/util"
)

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	if len(args) == 0 {
		_, err := fmt.Fprintln(w)
		return err
	}
	_, err := fmt.Fprintln(w, args...)
	return err
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// newFlagSet builds a flag set whose errors and help go to the command output.
func newFlagSet(cmdCtx *commandContext, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Out)
	return fs
}

// parseFlags parses args and maps bad input to errUsage.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}

// eventIDArg reads the single positional event ID.
func eventIDArg(cmdCtx *commandContext, fs *flag.FlagSet) (int64, error) {
	if fs.NArg() != 1 {
		_ = writef(cmdCtx.Out, "usage: joinify %s <event-id>\n", fs.Name())
		return 0, errUsage
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		_ = writef(cmdCtx.Out, "invalid event id %q\n", fs.Arg(0))
		return 0, errUsage
	}
	return id, nil
}

func writeEvents(w io.Writer, events []model.Event, now time.Time) error {
	if len(events) == 0 {
		return writeln(w, "No events found.")
	}
	tw := newTable(w)
	if err := writeln(tw, "ID\tTitle\tWhen\tLocation\tCapacity\tFee\tOrganizer"); err != nil {
		return fmt.Errorf("write events header: %w", err)
	}
	for _, ev := range events {
		if err := writef(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			ev.ID,
			util.Truncate(ev.Title, 40),
			util.FormatDateTime(ev.DateTime.Time, now),
			util.Truncate(ev.Location, 30),
			ev.MaxCapacity,
			util.FormatFee(ev.Fee),
			ev.OrganizerName(),
		); err != nil {
			return fmt.Errorf("write event %d: %w", ev.ID, err)
		}
	}
	return tw.Flush()
}

func writeRSVPs(w io.Writer, rsvps []model.RSVP, now time.Time) error {
	if len(rsvps) == 0 {
		return writeln(w, "No RSVPs found.")
	}
	tw := newTable(w)
	if err := writeln(tw, "Event\tTitle\tWhen\tLocation\tStatus\tStarts"); err != nil {
		return fmt.Errorf("write rsvps header: %w", err)
	}
	for _, r := range rsvps {
		if err := writef(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.Event.ID,
			util.Truncate(r.Event.Title, 40),
			util.FormatDateTime(r.Event.DateTime.Time, now),
			util.Truncate(r.Event.Location, 30),
			util.FormatRSVPStatus(r.Status),
			util.TimeUntilEvent(r.Event.DateTime.Time, now),
		); err != nil {
			return fmt.Errorf("write rsvp %d: %w", r.ID, err)
		}
	}
	return tw.Flush()
}

func writeUsers(w io.Writer, users []model.User) error {
	if len(users) == 0 {
		return writeln(w, "No attendees yet.")
	}
	tw := newTable(w)
	if err := writeln(tw, "ID\tUsername\tEmail\tRole"); err != nil {
		return fmt.Errorf("write users header: %w", err)
	}
	for _, u := range users {
		if err := writef(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, util.CapitalizeFirst(u.Role)); err != nil {
			return fmt.Errorf("write user %d: %w", u.ID, err)
		}
	}
	return tw.Flush()
}

// sectionError prints a failed dashboard section in place of its content.
func sectionError(w io.Writer, title string, err error) error {
	return writef(w, "%s: unavailable (%s)\n", title, strings.TrimSpace(err.Error()))
}
