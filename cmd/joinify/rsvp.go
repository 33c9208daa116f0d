package main

import (
	"time"

	"github.com/joinify/joinify-go/internal/service"
)

func runJoin(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "join")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := eventIDArg(cmdCtx, fs)
	if err != nil {
		return err
	}
	if err := requireAttendee(cmdCtx); err != nil {
		return err
	}
	view, err := cmdCtx.App.Attendee.Join(cmdCtx.Ctx, id)
	if err != nil {
		return err
	}
	return writeUpcoming(cmdCtx, view)
}

func runCancel(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "cancel")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := eventIDArg(cmdCtx, fs)
	if err != nil {
		return err
	}
	if err := requireAttendee(cmdCtx); err != nil {
		return err
	}
	view, err := cmdCtx.App.Attendee.Cancel(cmdCtx.Ctx, id)
	if err != nil {
		return err
	}
	return writeUpcoming(cmdCtx, view)
}

func writeUpcoming(cmdCtx *commandContext, view *service.AttendeeView) error {
	if view == nil {
		return nil
	}
	if err := writeln(cmdCtx.Out, "\nUpcoming RSVPs"); err != nil {
		return err
	}
	if view.UpcomingErr != nil {
		return sectionError(cmdCtx.Out, "Upcoming RSVPs", view.UpcomingErr)
	}
	return writeRSVPs(cmdCtx.Out, view.Upcoming, time.Now())
}

func runMyRSVPs(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "my-rsvps")
	filter := fs.String("filter", string(service.RSVPAll), "all, upcoming, today or past")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireAttendee(cmdCtx); err != nil {
		return err
	}

	api := cmdCtx.App.API
	now := time.Now()
	if *filter == "past" {
		rsvps, err := api.MyPastRSVPs(cmdCtx.Ctx)
		if err != nil {
			return err
		}
		return writeRSVPs(cmdCtx.Out, rsvps, now)
	}

	f := service.RSVPFilter(*filter)
	switch f {
	case service.RSVPAll, service.RSVPUpcoming, service.RSVPToday:
	default:
		_ = writef(cmdCtx.Out, "invalid --filter %q\n", *filter)
		return errUsage
	}
	rsvps, err := api.MyRSVPs(cmdCtx.Ctx)
	if err != nil {
		return err
	}
	return writeRSVPs(cmdCtx.Out, service.FilterMyRSVPs(rsvps, f, now), now)
}
