// Command joinify is a terminal client for the Joinify event RSVP platform.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joinify/joinify-go/config"
	"github.com/joinify/joinify-go/internal/bootstrap"
	"github.com/joinify/joinify-go/internal/observability/notify"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
	// offline commands run without the API client or token storage.
	offline bool
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	App    *bootstrap.App
	Out    io.Writer
	In     *bufio.Reader
}

// errUsage marks a failure already explained on stderr.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code) //nolint:forbidigo // CLI must propagate command status to the shell
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		_ = printUsage(stderr)
		return 2
	}

	cmdName := args[0]
	cmd, ok := commands()[cmdName]
	if !ok {
		_ = writef(stderr, "unknown command %q\n\n", cmdName)
		_ = printUsage(stderr)
		return 2
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		_ = writef(stderr, "load config: %v\n", err)
		return 1
	}
	logger := bootstrap.InitLogger(&cfg, stderr)

	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
		Out:    stdout,
		In:     bufio.NewReader(stdin),
	}

	var probe <-chan error
	if !cmd.offline {
		obs := bootstrap.BuildObservability(logger, cfg.Observability, nil)
		obs.Notifier = notify.Multi(obs.Notifier, consoleSink(stdout))

		app, appErr := bootstrap.NewApp(ctx, bootstrap.AppDeps{
			Config:        &cfg,
			Logger:        logger,
			Observability: &obs,
		})
		if appErr != nil {
			_ = writef(stderr, "start: %v\n", appErr)
			return 1
		}
		defer func() {
			if closeErr := app.Close(); closeErr != nil {
				logger.WarnContext(ctx, "close app", "error", closeErr)
			}
		}()
		cmdCtx.App = app
		probe = app.StartProbe(ctx)
	}

	runErr := cmd.run(cmdCtx, args[1:])
	if probe != nil {
		<-probe
	}

	switch {
	case runErr == nil:
		return 0
	case errors.Is(runErr, flag.ErrHelp):
		return 0
	case errors.Is(runErr, errUsage):
		return 2
	case errors.Is(runErr, errInvalidInput), errors.Is(runErr, errDenied):
		return 1
	}

	logger.DebugContext(ctx, "command failed", "command", cmdName, "error", runErr)
	if cmdCtx.App != nil {
		notice := cmdCtx.App.Errors.Handle(ctx, runErr)
		if notice.LoggedOut {
			_ = writef(stderr, "You have been logged out. Run `joinify login` to continue.\n")
		}
	} else {
		_ = writef(stderr, "error: %v\n", runErr)
	}
	return 1
}

// consoleSink prints notices for the person at the terminal.
func consoleSink(w io.Writer) notify.Sink {
	return notify.SinkFunc(func(_ context.Context, n notify.Notification) error {
		return writef(w, "%s %s\n", levelMarker(n.Level), n.Message)
	})
}

func levelMarker(l notify.Level) string {
	switch l {
	case notify.LevelSuccess:
		return "[ok]"
	case notify.LevelWarning:
		return "[warn]"
	case notify.LevelError:
		return "[error]"
	default:
		return "[info]"
	}
}

func commands() map[string]command {
	list := []command{
		{name: "login", description: "Log in and store the session token", run: runLogin},
		{name: "logout", description: "Forget the stored session token", run: runLogout},
		{name: "register", description: "Create an organizer or attendee account", run: runRegister},
		{name: "whoami", description: "Validate the session and show the current user", run: runWhoami},
		{name: "profile", description: "Update username or email of the current user", run: runProfile},
		{name: "change-password", description: "Change the current user's password", run: runChangePassword},
		{name: "home", description: "Show platform stats and the next upcoming events", run: runHome},
		{name: "stats", description: "Show platform user counts", run: runStats},
		{name: "events", description: "List, search, and filter events", run: runEvents},
		{name: "event", description: "Show one event with capacity and your RSVP", run: runEvent},
		{name: "dashboard", description: "Show the dashboard for the current role", run: runDashboard},
		{name: "join", description: "RSVP to an event", run: runJoin},
		{name: "cancel", description: "Cancel your RSVP to an event", run: runCancel},
		{name: "my-rsvps", description: "List your RSVPs", run: runMyRSVPs},
		{name: "create-event", description: "Create an event (organizers)", run: runCreateEvent},
		{name: "update-event", description: "Edit an event (organizers)", run: runUpdateEvent},
		{name: "delete-event", description: "Delete an event (organizers)", run: runDeleteEvent},
		{name: "attendees", description: "List confirmed attendees of an event (organizers)", run: runAttendees},
		{name: "export-attendees", description: "Write an event's attendee roster as CSV (organizers)", run: runExportAttendees},
		{name: "rsvps", description: "Manage RSVPs of an event (organizers)", run: runEventRSVPs},
		{name: "analytics", description: "Show attendance analytics (organizers)", run: runAnalytics},
		{name: "probe", description: "Check that the Joinify API is reachable", run: runProbe},
		{name: "migrate-storage", description: "Apply the postgres client-storage schema", run: runMigrateStorage, offline: true},
	}
	out := make(map[string]command, len(list))
	for _, c := range list {
		out[c.name] = c
	}
	return out
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: joinify <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-18s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}
