package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/joinify/joinify-go/internal/domain/model"
)

// HomeEventLimit is how many upcoming events the landing page shows.
const HomeEventLimit = 3

// HomeView is the landing page view model. Stats fall back to zeros when
// the stats call fails; an events failure is recorded in EventsErr.
type HomeView struct {
	Events    []model.Event
	EventsErr error
	Stats     model.UserStats
	StatsErr  error
}

// HomeDashboard builds the public landing page.
type HomeDashboard struct {
	api    HomeAPI
	logger *slog.Logger
}

// NewHomeDashboard constructs a HomeDashboard.
func NewHomeDashboard(api HomeAPI, logger *slog.Logger) *HomeDashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &HomeDashboard{api: api, logger: logger}
}

// Load fetches upcoming events and user stats concurrently.
func (d *HomeDashboard) Load(ctx context.Context) HomeView {
	var view HomeView
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		events, err := d.api.UpcomingEvents(gctx)
		if err != nil {
			d.logger.ErrorContext(gctx, "load upcoming events", "error", err)
			view.EventsErr = err
			return nil
		}
		view.Events = firstN(events, HomeEventLimit)
		return nil
	})

	g.Go(func() error {
		stats, err := d.api.UserStats(gctx)
		if err != nil {
			d.logger.ErrorContext(gctx, "load user stats", "error", err)
			view.StatsErr = err
			stats = model.UserStats{}
		}
		view.Stats = stats
		return nil
	})

	_ = g.Wait()
	return view
}

func firstN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
