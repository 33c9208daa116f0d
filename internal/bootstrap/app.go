package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/joinify/joinify-go/config"
	"github.com/joinify/joinify-go/internal/apiclient"
	"github.com/joinify/joinify-go/internal/observability/notify"
	"github.com/joinify/joinify-go/internal/observability/notify/slack"
	"github.com/joinify/joinify-go/internal/observability/statsd"
	"github.com/joinify/joinify-go/internal/service"
)

// Observability groups the metrics and notification sinks shared by services.
type Observability struct {
	Metrics  statsd.Sink
	Notifier notify.Sink
	closeFn  func() error
}

// Close flushes and closes the metrics connection.
func (o Observability) Close() error {
	if o.closeFn == nil {
		return nil
	}
	return o.closeFn()
}

// BuildObservability configures metrics and notification adapters. Setup
// failures degrade to no-op metrics and log-only notices.
func BuildObservability(logger *slog.Logger, cfg config.ObservabilityConfig, httpClient *http.Client) Observability {
	if logger == nil {
		logger = slog.Default()
	}
	obs := Observability{Metrics: statsd.Nop{}}

	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  logger,
		})
		if err != nil {
			logger.Error("failed to initialise statsd client", "error", err)
		} else {
			obs.Metrics = client
			obs.closeFn = client.Close
		}
	}

	obs.Notifier = buildNotifier(logger, cfg.Notifications, httpClient)
	return obs
}

// buildNotifier always logs notices and mirrors them to Slack at or above
// the configured level when enabled.
func buildNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig, httpClient *http.Client) notify.Sink {
	logSink := notify.LogSink{Logger: logger.With("component", "notices")}
	if !cfg.Enabled || !cfg.Slack.Enabled {
		return logSink
	}

	client, err := slack.NewClient(slack.Config{
		WebhookURL: cfg.Slack.WebhookURL,
		Channel:    cfg.Slack.Channel,
		Username:   cfg.Slack.Username,
		Timeout:    cfg.Timeout,
		RetryLimit: cfg.RetryLimit,
		Client:     httpClient,
		AppURL:     cfg.Slack.AppURL,
	})
	if err != nil {
		logger.Error("failed to initialise slack notifier", "error", err)
		return logSink
	}
	return notify.Multi(logSink, notify.Threshold(notify.Level(cfg.MinLevel), client))
}

// App holds the wired client services.
type App struct {
	Config        *config.AppConfig
	Logger        *slog.Logger
	Store         *Store
	Observability Observability

	API       *apiclient.Client
	Tokens    *service.TokenStore
	Sessions  *service.SessionManager
	Navigator *service.Navigator
	Errors    *service.ErrorHandler
	Home      *service.HomeDashboard
	Attendee  *service.AttendeeDashboard
	Organizer *service.OrganizerDashboard
}

// AppDeps groups dependencies for NewApp. Store and Observability are
// built from Config when nil.
type AppDeps struct {
	Config        *config.AppConfig
	Logger        *slog.Logger
	Store         *Store
	Observability *Observability
	HTTPClient    *http.Client
}

// NewApp opens storage and wires the API client and services.
func NewApp(ctx context.Context, deps AppDeps) (*App, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := deps.Store
	if store == nil {
		var err error
		store, err = OpenStore(ctx, StoreDeps{
			Storage:  cfg.Storage,
			Postgres: cfg.Postgres,
			Redis:    cfg.Redis,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
	}

	var obs Observability
	if deps.Observability != nil {
		obs = *deps.Observability
	} else {
		obs = BuildObservability(logger, cfg.Observability, nil)
	}

	app, err := wireServices(cfg, logger, store, obs, deps.HTTPClient)
	if err != nil {
		return nil, errors.Join(err, store.Close(), obs.Close())
	}
	return app, nil
}

func wireServices(cfg *config.AppConfig, logger *slog.Logger, store *Store, obs Observability, httpClient *http.Client) (*App, error) {
	tokens, err := service.NewTokenStore(store)
	if err != nil {
		return nil, err
	}

	api, err := apiclient.NewClient(apiclient.Config{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		HTTPClient: httpClient,
		Tokens:     tokens,
		Logger:     logger,
		Metrics:    obs.Metrics,
		UserAgent:  cfg.API.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("build api client: %w", err)
	}

	sessions, err := service.NewSessionManager(service.SessionManagerOptions{
		API:    api,
		Tokens: tokens,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	attendee, err := service.NewAttendeeDashboard(service.AttendeeDashboardOptions{
		API:      api,
		Sessions: sessions,
		Sink:     obs.Notifier,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	organizer, err := service.NewOrganizerDashboard(service.OrganizerDashboardOptions{
		API:      api,
		Sessions: sessions,
		Sink:     obs.Notifier,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		Store:         store,
		Observability: obs,
		API:           api,
		Tokens:        tokens,
		Sessions:      sessions,
		Navigator:     service.NewNavigator(sessions),
		Errors: service.NewErrorHandler(service.ErrorHandlerOptions{
			Sessions: sessions,
			Sink:     obs.Notifier,
			Logger:   logger,
		}),
		Home:      service.NewHomeDashboard(api, logger),
		Attendee:  attendee,
		Organizer: organizer,
	}, nil
}

// StartProbe runs the background connectivity check when enabled. The
// returned channel is nil when the probe is disabled.
func (a *App) StartProbe(ctx context.Context) <-chan error {
	if !a.Config.API.ProbeOnStart {
		return nil
	}
	return a.API.StartProbe(ctx, a.Observability.Notifier)
}

// Close releases storage and metrics connections.
func (a *App) Close() error {
	return errors.Join(a.Store.Close(), a.Observability.Close())
}
