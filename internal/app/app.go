// Package app assembles ridefare from its configuration: it picks the
// backing services, builds the core services on top of them and owns their
// lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/airiscab/ridefare/internal/api"
	"github.com/airiscab/ridefare/internal/api/handler"
	"github.com/airiscab/ridefare/internal/core/ports"
	"github.com/airiscab/ridefare/internal/core/service"
	"github.com/airiscab/ridefare/internal/infrastructure/config"
	"github.com/airiscab/ridefare/internal/infrastructure/scheduler"
)

// App holds the wired services and the resources they depend on.
type App struct {
	Config     *config.Config
	Comparison ports.ComparisonService
	Cities     ports.CityService
	Tracking   ports.TrackingService
	Scheduler  *scheduler.Scheduler

	store   *store
	checks  []handler.DependencyCheck
	closers []closer
	log     zerolog.Logger
}

type closer struct {
	name  string
	close func(ctx context.Context) error
}

// Build connects to every configured backing service and wires the core
// services. Resources opened before a failure are released.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (_ *App, err error) {
	a := &App{Config: cfg, log: log}
	defer func() {
		if err != nil {
			_ = a.Close(context.WithoutCancel(ctx))
		}
	}()

	a.store, err = openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.addCloser("store", a.store.close)
	a.checks = append(a.checks, handler.DependencyCheck{Name: a.store.name, Ping: a.store.ping})

	distance, err := NewDistanceProvider(cfg, log)
	if err != nil {
		return nil, err
	}

	lock, err := a.checkLock(ctx)
	if err != nil {
		return nil, err
	}

	notifier, err := newNotifier(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	publisher, err := a.alertPublisher()
	if err != nil {
		return nil, err
	}

	a.Scheduler = scheduler.New(cfg.TrackInterval, log.With().Str("component", "scheduler").Logger())
	a.Comparison = service.NewComparisonService(distance, log.With().Str("component", "comparison").Logger())
	a.Cities = service.NewCityService(nil)
	a.Tracking = service.NewTrackingService(service.TrackingDeps{
		Routes:    a.store.routes,
		History:   a.store.history,
		Distance:  distance,
		Notifier:  notifier,
		Publisher: publisher,
		Lock:      lock,
		Scheduler: a.Scheduler,
	}, log.With().Str("component", "tracking").Logger())

	log.Info().
		Str("store", a.store.name).
		Str("distance", distance.Name()).
		Str("notifier", notifier.Name()).
		Dur("track_interval", cfg.TrackInterval).
		Msg("application wired")

	return a, nil
}

// Migrate prepares the store schema.
func (a *App) Migrate(ctx context.Context) error {
	return a.store.migrate(ctx)
}

// Router returns the HTTP API over the wired services.
func (a *App) Router(ctx context.Context) *echo.Echo {
	return api.NewRouter(ctx, api.RouterDeps{
		Comparison:       a.Comparison,
		Cities:           a.Cities,
		Tracking:         a.Tracking,
		Checks:           a.checks,
		CORSAllowOrigins: a.Config.CORSAllowOrigins,
		RateLimitRPS:     a.Config.RateLimit.RPS,
		RateLimitBurst:   a.Config.RateLimit.Burst,
		Log:              a.log.With().Str("component", "http").Logger(),
	})
}

// StartTracking starts the scheduler and re-schedules every active route.
// It returns the number of resumed routes.
func (a *App) StartTracking(ctx context.Context) (int, error) {
	a.Scheduler.Start(ctx, a.Tracking)
	return a.Tracking.ResumeActive(ctx)
}

// Close stops the scheduler and releases resources in reverse order of
// acquisition.
func (a *App) Close(ctx context.Context) error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(ctx); err != nil {
			a.log.Warn().Err(err).Str("resource", c.name).Msg("close failed")
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) addCloser(name string, fn func(ctx context.Context) error) {
	a.closers = append(a.closers, closer{name: name, close: fn})
}
