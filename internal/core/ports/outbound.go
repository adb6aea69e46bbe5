package ports

import (
	"context"
	"time"

	"github.com/airiscab/ridefare/internal/core/domain"
)

// DistanceProvider resolves a pickup/dropoff pair into driving metrics.
type DistanceProvider interface {
	Name() string
	RouteMetrics(ctx context.Context, pickup, dropoff string) (*domain.RouteMetrics, error)
}

// Notifier delivers a text message to an E.164 phone number.
type Notifier interface {
	Name() string
	Send(ctx context.Context, to, body string) error
}

// AlertPublisher fans price alerts out to other systems.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert domain.PriceAlert) error
}

// CheckLock keeps two processes from checking the same route at once.
type CheckLock interface {
	// TryAcquire reports whether the caller now holds the lock for routeID.
	// The returned token identifies this hold and must be passed to Release.
	TryAcquire(ctx context.Context, routeID int64, ttl time.Duration) (token string, ok bool, err error)
	// Release frees the lock only if token still owns it.
	Release(ctx context.Context, routeID int64, token string) error
}

// JobScheduler runs the periodic price check of a route.
type JobScheduler interface {
	Schedule(routeID int64) error
	Cancel(routeID int64)
}

// RouteChecker is the job body the scheduler runs on every tick.
type RouteChecker interface {
	CheckRoute(ctx context.Context, routeID int64) (*CheckResult, error)
}
