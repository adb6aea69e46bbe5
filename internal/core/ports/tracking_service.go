package ports

import (
	"context"
	"time"

	"github.com/airiscab/ridefare/internal/core/domain"
)

// TrackRouteInput carries a new price-alert registration.
type TrackRouteInput struct {
	Pickup         string
	Dropoff        string
	PassengerCount int
	PhoneNumber    string
	TargetPrice    float64
}

// TrackRouteResult is returned once the route is stored.
type TrackRouteResult struct {
	RouteID int64
	// Notified is true when the immediate first check already hit the target.
	Notified bool
}

// CheckResult summarises one price check of a tracked route.
type CheckResult struct {
	RouteID         int64
	Skipped         bool // another worker held the check lock
	CheapestService domain.ServiceTier
	CheapestPrice   float64
	Notified        bool
	CheckedAt       time.Time
}

// TrackingService implements the price-alert use cases.
type TrackingService interface {
	Track(ctx context.Context, in TrackRouteInput) (*TrackRouteResult, error)
	CheckRoute(ctx context.Context, routeID int64) (*CheckResult, error)
	ListByPhone(ctx context.Context, phone string) ([]*domain.TrackedRoute, error)
	Untrack(ctx context.Context, routeID int64) error
	History(ctx context.Context, routeID int64, limit int) ([]domain.PriceHistory, error)
	ResumeActive(ctx context.Context) (int, error)
}
