package ports

import (
	"context"

	"github.com/airiscab/ridefare/internal/core/domain"
)

// RouteRepository persists tracked routes.
type RouteRepository interface {
	// Create stores r and fills in its ID and CreatedAt.
	Create(ctx context.Context, r *domain.TrackedRoute) error
	FindByID(ctx context.Context, id int64) (*domain.TrackedRoute, error)
	// ListByPhone returns every route registered for phone, newest first.
	ListByPhone(ctx context.Context, phone string) ([]*domain.TrackedRoute, error)
	ListActive(ctx context.Context) ([]*domain.TrackedRoute, error)
	// Deactivate atomically clears the active flag. It returns
	// domain.ErrRouteInactive when the route was already inactive, so exactly
	// one caller observes the transition.
	Deactivate(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// PriceHistoryRepository is the append-only price log.
type PriceHistoryRepository interface {
	Append(ctx context.Context, entries []domain.PriceHistory) error
	// ListByRoute returns at most limit entries for the route, newest first.
	ListByRoute(ctx context.Context, routeID int64, limit int) ([]domain.PriceHistory, error)
}
