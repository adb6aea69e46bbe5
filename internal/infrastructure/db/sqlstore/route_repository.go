package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/airiscab/ridefare/internal/core/domain"
)

type RouteRepository struct {
	db *gorm.DB
}

func NewRouteRepository(db *gorm.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// Create inserts a route and copies the generated id and timestamp back.
func (r *RouteRepository) Create(ctx context.Context, route *domain.TrackedRoute) error {
	m := routeFromDomain(route)
	m.ID = 0
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create route: %w", err)
	}
	route.ID = m.ID
	route.CreatedAt = m.CreatedAt.UTC()
	return nil
}

func (r *RouteRepository) FindByID(ctx context.Context, id int64) (*domain.TrackedRoute, error) {
	var m routeModel
	err := r.db.WithContext(ctx).First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRouteNotFound
		}
		return nil, fmt.Errorf("find route %d: %w", id, err)
	}
	return m.toDomain(), nil
}

// ListByPhone returns all routes of a phone number, newest first.
func (r *RouteRepository) ListByPhone(ctx context.Context, phone string) ([]*domain.TrackedRoute, error) {
	return r.list(ctx, r.db.Where("phone_number = ?", phone).Order("created_at DESC").Order("id DESC"))
}

func (r *RouteRepository) ListActive(ctx context.Context) ([]*domain.TrackedRoute, error) {
	return r.list(ctx, r.db.Where("is_active = ?", true).Order("id ASC"))
}

func (r *RouteRepository) list(ctx context.Context, q *gorm.DB) ([]*domain.TrackedRoute, error) {
	var models []routeModel
	if err := q.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	out := make([]*domain.TrackedRoute, len(models))
	for i := range models {
		out[i] = models[i].toDomain()
	}
	return out, nil
}

// Deactivate flips is_active only when it is still true, so concurrent
// callers cannot both succeed.
func (r *RouteRepository) Deactivate(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&routeModel{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate route %d: %w", id, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrRouteInactive
}

func (r *RouteRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&routeModel{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete route %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrRouteNotFound
	}
	return nil
}
