package sqlstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/airiscab/ridefare/internal/core/domain"
)

const appendBatchSize = 100

type PriceHistoryRepository struct {
	db *gorm.DB
}

func NewPriceHistoryRepository(db *gorm.DB) *PriceHistoryRepository {
	return &PriceHistoryRepository{db: db}
}

// Append writes all entries in one transaction.
func (r *PriceHistoryRepository) Append(ctx context.Context, entries []domain.PriceHistory) error {
	if len(entries) == 0 {
		return nil
	}
	models := make([]priceHistoryModel, len(entries))
	for i, e := range entries {
		models[i] = priceHistoryModel{
			RouteID:   e.RouteID,
			Service:   e.Service,
			Price:     e.Price,
			Timestamp: e.Timestamp.UTC(),
		}
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, appendBatchSize).Error; err != nil {
		return fmt.Errorf("append price history: %w", err)
	}
	return nil
}

// ListByRoute returns the newest limit entries of a route.
func (r *PriceHistoryRepository) ListByRoute(ctx context.Context, routeID int64, limit int) ([]domain.PriceHistory, error) {
	var models []priceHistoryModel
	err := r.db.WithContext(ctx).
		Where("route_id = ?", routeID).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	out := make([]domain.PriceHistory, len(models))
	for i := range models {
		out[i] = models[i].toDomain()
	}
	return out, nil
}
