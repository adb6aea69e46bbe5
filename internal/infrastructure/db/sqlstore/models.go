package sqlstore

import (
	"time"

	"github.com/airiscab/ridefare/internal/core/domain"
)

type routeModel struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	Pickup         string    `gorm:"size:255;not null"`
	Dropoff        string    `gorm:"size:255;not null"`
	PassengerCount int       `gorm:"not null"`
	PhoneNumber    string    `gorm:"size:32;not null;index"`
	TargetPrice    float64   `gorm:"not null"`
	IsActive       bool      `gorm:"not null;index"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (routeModel) TableName() string { return "tracked_routes" }

func routeFromDomain(r *domain.TrackedRoute) *routeModel {
	return &routeModel{
		ID:             r.ID,
		Pickup:         r.Pickup,
		Dropoff:        r.Dropoff,
		PassengerCount: r.PassengerCount,
		PhoneNumber:    r.PhoneNumber,
		TargetPrice:    r.TargetPrice,
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
	}
}

func (m *routeModel) toDomain() *domain.TrackedRoute {
	return &domain.TrackedRoute{
		ID:             m.ID,
		Pickup:         m.Pickup,
		Dropoff:        m.Dropoff,
		PassengerCount: m.PassengerCount,
		PhoneNumber:    m.PhoneNumber,
		TargetPrice:    m.TargetPrice,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

// Rows outlive their route, so route_id carries no foreign key.
type priceHistoryModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	RouteID   int64     `gorm:"not null;index:idx_price_history_route_ts,priority:1"`
	Service   string    `gorm:"size:32;not null"`
	Price     float64   `gorm:"not null"`
	Timestamp time.Time `gorm:"not null;index:idx_price_history_route_ts,priority:2"`
}

func (priceHistoryModel) TableName() string { return "price_history" }

func (m *priceHistoryModel) toDomain() domain.PriceHistory {
	return domain.PriceHistory{
		ID:        m.ID,
		RouteID:   m.RouteID,
		Service:   m.Service,
		Price:     m.Price,
		Timestamp: m.Timestamp.UTC(),
	}
}
