package ports

import (
	"context"

	"github.com/airiscab/ridefare/internal/core/domain"
)

// CompareInput is the DTO for a one-off price comparison.
type CompareInput struct {
	Pickup         string
	Dropoff        string
	PassengerCount int
}

// ComparisonService quotes every tier for a route.
type ComparisonService interface {
	Compare(ctx context.Context, in CompareInput) ([]domain.RideEstimate, error)
}

// CityService suggests city names for the pickup/dropoff inputs.
type CityService interface {
	Autocomplete(query string) []string
}
