package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/airiscab/ridefare/internal/api/metrics"
	"github.com/airiscab/ridefare/internal/core/domain"
	"github.com/airiscab/ridefare/internal/core/ports"
	"github.com/airiscab/ridefare/internal/core/pricing"
)

type comparisonService struct {
	distance ports.DistanceProvider
	log      zerolog.Logger
}

// NewComparisonService returns a ComparisonService implementation.
func NewComparisonService(distance ports.DistanceProvider, log zerolog.Logger) ports.ComparisonService {
	return &comparisonService{distance: distance, log: log}
}

// Compare prices every listed tier for the route.
func (s *comparisonService) Compare(ctx context.Context, in ports.CompareInput) ([]domain.RideEstimate, error) {
	if err := domain.ValidatePassengerCount(in.PassengerCount); err != nil {
		return nil, err
	}

	m, err := s.distance.RouteMetrics(ctx, in.Pickup, in.Dropoff)
	if err != nil {
		metrics.ComparisonsTotal.WithLabelValues("unavailable").Inc()
		s.log.Warn().Err(err).
			Str("provider", s.distance.Name()).
			Str("pickup", in.Pickup).
			Str("dropoff", in.Dropoff).
			Msg("distance lookup failed")
		if errors.Is(err, domain.ErrRouteUnavailable) {
			return nil, fmt.Errorf("compare prices: %w", err)
		}
		return nil, fmt.Errorf("compare prices: %w: %w", domain.ErrRouteUnavailable, err)
	}

	estimates, err := pricing.Quote(*m, in.Pickup, in.Dropoff, in.PassengerCount, time.Now())
	if err != nil {
		metrics.ComparisonsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("compare prices: %w", err)
	}

	metrics.ComparisonsTotal.WithLabelValues("ok").Inc()
	s.log.Debug().
		Str("pickup", in.Pickup).
		Str("dropoff", in.Dropoff).
		Int("passengers", in.PassengerCount).
		Float64("miles", m.DistanceMiles).
		Msg("prices compared")

	return estimates, nil
}
