package handler

import (
	"time"

	"github.com/airiscab/ridefare/internal/core/domain"
	"github.com/airiscab/ridefare/internal/core/pricing"
)

func toEstimateResponses(estimates []domain.RideEstimate) []estimateResponse {
	out := make([]estimateResponse, len(estimates))
	for i, e := range estimates {
		out[i] = estimateResponse{
			Service:       string(e.Service),
			PriceEstimate: pricing.FormatUSD(e.Price),
			Duration:      e.DurationSeconds,
			Distance:      e.DistanceMiles,
			Pickup:        e.Pickup,
			Dropoff:       e.Dropoff,
			Recommended:   e.Recommended,
			Capacity:      e.Service.CapacityLabel(),
			AppURL:        e.Links.AppURL,
			WebURL:        e.Links.WebURL,
		}
	}
	return out
}

func toTrackedRouteResponses(routes []*domain.TrackedRoute) []trackedRouteResponse {
	out := make([]trackedRouteResponse, len(routes))
	for i, r := range routes {
		out[i] = trackedRouteResponse{
			ID:             r.ID,
			Pickup:         r.Pickup,
			Dropoff:        r.Dropoff,
			PassengerCount: r.PassengerCount,
			PhoneNumber:    r.PhoneNumber,
			TargetPrice:    r.TargetPrice,
			IsActive:       r.IsActive,
			CreatedAt:      r.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return out
}

func toPriceHistoryResponses(entries []domain.PriceHistory) []priceHistoryResponse {
	out := make([]priceHistoryResponse, len(entries))
	for i, h := range entries {
		out[i] = priceHistoryResponse{
			ID:        h.ID,
			RouteID:   h.RouteID,
			Service:   h.Service,
			Price:     h.Price,
			Timestamp: h.Timestamp.UTC().Format(time.RFC3339),
		}
	}
	return out
}
