package domain

import (
	"errors"
	"time"
)

var ErrRouteUnavailable = errors.New("route could not be resolved")
var ErrNoEligibleService = errors.New("no service can carry this many passengers")

// RouteMetrics is what the distance provider knows about a pickup/dropoff pair.
type RouteMetrics struct {
	DistanceMiles     float64
	DurationSeconds   int
	DurationInTraffic int
}

// RideEstimate is the quote for one tier.
type RideEstimate struct {
	Service         ServiceTier
	Price           float64
	DurationSeconds int
	DistanceMiles   float64
	Pickup          string
	Dropoff         string
	Capacity        int
	Recommended     bool
	Links           BookingLinks
}

// PriceAlert is emitted once a tracked route's cheapest fare reaches its target.
type PriceAlert struct {
	RouteID     int64
	PhoneNumber string
	Pickup      string
	Dropoff     string
	Service     ServiceTier
	Price       float64
	TargetPrice float64
	At          time.Time
}
