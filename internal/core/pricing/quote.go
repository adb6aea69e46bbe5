package pricing

import (
	"time"

	"github.com/airiscab/ridefare/internal/core/domain"
)

// shown reports whether a tier is listed for a group of n passengers.
// Bikes are hidden for groups larger than they can carry; car tiers are always
// listed so riders can compare.
func shown(tier domain.ServiceTier, n int) bool {
	if tier == domain.TierBike {
		return tier.Fits(n)
	}
	return true
}

// Quote prices every listed tier and flags the cheapest one that can carry
// the group as Recommended.
func Quote(m domain.RouteMetrics, pickup, dropoff string, passengers int, at time.Time) ([]domain.RideEstimate, error) {
	estimates := make([]domain.RideEstimate, 0, len(domain.Tiers))
	for _, tier := range domain.Tiers {
		if !shown(tier, passengers) {
			continue
		}
		estimates = append(estimates, domain.RideEstimate{
			Service:         tier,
			Price:           Fare(m, tier, at),
			DurationSeconds: TripDuration(m, tier),
			DistanceMiles:   m.DistanceMiles,
			Pickup:          pickup,
			Dropoff:         dropoff,
			Capacity:        tier.Capacity(),
			Links:           domain.BookingLinksFor(tier, pickup, dropoff),
		})
	}

	best := cheapestIndex(estimates, passengers)
	if best < 0 {
		return estimates, domain.ErrNoEligibleService
	}
	estimates[best].Recommended = true
	return estimates, nil
}

// Eligible prices only the tiers that can carry the group.
func Eligible(m domain.RouteMetrics, pickup, dropoff string, passengers int, at time.Time) []domain.RideEstimate {
	all, _ := Quote(m, pickup, dropoff, passengers, at)
	out := make([]domain.RideEstimate, 0, len(all))
	for _, e := range all {
		if e.Service.Fits(passengers) {
			out = append(out, e)
		}
	}
	return out
}

// Cheapest returns the lowest priced estimate that can carry the group.
func Cheapest(estimates []domain.RideEstimate, passengers int) (domain.RideEstimate, error) {
	i := cheapestIndex(estimates, passengers)
	if i < 0 {
		return domain.RideEstimate{}, domain.ErrNoEligibleService
	}
	return estimates[i], nil
}

func cheapestIndex(estimates []domain.RideEstimate, passengers int) int {
	best := -1
	for i, e := range estimates {
		if !e.Service.Fits(passengers) {
			continue
		}
		if best < 0 || e.Price < estimates[best].Price {
			best = i
		}
	}
	return best
}
