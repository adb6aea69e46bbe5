// Package pricing turns route metrics into per-tier fares.
//
// Fares are computed with decimal arithmetic and rounded to cents only once,
// at the end, so repeated checks of the same route produce identical history rows.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/airiscab/ridefare/internal/core/domain"
)

// RateCard holds the fare components of a tier, in dollars.
type RateCard struct {
	BaseFare   decimal.Decimal
	PerMile    decimal.Decimal
	PerMinute  decimal.Decimal
	BookingFee decimal.Decimal
}

func card(base, mile, minute, booking string) RateCard {
	return RateCard{
		BaseFare:   decimal.RequireFromString(base),
		PerMile:    decimal.RequireFromString(mile),
		PerMinute:  decimal.RequireFromString(minute),
		BookingFee: decimal.RequireFromString(booking),
	}
}

// Bike has no card of its own and is priced at Uber rates over its longer
// trip duration.
var rateCards = map[domain.ServiceTier]RateCard{
	domain.TierUber:   card("2.00", "1.50", "0.25", "2.00"),
	domain.TierLyft:   card("2.00", "1.50", "0.25", "2.00"),
	domain.TierUberXL: card("3.00", "2.00", "0.35", "2.50"),
}

var (
	surgePeak  = decimal.RequireFromString("1.5")
	surgeNone  = decimal.NewFromInt(1)
	sixty      = decimal.NewFromInt(60)
	bikeFactor = decimal.RequireFromString("1.5")
)

// RateCardFor returns the tier's rate card; unknown tiers are priced as Uber.
func RateCardFor(tier domain.ServiceTier) RateCard {
	if rc, ok := rateCards[tier]; ok {
		return rc
	}
	return rateCards[domain.TierUber]
}

// SurgeMultiplier is 1.5 on weekdays between 07:00-09:59 and 16:00-19:59
// (in at's location), 1.0 otherwise.
func SurgeMultiplier(at time.Time) decimal.Decimal {
	wd := at.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return surgeNone
	}
	h := at.Hour()
	if (h >= 7 && h <= 9) || (h >= 16 && h <= 19) {
		return surgePeak
	}
	return surgeNone
}

// TripDuration returns the expected ride time in seconds for the tier.
// Bikes are slower than cars on the same route.
func TripDuration(m domain.RouteMetrics, tier domain.ServiceTier) int {
	if tier == domain.TierBike {
		return int(decimal.NewFromInt(int64(m.DurationSeconds)).Mul(bikeFactor).IntPart())
	}
	return m.DurationSeconds
}

// Fare prices one tier for the given route at time at.
func Fare(m domain.RouteMetrics, tier domain.ServiceTier, at time.Time) float64 {
	rc := RateCardFor(tier)

	miles := decimal.NewFromFloat(m.DistanceMiles)
	minutes := decimal.NewFromInt(int64(TripDuration(m, tier))).Div(sixty)

	total := rc.BaseFare.
		Add(miles.Mul(rc.PerMile)).
		Add(minutes.Mul(rc.PerMinute)).
		Add(rc.BookingFee)

	return total.Mul(SurgeMultiplier(at)).Round(2).InexactFloat64()
}

// FormatUSD renders a price the way estimates are displayed, e.g. "$12.50".
func FormatUSD(price float64) string {
	return "$" + decimal.NewFromFloat(price).StringFixed(2)
}
