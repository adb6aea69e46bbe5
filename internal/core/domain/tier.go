package domain

import (
	"fmt"
	"strings"
)

// ServiceTier identifies a ride-hailing product a fare is quoted for.
type ServiceTier string

const (
	TierBike   ServiceTier = "Bike"
	TierUber   ServiceTier = "Uber"
	TierLyft   ServiceTier = "Lyft"
	TierUberXL ServiceTier = "UberXL"
)

// MaxPassengers is the largest group any tier carries.
const MaxPassengers = 7

// Tiers lists every tier in display order. Ties on price resolve to the
// earlier entry.
var Tiers = []ServiceTier{TierBike, TierUber, TierLyft, TierUberXL}

var capacities = map[ServiceTier]int{
	TierBike:   2,
	TierUber:   4,
	TierLyft:   4,
	TierUberXL: 7,
}

// Capacity returns the maximum number of passengers for the tier, or 0 for
// an unknown tier.
func (t ServiceTier) Capacity() int {
	return capacities[t]
}

// Fits reports whether a group of n passengers can ride this tier.
func (t ServiceTier) Fits(n int) bool {
	return n >= 1 && n <= t.Capacity()
}

// CapacityLabel renders the capacity as shown to riders, e.g. "1-4 passengers".
func (t ServiceTier) CapacityLabel() string {
	return fmt.Sprintf("1-%d passengers", t.Capacity())
}

// BookingLinks holds the app deep link and the web fallback for a tier.
type BookingLinks struct {
	AppURL string `json:"app_url"`
	WebURL string `json:"web_url"`
}

// BookingLinksFor builds the links a client uses to open the provider app
// with the route prefilled.
func BookingLinksFor(tier ServiceTier, pickup, dropoff string) BookingLinks {
	p := strings.ReplaceAll(pickup, " ", "%20")
	d := strings.ReplaceAll(dropoff, " ", "%20")

	switch tier {
	case TierUber, TierUberXL:
		return BookingLinks{
			AppURL: "uber://?action=setPickup&pickup=" + p + "&dropoff=" + d,
			WebURL: "https://m.uber.com/looking",
		}
	case TierLyft:
		return BookingLinks{
			AppURL: "lyft://ridetype?id=lyft&pickup[address]=" + p + "&destination[address]=" + d,
			WebURL: "https://ride.lyft.com",
		}
	case TierBike:
		return BookingLinks{
			AppURL: "rapido://book?pickup=" + p + "&dropoff=" + d,
			WebURL: "https://www.rapido.bike",
		}
	}
	return BookingLinks{}
}
