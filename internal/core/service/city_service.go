package service

import (
	"strings"

	"github.com/airiscab/ridefare/internal/core/ports"
)

const maxSuggestions = 5

// DefaultCities is the list offered by the pickup/dropoff autocomplete.
var DefaultCities = []string{
	"Manhattan", "Brooklyn", "Queens", "Bronx", "Staten Island",
	"Guntur", "Vijayawada", "Hyderabad", "Chennai", "Bangalore",
	"Mumbai", "Delhi", "Kolkata", "AP", "Telangana",
}

type cityService struct {
	cities []string
}

// NewCityService returns a CityService over cities. A nil slice selects
// DefaultCities.
func NewCityService(cities []string) ports.CityService {
	if cities == nil {
		cities = DefaultCities
	}
	return &cityService{cities: cities}
}

// Autocomplete returns up to five cities containing query, case-insensitively,
// in list order.
func (s *cityService) Autocomplete(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []string{}
	if q == "" {
		return out
	}
	for _, c := range s.cities {
		if strings.Contains(strings.ToLower(c), q) {
			out = append(out, c)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}
