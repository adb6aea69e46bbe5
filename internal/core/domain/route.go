package domain

import (
	"errors"
	"time"
)

var ErrRouteNotFound = errors.New("route not found")
var ErrRouteInactive = errors.New("route is no longer tracked")
var ErrInvalidPhone = errors.New("phone number must be in E.164 format (+1XXXXXXXXXX)")
var ErrInvalidPassengerCount = errors.New("passenger count must be between 1 and 7")
var ErrInvalidTargetPrice = errors.New("target price must be greater than zero")

// TrackedRoute is a pickup/dropoff pair a user asked to be alerted about once
// the cheapest eligible fare drops to TargetPrice or below.
type TrackedRoute struct {
	ID             int64     `json:"id"`
	Pickup         string    `json:"pickup"`
	Dropoff        string    `json:"dropoff"`
	PassengerCount int       `json:"passenger_count"`
	PhoneNumber    string    `json:"phone_number"`
	TargetPrice    float64   `json:"target_price"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Deactivate flips the route to inactive. It reports false when the route was
// already inactive; routes are never re-activated.
func (r *TrackedRoute) Deactivate() bool {
	if !r.IsActive {
		return false
	}
	r.IsActive = false
	return true
}

// PriceHistory is one observed fare for one tier of a tracked route.
type PriceHistory struct {
	ID        int64     `json:"id"`
	RouteID   int64     `json:"route_id"`
	Service   string    `json:"service"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidatePhone accepts "+" followed by one or more ASCII digits and nothing else.
func ValidatePhone(phone string) error {
	if len(phone) < 2 || phone[0] != '+' {
		return ErrInvalidPhone
	}
	for _, r := range phone[1:] {
		if r < '0' || r > '9' {
			return ErrInvalidPhone
		}
	}
	return nil
}

// ValidatePassengerCount rejects counts no tier can carry.
func ValidatePassengerCount(n int) error {
	if n < 1 || n > MaxPassengers {
		return ErrInvalidPassengerCount
	}
	return nil
}
