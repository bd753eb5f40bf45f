// internal/domain/entity/offer.go
package entity

import (
	"time"
)

// Cabin identifies the booking class of an itinerary.
type Cabin string

const (
	CabinEconomy        Cabin = "economy"
	CabinPremiumEconomy Cabin = "premium-economy"
	CabinBusiness       Cabin = "business"
	CabinFirst          Cabin = "first"
)

// IsPremium reports whether the cabin is business or first class.
func (c Cabin) IsPremium() bool {
	return c == CabinBusiness || c == CabinFirst
}

// RawOffer is one itinerary as extracted from a rendered search page,
// before validation or metric derivation.
type RawOffer struct {
	PriceText     string   `json:"price"`
	DurationText  string   `json:"duration"`
	StopsText     string   `json:"stops"`
	Airlines      []string `json:"airlines"`
	Cabin         string   `json:"cabin"`
	DepartureTime string   `json:"departureTime"`
	ArrivalTime   string   `json:"arrivalTime"`
	URL           string   `json:"url"`
}

// Offer is a normalized itinerary with derived pricing metrics.
// Invariants: Price > 0, DurationMinutes > 0, DepartureDate <= ReturnDate
// when a return date is present.
type Offer struct {
	Origin          string
	Destination     string
	Cabin           Cabin
	DepartureDate   string // YYYY-MM-DD
	ReturnDate      string // YYYY-MM-DD, empty for one-way
	Currency        string
	Price           float64
	DurationMinutes int
	Stops           int
	Airlines        []string
	URL             string
	ScrapedAt       time.Time
	PricePerHour    float64
	ValueScore      float64 // 0-100 relative to the route-level distribution, lower is better
}

// RouteKey returns the history partition identity of the offer.
func (o *Offer) RouteKey() RouteKey {
	return RouteKey{Origin: o.Origin, Destination: o.Destination, Cabin: o.Cabin}
}

// DatePairKey returns the date-pair identity of the offer.
func (o *Offer) DatePairKey() DatePairKey {
	return DatePairKey{Departure: o.DepartureDate, Return: o.ReturnDate}
}

// DurationHours converts the total duration to fractional hours.
func (o *Offer) DurationHours() float64 {
	return float64(o.DurationMinutes) / 60.0
}
