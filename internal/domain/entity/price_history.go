// internal/domain/entity/price_history.go
package entity

import (
	"time"
)

// PriceHistoryRecord is the persisted price history for one
// route/date-pair/cabin key. Records are created on first observation,
// updated in place on every subsequent one, and never deleted.
type PriceHistoryRecord struct {
	Origin           string
	Destination      string
	Cabin            Cabin
	DepartureDate    string
	ReturnDate       string
	LowestPrice      float64
	MostRecentPrice  float64
	MostRecentAt     time.Time
	ObservationCount int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Key returns the persistent identity of the record.
func (r *PriceHistoryRecord) Key() string {
	return HistoryKey(
		RouteKey{Origin: r.Origin, Destination: r.Destination, Cabin: r.Cabin},
		DatePairKey{Departure: r.DepartureDate, Return: r.ReturnDate},
	)
}
