// internal/domain/entity/deal.go
package entity

import (
	"fmt"
	"time"
)

// DealRecord pairs a qualifying offer with the discount computed against its
// historical baseline. Immutable once created; handed to notifier dispatch
// and then discarded by the core.
type DealRecord struct {
	Offer       Offer
	DiscountPct float64
	Baseline    PriceHistoryRecord // state of the history record before this observation
	DetectedAt  time.Time
}

// Key returns a stable identity for archiving: history key, price and
// detection time.
func (d *DealRecord) Key() string {
	return fmt.Sprintf("%s|%.2f|%d",
		HistoryKey(d.Offer.RouteKey(), d.Offer.DatePairKey()),
		d.Offer.Price,
		d.DetectedAt.Unix(),
	)
}
