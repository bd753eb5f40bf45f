package templates

import (
	"fmt"
	"strings"

	"farewatch-service/internal/domain/entity"
)

// RenderDealEmail builds the subject and plain-text body of a deal alert.
// The origin and destination labels default to the airport codes when no
// reference data is available.
func RenderDealEmail(deal *entity.DealRecord, originLabel, destinationLabel string) (string, string) {
	offer := deal.Offer

	subject := fmt.Sprintf("Flight deal: %s to %s for %s%.0f (%.0f%% off)",
		offer.Origin, offer.Destination, currencySymbol(offer.Currency), offer.Price, deal.DiscountPct)

	var b strings.Builder
	fmt.Fprintf(&b, "Route: %s (%s) to %s (%s)\n", originLabel, offer.Origin, destinationLabel, offer.Destination)
	fmt.Fprintf(&b, "Cabin: %s\n", offer.Cabin)
	if offer.ReturnDate != "" {
		fmt.Fprintf(&b, "Dates: %s to %s\n", offer.DepartureDate, offer.ReturnDate)
	} else {
		fmt.Fprintf(&b, "Departure: %s (one-way)\n", offer.DepartureDate)
	}
	fmt.Fprintf(&b, "\nPrice: %s%.2f %s\n", currencySymbol(offer.Currency), offer.Price, offer.Currency)
	fmt.Fprintf(&b, "Previous lowest: %s%.2f (%d observations)\n",
		currencySymbol(offer.Currency), deal.Baseline.LowestPrice, deal.Baseline.ObservationCount)
	fmt.Fprintf(&b, "Discount: %.1f%%\n", deal.DiscountPct)
	fmt.Fprintf(&b, "\nDuration: %.1f hours, %s\n", offer.DurationHours(), stopsLabel(offer.Stops))
	if len(offer.Airlines) > 0 {
		fmt.Fprintf(&b, "Airlines: %s\n", strings.Join(offer.Airlines, ", "))
	}
	if offer.URL != "" {
		fmt.Fprintf(&b, "\nBook: %s\n", offer.URL)
	}
	fmt.Fprintf(&b, "\nDetected at %s\n", deal.DetectedAt.Format("2006-01-02 15:04 MST"))

	return subject, b.String()
}

func currencySymbol(currency string) string {
	switch currency {
	case "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return ""
	}
}

func stopsLabel(stops int) string {
	switch stops {
	case 0:
		return "nonstop"
	case 1:
		return "1 stop"
	default:
		return fmt.Sprintf("%d stops", stops)
	}
}
