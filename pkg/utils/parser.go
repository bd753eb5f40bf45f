package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"farewatch-service/internal/domain/entity"
)

var (
	amountRegex  = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	hoursRegex   = regexp.MustCompile(`(\d+)\s*h(?:r|rs|our|ours)?\b`)
	minutesRegex = regexp.MustCompile(`(\d+)\s*m(?:in|ins|inute|inutes)?\b`)
	stopsRegex   = regexp.MustCompile(`\d+`)
)

// ParsePrice extracts the numeric amount and currency from scraped price
// text such as "$1,299" or "€2,450.50 round trip".
func ParsePrice(text string) (float64, string, error) {
	match := amountRegex.FindString(text)
	if match == "" {
		return 0, "", fmt.Errorf("no numeric amount in %q", text)
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid amount %q: %w", match, err)
	}

	currency := "USD"
	switch {
	case strings.Contains(text, "€") || strings.Contains(text, "EUR"):
		currency = "EUR"
	case strings.Contains(text, "£") || strings.Contains(text, "GBP"):
		currency = "GBP"
	}

	return amount, currency, nil
}

// ParseDurationMinutes converts duration text such as "8 hr 35 min" or
// "13h 20m" into total minutes.
func ParseDurationMinutes(text string) (int, error) {
	lower := strings.ToLower(text)

	hours := hoursRegex.FindStringSubmatch(lower)
	minutes := minutesRegex.FindStringSubmatch(lower)
	if hours == nil && minutes == nil {
		return 0, fmt.Errorf("unrecognized duration %q", text)
	}

	total := 0
	if hours != nil {
		h, err := strconv.Atoi(hours[1])
		if err != nil {
			return 0, fmt.Errorf("invalid hours in %q: %w", text, err)
		}
		total += h * 60
	}
	if minutes != nil {
		m, err := strconv.Atoi(minutes[1])
		if err != nil {
			return 0, fmt.Errorf("invalid minutes in %q: %w", text, err)
		}
		total += m
	}

	return total, nil
}

// ParseStops converts stop text such as "Nonstop", "1 stop" or "2 stops"
// into a stop count.
func ParseStops(text string) (int, error) {
	if strings.Contains(strings.ToLower(text), "nonstop") {
		return 0, nil
	}

	match := stopsRegex.FindString(text)
	if match == "" {
		return 0, fmt.Errorf("unrecognized stops %q", text)
	}

	return strconv.Atoi(match)
}

// ParseCabin maps scraped cabin text onto a canonical cabin class.
func ParseCabin(text string) (entity.Cabin, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), " ", "-")

	switch normalized {
	case "economy", "coach":
		return entity.CabinEconomy, nil
	case "premium-economy", "premium":
		return entity.CabinPremiumEconomy, nil
	case "business":
		return entity.CabinBusiness, nil
	case "first":
		return entity.CabinFirst, nil
	}

	return "", fmt.Errorf("unrecognized cabin %q", text)
}

// dateFormats are tried in order when a date is not already YYYY-MM-DD.
var dateFormats = []string{
	entity.DateLayout,
	"01/02/2006",
	"02/01/2006",
	"01-02-2006",
	"2006/01/02",
}

// ParseDate normalizes a date string to YYYY-MM-DD, accepting a few common
// alternative formats.
func ParseDate(text string) (string, error) {
	for _, format := range dateFormats {
		if parsed, err := time.Parse(format, text); err == nil {
			return parsed.Format(entity.DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date format %q", text)
}
