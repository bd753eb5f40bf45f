package entity

import (
	"strings"
)

// DateLayout is the wire format for all search dates.
const DateLayout = "2006-01-02"

// Route is one configured origin/destination/cabin to watch.
type Route struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Cabin       Cabin  `json:"cabin"`
	Description string `json:"description,omitempty"`
}

// Key returns the route's history partition identity.
func (r Route) Key() RouteKey {
	return RouteKey{Origin: r.Origin, Destination: r.Destination, Cabin: r.Cabin}
}

// RouteKey is the (origin, destination, cabin) identity used to partition
// price history.
type RouteKey struct {
	Origin      string
	Destination string
	Cabin       Cabin
}

// DatePairKey is a concrete (departure, return) pair nested under a RouteKey.
// Return is empty for one-way searches.
type DatePairKey struct {
	Departure string
	Return    string
}

// HistoryKey renders the persistent identity of a route/date-pair combination
// as origin|destination|cabin|departure|return.
func HistoryKey(route RouteKey, dates DatePairKey) string {
	return strings.Join([]string{
		route.Origin,
		route.Destination,
		string(route.Cabin),
		dates.Departure,
		dates.Return,
	}, "|")
}
