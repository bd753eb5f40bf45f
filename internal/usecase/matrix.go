package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"farewatch-service/internal/domain/entity"
)

// MatrixConfig holds the date-window and stay-duration parameters of the
// search matrix.
type MatrixConfig struct {
	MinStayDays        int
	MaxStayDays        int
	StayInterval       int
	StartDays          int
	MaxDays            int
	CheckInterval      int
	RoundTrip          bool
	MinDurationMinutes int
	PremiumOnly        bool
}

// MatrixGenerator expands configured routes and date windows into the
// ordered set of search tasks for one cycle. Generation is deterministic:
// identical inputs and base date always yield the same ordering (route,
// then departure date, then stay length), so a checkpoint index into the
// sequence stays valid across restarts.
type MatrixGenerator struct {
	routes       []entity.Route
	config       MatrixConfig
	originFilter func(entity.Route) bool
}

// NewMatrixGenerator creates a new matrix generator. The origin filter is
// optional; a nil predicate admits every route.
func NewMatrixGenerator(routes []entity.Route, config MatrixConfig, originFilter func(entity.Route) bool) *MatrixGenerator {
	filtered := make([]entity.Route, 0, len(routes))
	for _, route := range routes {
		if originFilter == nil || originFilter(route) {
			filtered = append(filtered, route)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Origin != filtered[j].Origin {
			return filtered[i].Origin < filtered[j].Origin
		}
		if filtered[i].Destination != filtered[j].Destination {
			return filtered[i].Destination < filtered[j].Destination
		}
		return filtered[i].Cabin < filtered[j].Cabin
	})

	return &MatrixGenerator{
		routes:       filtered,
		config:       config,
		originFilter: originFilter,
	}
}

// Generate expands the matrix for a cycle anchored at the given base date.
// The scheduler passes the persisted cycle start on resume so the same
// matrix is regenerated after a restart.
func (g *MatrixGenerator) Generate(base time.Time) []entity.SearchTask {
	day := base.UTC().Truncate(24 * time.Hour)
	first := day.AddDate(0, 0, g.config.StartDays)
	last := day.AddDate(0, 0, g.config.MaxDays)

	var tasks []entity.SearchTask
	for _, route := range g.routes {
		for departure := first; !departure.After(last); departure = departure.AddDate(0, 0, g.config.CheckInterval) {
			departureDate := departure.Format(entity.DateLayout)

			if !g.config.RoundTrip {
				tasks = append(tasks, g.task(route, departureDate, ""))
				continue
			}

			for stay := g.config.MinStayDays; stay <= g.config.MaxStayDays; stay += g.config.StayInterval {
				returnDate := departure.AddDate(0, 0, stay).Format(entity.DateLayout)
				tasks = append(tasks, g.task(route, departureDate, returnDate))
			}
		}
	}

	return tasks
}

func (g *MatrixGenerator) task(route entity.Route, departureDate, returnDate string) entity.SearchTask {
	return entity.SearchTask{
		Route:              route.Key(),
		Dates:              entity.DatePairKey{Departure: departureDate, Return: returnDate},
		MinStayDays:        g.config.MinStayDays,
		MaxStayDays:        g.config.MaxStayDays,
		MinDurationMinutes: g.config.MinDurationMinutes,
		PremiumOnly:        g.config.PremiumOnly,
	}
}

// Fingerprint digests the routes and matrix parameters. A checkpoint is
// only honored when the fingerprint it was taken under still matches;
// changed inputs restart the cycle from index zero.
func (g *MatrixGenerator) Fingerprint() string {
	var b strings.Builder
	for _, route := range g.routes {
		fmt.Fprintf(&b, "%s-%s-%s;", route.Origin, route.Destination, route.Cabin)
	}
	fmt.Fprintf(&b, "|stay=%d..%d/%d|days=%d..%d/%d|roundtrip=%t",
		g.config.MinStayDays, g.config.MaxStayDays, g.config.StayInterval,
		g.config.StartDays, g.config.MaxDays, g.config.CheckInterval,
		g.config.RoundTrip)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
