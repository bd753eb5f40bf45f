package entity

import (
	"time"
)

// SearchTask is one unit of scheduled work: a route plus a concrete date
// pair plus the search constraints forwarded to the scraping collaborator.
// Tasks live only for the duration of one scheduling cycle.
type SearchTask struct {
	Route              RouteKey
	Dates              DatePairKey
	MinStayDays        int
	MaxStayDays        int
	MinDurationMinutes int
	PremiumOnly        bool
}

// Checkpoint is the persisted progress marker for a scheduling cycle.
// NextIndex addresses the matrix regenerated from CycleStartedAt; a changed
// MatrixFingerprint invalidates the checkpoint.
type Checkpoint struct {
	MatrixFingerprint string
	NextIndex         int
	CycleStartedAt    time.Time
}

// CycleSummary reports what one pass over the search matrix accomplished.
type CycleSummary struct {
	StartedAt      time.Time
	FinishedAt     time.Time
	TasksAttempted int
	TasksFailed    int
	OffersFound    int
	OffersSkipped  int
	DealsDetected  int
	Aborted        bool
}
