package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/pkg/logger"
	"farewatch-service/pkg/metrics"
)

// twentyTaskMatrix builds a one-route one-way matrix of exactly 20 tasks.
func twentyTaskMatrix() *MatrixGenerator {
	routes := []entity.Route{{Origin: "JFK", Destination: "LHR", Cabin: entity.CabinEconomy}}
	return NewMatrixGenerator(routes, MatrixConfig{
		MinStayDays:   3,
		MaxStayDays:   21,
		StayInterval:  2,
		StartDays:     1,
		MaxDays:       20,
		CheckInterval: 1,
		RoundTrip:     false,
	}, nil)
}

func newTestScheduler(
	matrix *MatrixGenerator,
	search *fakeSearchRepo,
	history *memHistoryRepo,
	checkpoints *memCheckpointRepo,
	notifier *collectNotifier,
) *BatchScheduler {
	log := logger.NewNop()
	m := metrics.NewMetricsWith("test", prometheus.NewRegistry())

	dispatcher := NewNotifierDispatch(log, m)
	if notifier != nil {
		dispatcher = NewNotifierDispatch(log, m, notifier)
	}

	return NewBatchScheduler(
		matrix,
		search,
		NewOfferNormalizer(log),
		NewDealEvaluator(history, log, 35.0, 6.0, false),
		dispatcher,
		checkpoints,
		m,
		log,
		SchedulerConfig{
			BatchSize:              10,
			BatchPause:             0,
			SearchPause:            0,
			Interval:               time.Hour,
			MaxConsecutiveFailures: 5,
		},
	)
}

func TestRunCycleCompletesAndClearsCheckpoint(t *testing.T) {
	search := &fakeSearchRepo{}
	checkpoints := &memCheckpointRepo{}
	s := newTestScheduler(twentyTaskMatrix(), search, newMemHistoryRepo(), checkpoints, nil)

	summary, err := s.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, summary.TasksAttempted)
	assert.Equal(t, 0, summary.TasksFailed)
	assert.False(t, summary.Aborted)
	assert.Len(t, search.executed, 20)
	assert.Nil(t, checkpoints.checkpoint, "checkpoint cleared after a full cycle")
	assert.Greater(t, checkpoints.saves, 0, "progress persisted during the cycle")
}

func TestRunCycleResumesFromCheckpoint(t *testing.T) {
	matrix := twentyTaskMatrix()
	cycleStart := time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)

	search := &fakeSearchRepo{}
	checkpoints := &memCheckpointRepo{
		checkpoint: &entity.Checkpoint{
			MatrixFingerprint: matrix.Fingerprint(),
			NextIndex:         7,
			CycleStartedAt:    cycleStart,
		},
	}
	s := newTestScheduler(matrix, search, newMemHistoryRepo(), checkpoints, nil)

	summary, err := s.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 13, summary.TasksAttempted)
	assert.Equal(t, cycleStart, summary.StartedAt)
	require.Len(t, search.executed, 13)

	// The resumed matrix is anchored on the persisted cycle start, so the
	// first executed task is index 7 of the full sequence.
	expected := matrix.Generate(cycleStart)
	assert.Equal(t, expected[7], search.executed[0])
	assert.Equal(t, expected[19], search.executed[12])
}

func TestRunCycleRestartsOnFingerprintMismatch(t *testing.T) {
	matrix := twentyTaskMatrix()
	search := &fakeSearchRepo{}
	checkpoints := &memCheckpointRepo{
		checkpoint: &entity.Checkpoint{
			MatrixFingerprint: "stale",
			NextIndex:         7,
			CycleStartedAt:    time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC),
		},
	}
	s := newTestScheduler(matrix, search, newMemHistoryRepo(), checkpoints, nil)

	summary, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, summary.TasksAttempted, "stale checkpoint restarts from the top")
}

func TestRunCycleTreatsLoadErrorAsAbsent(t *testing.T) {
	search := &fakeSearchRepo{}
	checkpoints := &memCheckpointRepo{loadErr: errSearchDown}
	s := newTestScheduler(twentyTaskMatrix(), search, newMemHistoryRepo(), checkpoints, nil)

	summary, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, summary.TasksAttempted)
}

func TestRunCycleIsolatesSingleFailure(t *testing.T) {
	search := &fakeSearchRepo{}
	search.results = func(task entity.SearchTask) ([]entity.RawOffer, error) {
		if len(search.executed) == 4 {
			return nil, errSearchDown
		}
		return []entity.RawOffer{{PriceText: "$500", DurationText: "8h"}}, nil
	}

	checkpoints := &memCheckpointRepo{}
	s := newTestScheduler(twentyTaskMatrix(), search, newMemHistoryRepo(), checkpoints, nil)

	summary, err := s.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, summary.TasksAttempted)
	assert.Equal(t, 1, summary.TasksFailed)
	assert.Equal(t, 19, summary.OffersFound)
	assert.False(t, summary.Aborted)
}

func TestRunCycleAbortsAfterConsecutiveFailures(t *testing.T) {
	search := &fakeSearchRepo{
		results: func(task entity.SearchTask) ([]entity.RawOffer, error) {
			return nil, errSearchDown
		},
	}
	checkpoints := &memCheckpointRepo{}
	s := newTestScheduler(twentyTaskMatrix(), search, newMemHistoryRepo(), checkpoints, nil)

	summary, err := s.RunCycle(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errSearchDown)

	assert.True(t, summary.Aborted)
	assert.Equal(t, 5, summary.TasksAttempted)
	assert.Equal(t, 5, summary.TasksFailed)

	require.NotNil(t, checkpoints.checkpoint, "aborted cycle keeps its checkpoint")
	assert.Equal(t, 5, checkpoints.checkpoint.NextIndex)
}

func TestRunCycleFailureStreakResetsOnSuccess(t *testing.T) {
	search := &fakeSearchRepo{}
	search.results = func(task entity.SearchTask) ([]entity.RawOffer, error) {
		// Fail indices 0-3, succeed 4, fail 5-8, succeed the rest: no
		// streak ever reaches five.
		i := len(search.executed) - 1
		if i < 4 || (i > 4 && i < 9) {
			return nil, errSearchDown
		}
		return nil, nil
	}

	checkpoints := &memCheckpointRepo{}
	s := newTestScheduler(twentyTaskMatrix(), search, newMemHistoryRepo(), checkpoints, nil)

	summary, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	assert.False(t, summary.Aborted)
	assert.Equal(t, 20, summary.TasksAttempted)
	assert.Equal(t, 8, summary.TasksFailed)
}

func TestRunCycleStopsAtTaskBoundaryOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	search := &fakeSearchRepo{}
	search.results = func(task entity.SearchTask) ([]entity.RawOffer, error) {
		if len(search.executed) == 3 {
			cancel()
		}
		return nil, nil
	}

	checkpoints := &memCheckpointRepo{}
	s := newTestScheduler(twentyTaskMatrix(), search, newMemHistoryRepo(), checkpoints, nil)

	summary, err := s.RunCycle(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	assert.True(t, summary.Aborted)
	assert.Len(t, search.executed, 3, "in-flight task finished, no new task started")
	require.NotNil(t, checkpoints.checkpoint)
	assert.Equal(t, 3, checkpoints.checkpoint.NextIndex)
}

func TestTwoCyclesDetectDealAgainstFirstCycleBaseline(t *testing.T) {
	routes := []entity.Route{{Origin: "CDG", Destination: "JFK", Cabin: entity.CabinBusiness}}
	matrix := NewMatrixGenerator(routes, MatrixConfig{
		MinStayDays:   3,
		MaxStayDays:   5,
		StayInterval:  1,
		StartDays:     1,
		MaxDays:       1,
		CheckInterval: 7,
		RoundTrip:     true,
	}, nil)

	prices := map[string]string{}
	search := &fakeSearchRepo{}
	search.results = func(task entity.SearchTask) ([]entity.RawOffer, error) {
		price, ok := prices[task.Dates.Return]
		if !ok {
			price = "$3000"
		}
		return []entity.RawOffer{{PriceText: price, DurationText: "9h", StopsText: "Nonstop"}}, nil
	}

	history := newMemHistoryRepo()
	notifier := &collectNotifier{name: "collect"}
	checkpoints := &memCheckpointRepo{}
	s := newTestScheduler(matrix, search, history, checkpoints, notifier)

	// First cycle records baselines only
	summary, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TasksAttempted)
	assert.Equal(t, 0, summary.DealsDetected)
	assert.Empty(t, notifier.deals)

	// Second cycle: one date pair drops 40% below its baseline
	tasks := matrix.Generate(time.Now().UTC())
	require.Len(t, tasks, 3)
	prices[tasks[1].Dates.Return] = "$1800"

	summary, err = s.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DealsDetected)

	require.Len(t, notifier.deals, 1)
	deal := notifier.deals[0]
	assert.Equal(t, "CDG", deal.Offer.Origin)
	assert.Equal(t, 1800.0, deal.Offer.Price)
	assert.Equal(t, 3000.0, deal.Baseline.LowestPrice)
	assert.InDelta(t, 40.0, deal.DiscountPct, 0.001)
}
