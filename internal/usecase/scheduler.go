package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"
	"farewatch-service/pkg/metrics"
)

// SchedulerConfig holds the pacing parameters of the batch scheduler.
type SchedulerConfig struct {
	BatchSize              int
	BatchPause             time.Duration
	SearchPause            time.Duration
	Interval               time.Duration
	MaxConsecutiveFailures int
}

// BatchScheduler walks the search matrix in order, one task at a time,
// persisting a checkpoint after every task so a restart resumes where the
// previous process stopped. Single-threaded on purpose: the scraping
// collaborator tolerates only paced, sequential traffic.
type BatchScheduler struct {
	matrix         *MatrixGenerator
	searchRepo     repository.FlightSearchRepository
	normalizer     *OfferNormalizer
	evaluator      *DealEvaluator
	dispatcher     *NotifierDispatch
	checkpointRepo repository.CheckpointRepository
	metrics        *metrics.Metrics
	logger         logger.Logger
	config         SchedulerConfig
	limiter        *rate.Limiter
	now            func() time.Time
}

// NewBatchScheduler creates a new batch scheduler
func NewBatchScheduler(
	matrix *MatrixGenerator,
	searchRepo repository.FlightSearchRepository,
	normalizer *OfferNormalizer,
	evaluator *DealEvaluator,
	dispatcher *NotifierDispatch,
	checkpointRepo repository.CheckpointRepository,
	m *metrics.Metrics,
	logger logger.Logger,
	config SchedulerConfig,
) *BatchScheduler {
	searchLimit := rate.Inf
	if config.SearchPause > 0 {
		searchLimit = rate.Every(config.SearchPause)
	}

	return &BatchScheduler{
		matrix:         matrix,
		searchRepo:     searchRepo,
		normalizer:     normalizer,
		evaluator:      evaluator,
		dispatcher:     dispatcher,
		checkpointRepo: checkpointRepo,
		metrics:        m,
		logger:         logger,
		config:         config,
		limiter:        rate.NewLimiter(searchLimit, 1),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Run executes scheduling cycles until the context is cancelled. Each cycle
// starts Interval after the previous cycle began; a cycle that overruns the
// interval is followed immediately.
func (s *BatchScheduler) Run(ctx context.Context) {
	for {
		summary, err := s.RunCycle(ctx)
		if err != nil {
			s.logger.Error("Cycle ended with error", "error", err)
		}
		if summary != nil {
			s.logger.Info("Cycle finished",
				"tasksAttempted", summary.TasksAttempted,
				"tasksFailed", summary.TasksFailed,
				"offersFound", summary.OffersFound,
				"offersSkipped", summary.OffersSkipped,
				"dealsDetected", summary.DealsDetected,
				"aborted", summary.Aborted,
				"elapsed", summary.FinishedAt.Sub(summary.StartedAt))
		}

		if ctx.Err() != nil {
			return
		}

		next := s.now().Add(s.config.Interval)
		if summary != nil && !summary.Aborted {
			next = summary.StartedAt.Add(s.config.Interval)
		}
		if wait := next.Sub(s.now()); wait > 0 {
			s.logger.Info("Sleeping until next cycle", "wakeAt", next)
			if err := sleepCtx(ctx, wait); err != nil {
				return
			}
		}
	}
}

// RunCycle executes one pass over the search matrix, resuming from a valid
// checkpoint when one exists. Returns the cycle summary; a non-nil error
// means the cycle aborted before reaching the end of the matrix.
func (s *BatchScheduler) RunCycle(ctx context.Context) (*entity.CycleSummary, error) {
	fingerprint := s.matrix.Fingerprint()

	tasks, startIndex, cycleStart := s.resumeOrStart(ctx, fingerprint)
	summary := &entity.CycleSummary{StartedAt: cycleStart}

	if startIndex == 0 {
		checkpoint := &entity.Checkpoint{
			MatrixFingerprint: fingerprint,
			NextIndex:         0,
			CycleStartedAt:    cycleStart,
		}
		if err := s.checkpointRepo.Save(ctx, checkpoint); err != nil {
			s.logger.Error("Failed to save initial checkpoint", "error", err)
			s.metrics.ErrorsCount.WithLabelValues("checkpoint_save").Inc()
		}
	}

	s.logger.Info("Starting cycle",
		"tasks", len(tasks),
		"startIndex", startIndex,
		"cycleStartedAt", cycleStart)

	consecutiveFailures := 0
	tasksInBatch := 0

	for i := startIndex; i < len(tasks); i++ {
		if ctx.Err() != nil {
			summary.FinishedAt = s.now()
			summary.Aborted = true
			return summary, ctx.Err()
		}

		if tasksInBatch >= s.config.BatchSize {
			s.logger.Debug("Batch complete, pausing", "batchSize", s.config.BatchSize)
			if err := sleepCtx(ctx, s.config.BatchPause); err != nil {
				summary.FinishedAt = s.now()
				summary.Aborted = true
				return summary, err
			}
			tasksInBatch = 0
		}

		if err := s.limiter.Wait(ctx); err != nil {
			summary.FinishedAt = s.now()
			summary.Aborted = true
			return summary, err
		}

		task := tasks[i]
		summary.TasksAttempted++
		tasksInBatch++
		s.metrics.TasksAttempted.Inc()

		// Once a task starts it runs to completion even if the cycle is
		// being cancelled; cancellation is honored at task boundaries.
		taskCtx := context.WithoutCancel(ctx)

		offers, skipped, deals, err := s.runTask(taskCtx, task)
		if err != nil {
			summary.TasksFailed++
			consecutiveFailures++
			s.metrics.SearchFailures.Inc()
			s.logger.Error("Search task failed",
				"origin", task.Route.Origin,
				"destination", task.Route.Destination,
				"departure", task.Dates.Departure,
				"return", task.Dates.Return,
				"consecutiveFailures", consecutiveFailures,
				"error", err)

			if consecutiveFailures >= s.config.MaxConsecutiveFailures {
				s.persistProgress(taskCtx, fingerprint, i+1, cycleStart)
				summary.FinishedAt = s.now()
				summary.Aborted = true
				return summary, fmt.Errorf("aborting cycle after %d consecutive search failures: %w",
					consecutiveFailures, err)
			}
		} else {
			consecutiveFailures = 0
			summary.OffersFound += offers
			summary.OffersSkipped += skipped
			summary.DealsDetected += deals
		}

		s.persistProgress(taskCtx, fingerprint, i+1, cycleStart)
	}

	summary.FinishedAt = s.now()
	if err := s.checkpointRepo.Clear(ctx); err != nil {
		s.logger.Error("Failed to clear checkpoint", "error", err)
		s.metrics.ErrorsCount.WithLabelValues("checkpoint_clear").Inc()
	}

	return summary, nil
}

// resumeOrStart decides whether a persisted checkpoint still applies. A
// checkpoint is honored only when its fingerprint matches the current matrix
// and its index still addresses the regenerated task list.
func (s *BatchScheduler) resumeOrStart(ctx context.Context, fingerprint string) ([]entity.SearchTask, int, time.Time) {
	checkpoint, err := s.checkpointRepo.Load(ctx)
	if err != nil {
		s.logger.Error("Failed to load checkpoint, starting fresh cycle", "error", err)
		s.metrics.ErrorsCount.WithLabelValues("checkpoint_load").Inc()
		checkpoint = nil
	}

	if checkpoint != nil {
		if checkpoint.MatrixFingerprint != fingerprint {
			s.logger.Warn("Checkpoint fingerprint mismatch, restarting cycle",
				"saved", checkpoint.MatrixFingerprint,
				"current", fingerprint)
		} else {
			tasks := s.matrix.Generate(checkpoint.CycleStartedAt)
			if checkpoint.NextIndex > 0 && checkpoint.NextIndex < len(tasks) {
				s.logger.Info("Resuming cycle from checkpoint",
					"nextIndex", checkpoint.NextIndex,
					"tasks", len(tasks),
					"cycleStartedAt", checkpoint.CycleStartedAt)
				return tasks, checkpoint.NextIndex, checkpoint.CycleStartedAt
			}
		}
	}

	cycleStart := s.now()
	return s.matrix.Generate(cycleStart), 0, cycleStart
}

// runTask executes one search task end to end. Returns the counts of
// normalized offers, skipped raw records and dispatched deals.
func (s *BatchScheduler) runTask(ctx context.Context, task entity.SearchTask) (int, int, int, error) {
	started := s.now()
	raws, err := s.searchRepo.Search(ctx, task)
	s.metrics.SearchDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return 0, 0, 0, err
	}

	offers, skipped := s.normalizer.NormalizeBatch(task, raws, s.now())
	s.metrics.OffersFound.Add(float64(len(offers)))

	deals := 0
	for _, offer := range offers {
		deal, err := s.evaluator.Evaluate(ctx, offer)
		if err != nil {
			s.metrics.ErrorsCount.WithLabelValues("evaluate").Inc()
			s.logger.Error("Failed to evaluate offer",
				"origin", offer.Origin,
				"destination", offer.Destination,
				"departure", offer.DepartureDate,
				"error", err)
			continue
		}
		if deal == nil {
			continue
		}

		deals++
		s.metrics.DealsDetected.Inc()
		s.dispatcher.Dispatch(ctx, deal)
	}

	return len(offers), skipped, deals, nil
}

func (s *BatchScheduler) persistProgress(ctx context.Context, fingerprint string, nextIndex int, cycleStart time.Time) {
	checkpoint := &entity.Checkpoint{
		MatrixFingerprint: fingerprint,
		NextIndex:         nextIndex,
		CycleStartedAt:    cycleStart,
	}
	if err := s.checkpointRepo.Save(ctx, checkpoint); err != nil {
		s.logger.Error("Failed to save checkpoint", "nextIndex", nextIndex, "error", err)
		s.metrics.ErrorsCount.WithLabelValues("checkpoint_save").Inc()
	}
}

// sleepCtx sleeps for the given duration, waking early when the context is
// cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
