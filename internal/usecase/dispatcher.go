package usecase

import (
	"context"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"
	"farewatch-service/pkg/metrics"
)

// NotifierDispatch fans a finalized deal out to every registered notifier.
// Notifier failures are logged and counted, never retried and never fatal;
// retry policy, if any, belongs to the notifier itself.
type NotifierDispatch struct {
	notifiers []repository.DealNotifier
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewNotifierDispatch creates a new notifier dispatcher
func NewNotifierDispatch(logger logger.Logger, m *metrics.Metrics, notifiers ...repository.DealNotifier) *NotifierDispatch {
	return &NotifierDispatch{
		notifiers: notifiers,
		metrics:   m,
		logger:    logger,
	}
}

// Dispatch hands the deal to every notifier in registration order
func (d *NotifierDispatch) Dispatch(ctx context.Context, deal *entity.DealRecord) {
	for _, notifier := range d.notifiers {
		if err := notifier.Notify(ctx, deal); err != nil {
			notifyErr := &entity.NotifyError{Notifier: notifier.Name(), Err: err}
			d.metrics.NotifyFailures.Inc()
			d.logger.Error("Notifier failed",
				"notifier", notifier.Name(),
				"origin", deal.Offer.Origin,
				"destination", deal.Offer.Destination,
				"departure", deal.Offer.DepartureDate,
				"error", notifyErr)
		}
	}
}

// ArchiveNotifier adapts the deal archive repository to the notifier port
type ArchiveNotifier struct {
	repo repository.DealRecordRepository
}

// NewArchiveNotifier creates a notifier that persists deals to the archive
func NewArchiveNotifier(repo repository.DealRecordRepository) *ArchiveNotifier {
	return &ArchiveNotifier{repo: repo}
}

// Name identifies the notifier in logs
func (a *ArchiveNotifier) Name() string {
	return "archive"
}

// Notify saves the deal record
func (a *ArchiveNotifier) Notify(ctx context.Context, deal *entity.DealRecord) error {
	return a.repo.Save(ctx, deal)
}
