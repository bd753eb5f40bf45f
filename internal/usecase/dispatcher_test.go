package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/pkg/logger"
	"farewatch-service/pkg/metrics"
)

func testDeal() *entity.DealRecord {
	return &entity.DealRecord{
		Offer:       *testOffer(650, entity.CabinEconomy, 480),
		DiscountPct: 35.0,
		Baseline:    entity.PriceHistoryRecord{LowestPrice: 1000, ObservationCount: 5},
		DetectedAt:  time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	}
}

func TestDispatchReachesEveryNotifier(t *testing.T) {
	m := metrics.NewMetricsWith("test", prometheus.NewRegistry())
	first := &collectNotifier{name: "first"}
	second := &collectNotifier{name: "second"}
	d := NewNotifierDispatch(logger.NewNop(), m, first, second)

	d.Dispatch(context.Background(), testDeal())

	assert.Len(t, first.deals, 1)
	assert.Len(t, second.deals, 1)
}

func TestDispatchFailureDoesNotBlockOthers(t *testing.T) {
	m := metrics.NewMetricsWith("test", prometheus.NewRegistry())
	failing := &collectNotifier{name: "failing", err: errSearchDown}
	healthy := &collectNotifier{name: "healthy"}
	d := NewNotifierDispatch(logger.NewNop(), m, failing, healthy)

	d.Dispatch(context.Background(), testDeal())

	assert.Empty(t, failing.deals)
	assert.Len(t, healthy.deals, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotifyFailures))
}

func TestArchiveNotifierDelegatesToRepository(t *testing.T) {
	saved := &memDealArchive{}
	n := NewArchiveNotifier(saved)

	assert.Equal(t, "archive", n.Name())

	deal := testDeal()
	require.NoError(t, n.Notify(context.Background(), deal))
	require.Len(t, saved.deals, 1)
	assert.Equal(t, deal.Key(), saved.deals[0].Key())
}

type memDealArchive struct {
	deals []*entity.DealRecord
}

func (a *memDealArchive) Save(ctx context.Context, deal *entity.DealRecord) error {
	a.deals = append(a.deals, deal)
	return nil
}
