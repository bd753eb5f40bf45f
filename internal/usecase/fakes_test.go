package usecase

import (
	"context"
	"errors"
	"time"

	"farewatch-service/internal/domain/entity"
)

// memHistoryRepo is an in-memory PriceHistoryRepository for scheduler and
// evaluator tests.
type memHistoryRepo struct {
	records map[string]*entity.PriceHistoryRecord
}

func newMemHistoryRepo() *memHistoryRepo {
	return &memHistoryRepo{records: make(map[string]*entity.PriceHistoryRecord)}
}

func (r *memHistoryRepo) Get(ctx context.Context, route entity.RouteKey, dates entity.DatePairKey) (*entity.PriceHistoryRecord, error) {
	record, ok := r.records[entity.HistoryKey(route, dates)]
	if !ok {
		return nil, nil
	}
	snapshot := *record
	return &snapshot, nil
}

func (r *memHistoryRepo) Record(ctx context.Context, route entity.RouteKey, dates entity.DatePairKey, price float64, observedAt time.Time) (*entity.PriceHistoryRecord, error) {
	key := entity.HistoryKey(route, dates)
	record, ok := r.records[key]
	if !ok {
		record = &entity.PriceHistoryRecord{
			Origin:           route.Origin,
			Destination:      route.Destination,
			Cabin:            route.Cabin,
			DepartureDate:    dates.Departure,
			ReturnDate:       dates.Return,
			LowestPrice:      price,
			MostRecentPrice:  price,
			MostRecentAt:     observedAt,
			ObservationCount: 1,
		}
		r.records[key] = record
	} else {
		if price < record.LowestPrice {
			record.LowestPrice = price
		}
		record.MostRecentPrice = price
		record.MostRecentAt = observedAt
		record.ObservationCount++
	}
	snapshot := *record
	return &snapshot, nil
}

// seed installs a baseline record as if the price had been seen before.
func (r *memHistoryRepo) seed(route entity.RouteKey, dates entity.DatePairKey, lowest float64, observations int64) {
	r.records[entity.HistoryKey(route, dates)] = &entity.PriceHistoryRecord{
		Origin:           route.Origin,
		Destination:      route.Destination,
		Cabin:            route.Cabin,
		DepartureDate:    dates.Departure,
		ReturnDate:       dates.Return,
		LowestPrice:      lowest,
		MostRecentPrice:  lowest,
		ObservationCount: observations,
	}
}

// memCheckpointRepo is an in-memory CheckpointRepository that counts saves.
type memCheckpointRepo struct {
	checkpoint *entity.Checkpoint
	saves      int
	loadErr    error
}

func (r *memCheckpointRepo) Load(ctx context.Context) (*entity.Checkpoint, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if r.checkpoint == nil {
		return nil, nil
	}
	snapshot := *r.checkpoint
	return &snapshot, nil
}

func (r *memCheckpointRepo) Save(ctx context.Context, checkpoint *entity.Checkpoint) error {
	snapshot := *checkpoint
	r.checkpoint = &snapshot
	r.saves++
	return nil
}

func (r *memCheckpointRepo) Clear(ctx context.Context) error {
	r.checkpoint = nil
	return nil
}

// fakeSearchRepo replays scripted results keyed by task order and records
// the tasks it was asked to run.
type fakeSearchRepo struct {
	results  func(task entity.SearchTask) ([]entity.RawOffer, error)
	executed []entity.SearchTask
}

func (r *fakeSearchRepo) Search(ctx context.Context, task entity.SearchTask) ([]entity.RawOffer, error) {
	r.executed = append(r.executed, task)
	if r.results == nil {
		return nil, nil
	}
	return r.results(task)
}

var errSearchDown = errors.New("scraper unavailable")

// collectNotifier records every dispatched deal.
type collectNotifier struct {
	name  string
	deals []*entity.DealRecord
	err   error
}

func (n *collectNotifier) Name() string {
	return n.name
}

func (n *collectNotifier) Notify(ctx context.Context, deal *entity.DealRecord) error {
	if n.err != nil {
		return n.err
	}
	n.deals = append(n.deals, deal)
	return nil
}
