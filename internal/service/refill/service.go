package refill

import (
	"context"
	"sort"

	"github.com/blisstech/pharmacy-api/internal/model"
	"github.com/blisstech/pharmacy-api/internal/repository"
)

// dueSoonWindowDays bounds the "due soon" bucket: due strictly after today,
// within a week.
const dueSoonWindowDays = 7

// DefaultUpcomingLimit matches the priority queue shown on the dashboard.
const DefaultUpcomingLimit = 4

// Clock supplies the canonical "today". Exactly one reading is taken per
// call so a record can never land in two buckets within one request.
type Clock func() model.Date

// Service derives refill classifications from the prescription record store.
// It is pure computation over stored dates except for the low-stock
// aggregate, which crosses into the medication ledger.
type Service struct {
	rxRepo repository.PrescriptionRepository
	ledger repository.MedicationRepository
	now    Clock
}

func NewService(rxRepo repository.PrescriptionRepository, ledger repository.MedicationRepository) *Service {
	return &Service{rxRepo: rxRepo, ledger: ledger, now: model.Today}
}

// NewServiceWithClock pins "today" for deterministic classification.
func NewServiceWithClock(rxRepo repository.PrescriptionRepository, ledger repository.MedicationRepository, now Clock) *Service {
	return &Service{rxRepo: rxRepo, ledger: ledger, now: now}
}

// DueToday reports whether the record's refill is due on or before today.
func DueToday(rec *model.PrescriptionRecord, today model.Date) bool {
	return !rec.NextRefillDate.After(today)
}

// DueSoon reports whether the refill falls strictly after today but within
// the soon window. The buckets are disjoint by construction.
func DueSoon(rec *model.PrescriptionRecord, today model.Date) bool {
	return rec.NextRefillDate.After(today) &&
		!rec.NextRefillDate.After(today.AddDays(dueSoonWindowDays))
}

// Due returns the records in the requested bucket.
func (s *Service) Due(ctx context.Context, filter model.DueFilter) ([]*model.PrescriptionDetail, error) {
	recs, err := s.rxRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	today := s.now()

	var out []*model.PrescriptionDetail
	for _, rec := range recs {
		switch filter {
		case model.DueFilterToday:
			if DueToday(&rec.PrescriptionRecord, today) {
				out = append(out, rec)
			}
		case model.DueFilterSoon:
			if DueSoon(&rec.PrescriptionRecord, today) {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

// Upcoming returns the limit records with the earliest next refill dates
// among those due today or later, ascending, ties broken by record id for
// determinism.
func (s *Service) Upcoming(ctx context.Context, limit int) ([]*model.PrescriptionDetail, error) {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}

	recs, err := s.rxRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	today := s.now()

	var future []*model.PrescriptionDetail
	for _, rec := range recs {
		if !rec.NextRefillDate.Before(today) {
			future = append(future, rec)
		}
	}

	sort.Slice(future, func(i, j int) bool {
		if !future[i].NextRefillDate.Equal(future[j].NextRefillDate.Time) {
			return future[i].NextRefillDate.Before(future[j].NextRefillDate)
		}
		return future[i].ID.String() < future[j].ID.String()
	})

	if len(future) > limit {
		future = future[:limit]
	}
	return future, nil
}

// Stats computes the dashboard aggregates from the raw records on every
// call.
func (s *Service) Stats(ctx context.Context) (*model.DashboardStats, error) {
	recs, err := s.rxRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	today := s.now()

	stats := &model.DashboardStats{}
	for _, rec := range recs {
		if DueToday(&rec.PrescriptionRecord, today) {
			stats.DueToday++
		} else if DueSoon(&rec.PrescriptionRecord, today) {
			stats.DueSoon++
		}
	}

	low, err := s.ledger.CountLowStock(ctx, model.LowStockThreshold)
	if err != nil {
		return nil, err
	}
	stats.LowStock = low
	return stats, nil
}
