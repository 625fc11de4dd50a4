package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fieldside/matchlog/internal/domain/period"
)

// PeriodRepository keeps match periods in memory. Insert enforces the
// one-active-period-per-match rule under the write lock.
type PeriodRepository struct {
	mu    sync.RWMutex
	items map[string]period.Period
}

func NewPeriodRepository() *PeriodRepository {
	return &PeriodRepository{items: make(map[string]period.Period)}
}

func (r *PeriodRepository) GetByID(_ context.Context, id string) (period.Period, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return period.Period{}, false, nil
	}
	return clonePeriod(item), true, nil
}

func (r *PeriodRepository) ListByMatch(_ context.Context, matchID string) ([]period.Period, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]period.Period, 0)
	for _, item := range r.items {
		if item.MatchID == matchID {
			out = append(out, clonePeriod(item))
		}
	}
	sortPeriods(out)
	return out, nil
}

func (r *PeriodRepository) FindActive(_ context.Context, matchID string) (period.Period, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.MatchID == matchID && item.Active() {
			return clonePeriod(item), true, nil
		}
	}
	return period.Period{}, false, nil
}

func (r *PeriodRepository) Insert(_ context.Context, item period.Period) (period.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.MatchID != item.MatchID {
			continue
		}
		if existing.Number == item.Number && existing.Type == item.Type {
			return period.Period{}, fmt.Errorf("%w: match=%s number=%d type=%s", period.ErrDuplicate, item.MatchID, item.Number, item.Type)
		}
		if item.Active() && existing.Active() {
			return period.Period{}, fmt.Errorf("%w: match=%s", period.ErrActivePeriodExists, item.MatchID)
		}
	}

	r.items[item.ID] = clonePeriod(item)
	return clonePeriod(item), nil
}

func (r *PeriodRepository) Update(_ context.Context, item period.Period) (period.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return period.Period{}, fmt.Errorf("period %s not found", item.ID)
	}

	r.items[item.ID] = clonePeriod(item)
	return clonePeriod(item), nil
}

// Upsert writes by natural key and keeps the existing row ID when the
// period was already recorded. Writing an open period while a different
// one is active is rejected, matching the single-active index.
func (r *PeriodRepository) Upsert(_ context.Context, item period.Period) (period.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.Active() {
		for _, existing := range r.items {
			if existing.MatchID != item.MatchID || !existing.Active() {
				continue
			}
			if existing.Number == item.Number && existing.Type == item.Type {
				continue
			}
			return period.Period{}, fmt.Errorf("%w: match=%s", period.ErrActivePeriodExists, item.MatchID)
		}
	}

	for _, existing := range r.items {
		if existing.MatchID == item.MatchID && existing.Number == item.Number && existing.Type == item.Type {
			item.ID = existing.ID
			item.CreatedAt = existing.CreatedAt
			r.items[existing.ID] = clonePeriod(item)
			return clonePeriod(item), nil
		}
	}

	r.items[item.ID] = clonePeriod(item)
	return clonePeriod(item), nil
}

func sortPeriods(items []period.Period) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].StartedAt.Equal(items[j].StartedAt) {
			return items[i].StartedAt.Before(items[j].StartedAt)
		}
		return items[i].Number < items[j].Number
	})
}

func clonePeriod(item period.Period) period.Period {
	copied := item
	copied.EndedAt = cloneTime(item.EndedAt)
	copied.DurationSeconds = cloneInt(item.DurationSeconds)
	return copied
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
