package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fieldside/matchlog/internal/domain/lineup"
	"github.com/fieldside/matchlog/internal/domain/timeline"
)

// IntervalRepository keeps intervals in memory. The single mutex serializes
// every write, which is how the no-overlap and one-open-interval invariants
// stay check-then-write safe without a database.
type IntervalRepository struct {
	mu     sync.RWMutex
	items  map[string]lineup.Interval
	events *TimelineRepository
}

func NewIntervalRepository(events *TimelineRepository) *IntervalRepository {
	return &IntervalRepository{
		items:  make(map[string]lineup.Interval),
		events: events,
	}
}

func (r *IntervalRepository) GetByID(_ context.Context, id string) (lineup.Interval, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return lineup.Interval{}, false, nil
	}
	return cloneInterval(item), true, nil
}

func (r *IntervalRepository) ListByMatch(_ context.Context, matchID string) ([]lineup.Interval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]lineup.Interval, 0)
	for _, item := range r.items {
		if item.MatchID == matchID && !item.Deleted() {
			out = append(out, cloneInterval(item))
		}
	}
	sortIntervals(out)
	return out, nil
}

func (r *IntervalRepository) ListByPlayer(_ context.Context, matchID, playerID string) ([]lineup.Interval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]lineup.Interval, 0)
	for _, item := range r.items {
		if item.MatchID == matchID && item.PlayerID == playerID {
			out = append(out, cloneInterval(item))
		}
	}
	sortIntervals(out)
	return out, nil
}

func (r *IntervalRepository) ListActiveAt(_ context.Context, matchID string, atMinute float64) ([]lineup.Interval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]lineup.Interval, 0)
	for _, item := range r.items {
		if item.MatchID == matchID && item.CoversMinute(atMinute) {
			out = append(out, cloneInterval(item))
		}
	}
	sortIntervals(out)
	return out, nil
}

func (r *IntervalRepository) FindOpenByPlayer(_ context.Context, matchID, playerID string) (lineup.Interval, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.findOpenLocked(matchID, playerID)
	if !ok {
		return lineup.Interval{}, false, nil
	}
	return cloneInterval(item), true, nil
}

func (r *IntervalRepository) CreateOrRestore(_ context.Context, item lineup.Interval) (lineup.Interval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var restoreID string
	for _, existing := range r.items {
		if !existing.SameNaturalKey(item) {
			continue
		}
		if existing.Deleted() {
			restoreID = existing.ID
			continue
		}
		return lineup.Interval{}, fmt.Errorf("%w: match=%s player=%s start=%.2f", lineup.ErrDuplicate, item.MatchID, item.PlayerID, item.StartMinute)
	}

	if err := r.checkInvariantsLocked(item, restoreID); err != nil {
		return lineup.Interval{}, err
	}

	if restoreID != "" {
		restored := r.items[restoreID]
		restored.Position = item.Position
		restored.EndMinute = item.EndMinute
		restored.PitchX = item.PitchX
		restored.PitchY = item.PitchY
		restored.Reason = item.Reason
		restored.DeletedAt = nil
		restored.DeletedBy = ""
		restored.UpdatedAt = item.UpdatedAt
		r.items[restoreID] = restored
		return cloneInterval(restored), nil
	}

	r.items[item.ID] = cloneInterval(item)
	return cloneInterval(item), nil
}

func (r *IntervalRepository) Update(_ context.Context, item lineup.Interval) (lineup.Interval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[item.ID]
	if !ok || existing.Deleted() {
		return lineup.Interval{}, fmt.Errorf("interval %s not found", item.ID)
	}
	if err := r.checkInvariantsLocked(item, item.ID); err != nil {
		return lineup.Interval{}, err
	}

	r.items[item.ID] = cloneInterval(item)
	return cloneInterval(item), nil
}

func (r *IntervalRepository) SoftDelete(_ context.Context, id, deletedBy string) (lineup.Interval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[id]
	if !ok || existing.Deleted() {
		return lineup.Interval{}, fmt.Errorf("interval %s not found", id)
	}

	now := time.Now().UTC()
	existing.DeletedAt = &now
	existing.DeletedBy = deletedBy
	existing.UpdatedAt = now
	r.items[id] = existing
	return cloneInterval(existing), nil
}

func (r *IntervalRepository) ApplySubstitution(ctx context.Context, off lineup.Interval, on lineup.Interval, events []timeline.Event) (lineup.Interval, lineup.Interval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[off.ID]
	if !ok || current.Deleted() || !current.Open() {
		return lineup.Interval{}, lineup.Interval{}, lineup.ErrOpenIntervalGone
	}
	if err := r.checkInvariantsLocked(on, ""); err != nil {
		return lineup.Interval{}, lineup.Interval{}, err
	}

	r.items[off.ID] = cloneInterval(off)
	r.items[on.ID] = cloneInterval(on)
	for _, event := range events {
		// memory inserts do not fail
		_ = r.events.Insert(ctx, event)
	}
	return cloneInterval(off), cloneInterval(on), nil
}

func (r *IntervalRepository) findOpenLocked(matchID, playerID string) (lineup.Interval, bool) {
	for _, item := range r.items {
		if item.MatchID == matchID && item.PlayerID == playerID && !item.Deleted() && item.Open() {
			return item, true
		}
	}
	return lineup.Interval{}, false
}

func (r *IntervalRepository) checkInvariantsLocked(item lineup.Interval, excludeID string) error {
	for _, other := range r.items {
		if other.ID == excludeID || other.Deleted() {
			continue
		}
		if other.MatchID != item.MatchID || other.PlayerID != item.PlayerID {
			continue
		}
		if item.Open() && other.Open() {
			return fmt.Errorf("%w: player=%s", lineup.ErrOpenIntervalExists, item.PlayerID)
		}
		if other.Overlaps(item) {
			return fmt.Errorf("%w: player=%s", lineup.ErrOverlap, item.PlayerID)
		}
	}
	return nil
}

func sortIntervals(items []lineup.Interval) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].StartMinute != items[j].StartMinute {
			return items[i].StartMinute < items[j].StartMinute
		}
		return items[i].PlayerID < items[j].PlayerID
	})
}

func cloneInterval(item lineup.Interval) lineup.Interval {
	copied := item
	copied.EndMinute = cloneFloat(item.EndMinute)
	copied.PitchX = cloneFloat(item.PitchX)
	copied.PitchY = cloneFloat(item.PitchY)
	copied.DeletedAt = cloneTime(item.DeletedAt)
	return copied
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
