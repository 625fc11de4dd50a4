package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fieldside/matchlog/internal/domain/timeline"
)

type TimelineRepository struct {
	mu    sync.RWMutex
	items []timeline.Event
}

func NewTimelineRepository() *TimelineRepository {
	return &TimelineRepository{}
}

func (r *TimelineRepository) Insert(_ context.Context, event timeline.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, event)
	return nil
}

func (r *TimelineRepository) ListByMatch(_ context.Context, matchID string) ([]timeline.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]timeline.Event, 0)
	for _, item := range r.items {
		if item.MatchID == matchID {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Minute < out[j].Minute
	})
	return out, nil
}

func (r *TimelineRepository) ListRecent(_ context.Context, matchID string, limit int) ([]timeline.Event, error) {
	all, err := r.ListByMatch(context.Background(), matchID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Minute > all[j].Minute
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
