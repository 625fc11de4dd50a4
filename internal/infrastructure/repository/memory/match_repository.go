package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fieldside/matchlog/internal/domain/match"
)

type MatchRepository struct {
	mu    sync.RWMutex
	items map[string]match.Match
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{items: make(map[string]match.Match)}
}

func (r *MatchRepository) GetByID(_ context.Context, id string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return match.Match{}, false, nil
	}
	return item, true, nil
}

func (r *MatchRepository) List(_ context.Context) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MatchRepository) Put(item match.Match) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
}
