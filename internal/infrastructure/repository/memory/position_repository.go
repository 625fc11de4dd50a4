package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fieldside/matchlog/internal/domain/reference"
)

type PositionRepository struct {
	mu    sync.RWMutex
	codes map[string]struct{}
}

func NewPositionRepository(codes []string) *PositionRepository {
	repo := &PositionRepository{codes: make(map[string]struct{}, len(codes))}
	for _, code := range codes {
		repo.codes[reference.NormalizePosition(code)] = struct{}{}
	}
	return repo
}

func (r *PositionRepository) IsValidPosition(_ context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.codes[reference.NormalizePosition(code)]
	return ok, nil
}

func (r *PositionRepository) ListPositions(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.codes))
	for code := range r.codes {
		out = append(out, code)
	}
	sort.Strings(out)
	return out, nil
}
