package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fieldside/matchlog/internal/platform/resilience"
)

type item struct {
	payload  any
	deadline time.Time
}

// Store is a TTL map with single-flight loading. Live-state reads hit it
// hard during a match, so concurrent misses for one key share a single
// loader call.
type Store struct {
	mu     sync.RWMutex
	items  map[string]item
	ttl    time.Duration
	flight resilience.SingleFlight
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		items: make(map[string]item),
		ttl:   ttl,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	cached, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && !cached.deadline.After(time.Now()) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, false
	}

	return cached.payload, true
}

func (s *Store) Set(_ context.Context, key string, payload any) {
	if key == "" {
		return
	}

	var deadline time.Time
	if s.ttl > 0 {
		deadline = time.Now().Add(s.ttl)
	}

	s.mu.Lock()
	s.items[key] = item{payload: payload, deadline: deadline}
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

// DeletePrefix drops every key under the prefix, e.g. all cached views of
// one match after a lineup write.
func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	for key := range s.items {
		if strings.HasPrefix(key, prefix) {
			delete(s.items, key)
		}
	}
	s.mu.Unlock()
}

func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if payload, ok := s.Get(ctx, key); ok {
		return payload, nil
	}

	payload, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return payload, nil
}
