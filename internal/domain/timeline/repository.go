package timeline

import "context"

// Repository exposes timeline event persistence operations.
type Repository interface {
	Insert(ctx context.Context, event Event) error
	// ListByMatch returns all events ordered ascending by match clock.
	ListByMatch(ctx context.Context, matchID string) ([]Event, error)
	// ListRecent returns up to limit events ordered descending by match clock.
	ListRecent(ctx context.Context, matchID string, limit int) ([]Event, error)
}
