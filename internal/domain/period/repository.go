package period

import "context"

// Repository exposes period persistence operations. Insert must enforce the
// unique natural key and the one-open-period-per-match rule atomically, so a
// losing concurrent writer observes ErrActivePeriodExists or ErrDuplicate
// rather than corrupting the sequence.
type Repository interface {
	GetByID(ctx context.Context, id string) (Period, bool, error)
	// ListByMatch returns all periods ordered by StartedAt ascending.
	ListByMatch(ctx context.Context, matchID string) ([]Period, error)
	FindActive(ctx context.Context, matchID string) (Period, bool, error)

	Insert(ctx context.Context, item Period) (Period, error)
	// Update persists EndedAt, DurationSeconds and Notes of an existing row.
	Update(ctx context.Context, item Period) (Period, error)
	// Upsert writes by natural key (MatchID, Number, Type): timestamps and
	// duration are overwritten when the key exists. It deliberately skips the
	// single-active check so offline history can be backfilled out of order.
	Upsert(ctx context.Context, item Period) (Period, error)
}
