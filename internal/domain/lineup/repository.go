package lineup

import (
	"context"

	"github.com/fieldside/matchlog/internal/domain/timeline"
)

// Repository exposes interval persistence operations. Implementations must make
// CreateOrRestore, Close-type updates and ApplySubstitution atomic per match so
// that the no-overlap and one-open-interval invariants survive concurrent writers.
type Repository interface {
	GetByID(ctx context.Context, id string) (Interval, bool, error)
	// ListByMatch returns every non-deleted interval for the match.
	ListByMatch(ctx context.Context, matchID string) ([]Interval, error)
	// ListByPlayer returns every interval for one player, soft-deleted rows included.
	ListByPlayer(ctx context.Context, matchID, playerID string) ([]Interval, error)
	ListActiveAt(ctx context.Context, matchID string, atMinute float64) ([]Interval, error)
	FindOpenByPlayer(ctx context.Context, matchID, playerID string) (Interval, bool, error)

	// CreateOrRestore inserts the interval, or, when a soft-deleted row exists
	// under the same natural key, restores that row overwriting its mutable
	// fields. An active row under the same key yields ErrDuplicate; a range
	// clash with another active row yields ErrOverlap; a second open interval
	// for the player yields ErrOpenIntervalExists.
	CreateOrRestore(ctx context.Context, item Interval) (Interval, error)
	// Update persists mutable fields of an existing row, re-checking the
	// overlap invariant against the new range.
	Update(ctx context.Context, item Interval) (Interval, error)
	SoftDelete(ctx context.Context, id, deletedBy string) (Interval, error)

	// ApplySubstitution closes the off interval, opens the on interval and
	// appends both timeline markers as one all-or-nothing unit. The off
	// interval must still be open when the write lands; otherwise
	// ErrOpenIntervalGone is returned and nothing is committed.
	ApplySubstitution(ctx context.Context, off Interval, on Interval, events []timeline.Event) (Interval, Interval, error)
}
