package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fieldside/matchlog/internal/domain/lineup"
	"github.com/fieldside/matchlog/internal/domain/timeline"
	qb "github.com/fieldside/matchlog/internal/platform/querybuilder"
)

// IntervalRepository persists lineup intervals. The no-overlap and
// one-open-interval rules live in database constraints, so racing writers
// are rejected inside the transaction no matter what the service checked.
type IntervalRepository struct {
	db *sqlx.DB
}

func NewIntervalRepository(db *sqlx.DB) *IntervalRepository {
	return &IntervalRepository{db: db}
}

func (r *IntervalRepository) GetByID(ctx context.Context, id string) (lineup.Interval, bool, error) {
	query, args, err := intervalBaseSelectBuilder().
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return lineup.Interval{}, false, fmt.Errorf("build get interval query: %w", err)
	}

	var row intervalTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return lineup.Interval{}, false, nil
		}
		return lineup.Interval{}, false, fmt.Errorf("get interval: %w", err)
	}

	return intervalFromRow(row), true, nil
}

func (r *IntervalRepository) ListByMatch(ctx context.Context, matchID string) ([]lineup.Interval, error) {
	query, args, err := intervalBaseSelectBuilder().
		Where(
			qb.Eq("match_id", matchID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("start_minute", "player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list intervals query: %w", err)
	}

	return r.selectIntervals(ctx, query, args)
}

func (r *IntervalRepository) ListByPlayer(ctx context.Context, matchID, playerID string) ([]lineup.Interval, error) {
	query, args, err := intervalBaseSelectBuilder().
		Where(
			qb.Eq("match_id", matchID),
			qb.Eq("player_id", playerID),
		).
		OrderBy("start_minute").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player intervals query: %w", err)
	}

	return r.selectIntervals(ctx, query, args)
}

func (r *IntervalRepository) ListActiveAt(ctx context.Context, matchID string, atMinute float64) ([]lineup.Interval, error) {
	query, args, err := intervalBaseSelectBuilder().
		Where(
			qb.Eq("match_id", matchID),
			qb.IsNull("deleted_at"),
			qb.Lte("start_minute", atMinute),
			qb.Expr("(end_minute IS NULL OR end_minute > ?)", atMinute),
		).
		OrderBy("start_minute", "player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list active intervals query: %w", err)
	}

	return r.selectIntervals(ctx, query, args)
}

func (r *IntervalRepository) FindOpenByPlayer(ctx context.Context, matchID, playerID string) (lineup.Interval, bool, error) {
	query, args, err := intervalBaseSelectBuilder().
		Where(
			qb.Eq("match_id", matchID),
			qb.Eq("player_id", playerID),
			qb.IsNull("deleted_at"),
			qb.IsNull("end_minute"),
		).
		ToSQL()
	if err != nil {
		return lineup.Interval{}, false, fmt.Errorf("build find open interval query: %w", err)
	}

	var row intervalTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return lineup.Interval{}, false, nil
		}
		return lineup.Interval{}, false, fmt.Errorf("find open interval: %w", err)
	}

	return intervalFromRow(row), true, nil
}

// CreateOrRestore revives a soft-deleted row with the same natural key
// instead of inserting a second one, keeping replayed imports idempotent.
func (r *IntervalRepository) CreateOrRestore(ctx context.Context, item lineup.Interval) (lineup.Interval, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return lineup.Interval{}, fmt.Errorf("begin tx for interval create: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const restoreQuery = `
UPDATE lineup_intervals
SET position = $1, end_minute = $2, pitch_x = $3, pitch_y = $4, reason = $5,
    deleted_at = NULL, deleted_by = '', updated_at = $6
WHERE match_id = $7 AND player_id = $8 AND start_minute = $9 AND deleted_at IS NOT NULL
RETURNING *`

	var row intervalTableModel
	err = tx.GetContext(ctx, &row, restoreQuery,
		item.Position, item.EndMinute, item.PitchX, item.PitchY, item.Reason,
		item.UpdatedAt, item.MatchID, item.PlayerID, item.StartMinute,
	)
	if err == nil {
		if err := tx.Commit(); err != nil {
			return lineup.Interval{}, fmt.Errorf("commit interval restore: %w", err)
		}
		return intervalFromRow(row), nil
	}
	if !isNotFound(err) {
		return lineup.Interval{}, mapIntervalConstraint("restore interval", err)
	}

	query, args, err := qb.InsertModel("lineup_intervals", intervalToInsert(item), "RETURNING *")
	if err != nil {
		return lineup.Interval{}, fmt.Errorf("build interval insert query: %w", err)
	}
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		return lineup.Interval{}, mapIntervalConstraint("insert interval", err)
	}
	if err := tx.Commit(); err != nil {
		return lineup.Interval{}, fmt.Errorf("commit interval insert: %w", err)
	}

	return intervalFromRow(row), nil
}

func (r *IntervalRepository) Update(ctx context.Context, item lineup.Interval) (lineup.Interval, error) {
	query, args, err := qb.Update("lineup_intervals").
		Set("position", item.Position).
		Set("end_minute", item.EndMinute).
		Set("pitch_x", item.PitchX).
		Set("pitch_y", item.PitchY).
		Set("reason", item.Reason).
		Set("updated_at", item.UpdatedAt).
		Where(
			qb.Eq("id", item.ID),
			qb.IsNull("deleted_at"),
		).
		Suffix("RETURNING *").
		ToSQL()
	if err != nil {
		return lineup.Interval{}, fmt.Errorf("build interval update query: %w", err)
	}

	var row intervalTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return lineup.Interval{}, fmt.Errorf("interval %s not found", item.ID)
		}
		return lineup.Interval{}, mapIntervalConstraint("update interval", err)
	}

	return intervalFromRow(row), nil
}

func (r *IntervalRepository) SoftDelete(ctx context.Context, id, deletedBy string) (lineup.Interval, error) {
	query, args, err := qb.Update("lineup_intervals").
		SetExpr("deleted_at", "NOW()").
		Set("deleted_by", deletedBy).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		).
		Suffix("RETURNING *").
		ToSQL()
	if err != nil {
		return lineup.Interval{}, fmt.Errorf("build interval soft delete query: %w", err)
	}

	var row intervalTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return lineup.Interval{}, fmt.Errorf("interval %s not found", id)
		}
		return lineup.Interval{}, fmt.Errorf("soft delete interval: %w", err)
	}

	return intervalFromRow(row), nil
}

// ApplySubstitution closes the off interval, opens the on interval and
// records both timeline markers in one transaction.
func (r *IntervalRepository) ApplySubstitution(ctx context.Context, off lineup.Interval, on lineup.Interval, events []timeline.Event) (lineup.Interval, lineup.Interval, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return lineup.Interval{}, lineup.Interval{}, fmt.Errorf("begin tx for substitution: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const closeQuery = `
UPDATE lineup_intervals
SET end_minute = $1, updated_at = $2
WHERE id = $3 AND deleted_at IS NULL AND end_minute IS NULL
RETURNING *`

	var offRow intervalTableModel
	if err := tx.GetContext(ctx, &offRow, closeQuery, off.EndMinute, off.UpdatedAt, off.ID); err != nil {
		if isNotFound(err) {
			return lineup.Interval{}, lineup.Interval{}, lineup.ErrOpenIntervalGone
		}
		return lineup.Interval{}, lineup.Interval{}, fmt.Errorf("close off interval: %w", err)
	}

	query, args, err := qb.InsertModel("lineup_intervals", intervalToInsert(on), "RETURNING *")
	if err != nil {
		return lineup.Interval{}, lineup.Interval{}, fmt.Errorf("build on interval insert query: %w", err)
	}
	var onRow intervalTableModel
	if err := tx.GetContext(ctx, &onRow, query, args...); err != nil {
		return lineup.Interval{}, lineup.Interval{}, mapIntervalConstraint("insert on interval", err)
	}

	for _, event := range events {
		query, args, err := qb.InsertModel("timeline_events", eventToInsert(event), "")
		if err != nil {
			return lineup.Interval{}, lineup.Interval{}, fmt.Errorf("build timeline event insert query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return lineup.Interval{}, lineup.Interval{}, fmt.Errorf("insert timeline event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return lineup.Interval{}, lineup.Interval{}, fmt.Errorf("commit substitution: %w", err)
	}

	return intervalFromRow(offRow), intervalFromRow(onRow), nil
}

func (r *IntervalRepository) selectIntervals(ctx context.Context, query string, args []any) ([]lineup.Interval, error) {
	var rows []intervalTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select intervals: %w", err)
	}

	out := make([]lineup.Interval, 0, len(rows))
	for _, row := range rows {
		out = append(out, intervalFromRow(row))
	}
	return out, nil
}

func mapIntervalConstraint(op string, err error) error {
	switch violatedConstraint(err) {
	case "lineup_intervals_natural_key":
		return fmt.Errorf("%w: %v", lineup.ErrDuplicate, err)
	case "lineup_intervals_one_open":
		return fmt.Errorf("%w: %v", lineup.ErrOpenIntervalExists, err)
	case "lineup_intervals_no_overlap":
		return fmt.Errorf("%w: %v", lineup.ErrOverlap, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func intervalBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("lineup_intervals")
}
