package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fieldside/matchlog/internal/domain/period"
	qb "github.com/fieldside/matchlog/internal/platform/querybuilder"
)

// PeriodRepository persists match periods. The single-active rule is a
// partial unique index, so two writers cannot both open a period.
type PeriodRepository struct {
	db *sqlx.DB
}

func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

func (r *PeriodRepository) GetByID(ctx context.Context, id string) (period.Period, bool, error) {
	query, args, err := periodBaseSelectBuilder().
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return period.Period{}, false, fmt.Errorf("build get period query: %w", err)
	}

	var row periodTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return period.Period{}, false, nil
		}
		return period.Period{}, false, fmt.Errorf("get period: %w", err)
	}

	return periodFromRow(row), true, nil
}

func (r *PeriodRepository) ListByMatch(ctx context.Context, matchID string) ([]period.Period, error) {
	query, args, err := periodBaseSelectBuilder().
		Where(qb.Eq("match_id", matchID)).
		OrderBy("started_at", "number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list periods query: %w", err)
	}

	var rows []periodTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}

	out := make([]period.Period, 0, len(rows))
	for _, row := range rows {
		out = append(out, periodFromRow(row))
	}
	return out, nil
}

func (r *PeriodRepository) FindActive(ctx context.Context, matchID string) (period.Period, bool, error) {
	query, args, err := periodBaseSelectBuilder().
		Where(
			qb.Eq("match_id", matchID),
			qb.IsNull("ended_at"),
		).
		ToSQL()
	if err != nil {
		return period.Period{}, false, fmt.Errorf("build find active period query: %w", err)
	}

	var row periodTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return period.Period{}, false, nil
		}
		return period.Period{}, false, fmt.Errorf("find active period: %w", err)
	}

	return periodFromRow(row), true, nil
}

func (r *PeriodRepository) Insert(ctx context.Context, item period.Period) (period.Period, error) {
	query, args, err := qb.InsertModel("match_periods", periodToInsert(item), "RETURNING *")
	if err != nil {
		return period.Period{}, fmt.Errorf("build period insert query: %w", err)
	}

	var row periodTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return period.Period{}, mapPeriodConstraint("insert period", err)
	}

	return periodFromRow(row), nil
}

func (r *PeriodRepository) Update(ctx context.Context, item period.Period) (period.Period, error) {
	query, args, err := qb.Update("match_periods").
		Set("started_at", item.StartedAt).
		Set("ended_at", item.EndedAt).
		Set("duration_seconds", item.DurationSeconds).
		Set("notes", item.Notes).
		Set("updated_at", item.UpdatedAt).
		Where(qb.Eq("id", item.ID)).
		Suffix("RETURNING *").
		ToSQL()
	if err != nil {
		return period.Period{}, fmt.Errorf("build period update query: %w", err)
	}

	var row periodTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return period.Period{}, fmt.Errorf("period %s not found", item.ID)
		}
		return period.Period{}, mapPeriodConstraint("update period", err)
	}

	return periodFromRow(row), nil
}

// Upsert writes by natural key. Imports may describe historical periods, so
// only the natural-key conflict is resolved; the single-active index still
// rejects a second open period.
func (r *PeriodRepository) Upsert(ctx context.Context, item period.Period) (period.Period, error) {
	query, args, err := qb.InsertModel("match_periods", periodToInsert(item), `ON CONFLICT (match_id, number, type)
DO UPDATE SET
    started_at = EXCLUDED.started_at,
    ended_at = EXCLUDED.ended_at,
    duration_seconds = EXCLUDED.duration_seconds,
    notes = EXCLUDED.notes,
    updated_at = EXCLUDED.updated_at
RETURNING *`)
	if err != nil {
		return period.Period{}, fmt.Errorf("build period upsert query: %w", err)
	}

	var row periodTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return period.Period{}, mapPeriodConstraint("upsert period", err)
	}

	return periodFromRow(row), nil
}

func mapPeriodConstraint(op string, err error) error {
	switch violatedConstraint(err) {
	case "match_periods_natural_key":
		return fmt.Errorf("%w: %v", period.ErrDuplicate, err)
	case "match_periods_one_active":
		return fmt.Errorf("%w: %v", period.ErrActivePeriodExists, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func periodBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("match_periods")
}
