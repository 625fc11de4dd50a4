package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fieldside/matchlog/internal/domain/timeline"
	qb "github.com/fieldside/matchlog/internal/platform/querybuilder"
)

type TimelineRepository struct {
	db *sqlx.DB
}

func NewTimelineRepository(db *sqlx.DB) *TimelineRepository {
	return &TimelineRepository{db: db}
}

func (r *TimelineRepository) Insert(ctx context.Context, item timeline.Event) error {
	query, args, err := qb.InsertModel("timeline_events", eventToInsert(item), "")
	if err != nil {
		return fmt.Errorf("build timeline event insert query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert timeline event: %w", err)
	}
	return nil
}

func (r *TimelineRepository) ListByMatch(ctx context.Context, matchID string) ([]timeline.Event, error) {
	query, args, err := qb.Select("*").
		From("timeline_events").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("minute", "created_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list timeline events query: %w", err)
	}

	return r.selectEvents(ctx, query, args)
}

func (r *TimelineRepository) ListRecent(ctx context.Context, matchID string, limit int) ([]timeline.Event, error) {
	query, args, err := qb.Select("*").
		From("timeline_events").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("minute DESC", "created_at DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list recent timeline events query: %w", err)
	}

	return r.selectEvents(ctx, query, args)
}

func (r *TimelineRepository) selectEvents(ctx context.Context, query string, args []any) ([]timeline.Event, error) {
	var rows []eventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select timeline events: %w", err)
	}

	out := make([]timeline.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, eventFromRow(row))
	}
	return out, nil
}
