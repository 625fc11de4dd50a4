package postgres

import (
	"time"

	"github.com/fieldside/matchlog/internal/domain/period"
)

type periodTableModel struct {
	ID              string     `db:"id"`
	MatchID         string     `db:"match_id"`
	Number          int        `db:"number"`
	Type            string     `db:"type"`
	StartedAt       time.Time  `db:"started_at"`
	EndedAt         *time.Time `db:"ended_at"`
	DurationSeconds *int       `db:"duration_seconds"`
	Notes           string     `db:"notes"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

type periodInsertModel struct {
	ID              string     `db:"id"`
	MatchID         string     `db:"match_id"`
	Number          int        `db:"number"`
	Type            string     `db:"type"`
	StartedAt       time.Time  `db:"started_at"`
	EndedAt         *time.Time `db:"ended_at"`
	DurationSeconds *int       `db:"duration_seconds"`
	Notes           string     `db:"notes"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func periodFromRow(row periodTableModel) period.Period {
	return period.Period{
		ID:              row.ID,
		MatchID:         row.MatchID,
		Number:          row.Number,
		Type:            row.Type,
		StartedAt:       row.StartedAt,
		EndedAt:         row.EndedAt,
		DurationSeconds: row.DurationSeconds,
		Notes:           row.Notes,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func periodToInsert(item period.Period) periodInsertModel {
	return periodInsertModel{
		ID:              item.ID,
		MatchID:         item.MatchID,
		Number:          item.Number,
		Type:            item.Type,
		StartedAt:       item.StartedAt,
		EndedAt:         item.EndedAt,
		DurationSeconds: item.DurationSeconds,
		Notes:           item.Notes,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}
