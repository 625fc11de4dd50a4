package postgres

import (
	"time"

	"github.com/fieldside/matchlog/internal/domain/lineup"
)

type intervalTableModel struct {
	ID          string     `db:"id"`
	MatchID     string     `db:"match_id"`
	PlayerID    string     `db:"player_id"`
	Position    string     `db:"position"`
	StartMinute float64    `db:"start_minute"`
	EndMinute   *float64   `db:"end_minute"`
	PitchX      *float64   `db:"pitch_x"`
	PitchY      *float64   `db:"pitch_y"`
	Reason      string     `db:"reason"`
	DeletedAt   *time.Time `db:"deleted_at"`
	DeletedBy   string     `db:"deleted_by"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

type intervalInsertModel struct {
	ID          string    `db:"id"`
	MatchID     string    `db:"match_id"`
	PlayerID    string    `db:"player_id"`
	Position    string    `db:"position"`
	StartMinute float64   `db:"start_minute"`
	EndMinute   *float64  `db:"end_minute"`
	PitchX      *float64  `db:"pitch_x"`
	PitchY      *float64  `db:"pitch_y"`
	Reason      string    `db:"reason"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func intervalFromRow(row intervalTableModel) lineup.Interval {
	return lineup.Interval{
		ID:          row.ID,
		MatchID:     row.MatchID,
		PlayerID:    row.PlayerID,
		Position:    row.Position,
		StartMinute: row.StartMinute,
		EndMinute:   row.EndMinute,
		PitchX:      row.PitchX,
		PitchY:      row.PitchY,
		Reason:      row.Reason,
		DeletedAt:   row.DeletedAt,
		DeletedBy:   row.DeletedBy,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func intervalToInsert(item lineup.Interval) intervalInsertModel {
	return intervalInsertModel{
		ID:          item.ID,
		MatchID:     item.MatchID,
		PlayerID:    item.PlayerID,
		Position:    item.Position,
		StartMinute: item.StartMinute,
		EndMinute:   item.EndMinute,
		PitchX:      item.PitchX,
		PitchY:      item.PitchY,
		Reason:      item.Reason,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}
