package postgres

import (
	"time"

	"github.com/fieldside/matchlog/internal/domain/timeline"
)

type eventTableModel struct {
	ID              string    `db:"id"`
	MatchID         string    `db:"match_id"`
	PlayerID        string    `db:"player_id"`
	RelatedPlayerID string    `db:"related_player_id"`
	TeamID          string    `db:"team_id"`
	Type            string    `db:"type"`
	Minute          float64   `db:"minute"`
	Detail          string    `db:"detail"`
	CreatedAt       time.Time `db:"created_at"`
}

func eventFromRow(row eventTableModel) timeline.Event {
	return timeline.Event{
		ID:              row.ID,
		MatchID:         row.MatchID,
		PlayerID:        row.PlayerID,
		RelatedPlayerID: row.RelatedPlayerID,
		TeamID:          row.TeamID,
		Type:            row.Type,
		Minute:          row.Minute,
		Detail:          row.Detail,
		CreatedAt:       row.CreatedAt,
	}
}

func eventToInsert(item timeline.Event) eventTableModel {
	return eventTableModel{
		ID:              item.ID,
		MatchID:         item.MatchID,
		PlayerID:        item.PlayerID,
		RelatedPlayerID: item.RelatedPlayerID,
		TeamID:          item.TeamID,
		Type:            item.Type,
		Minute:          item.Minute,
		Detail:          item.Detail,
		CreatedAt:       item.CreatedAt,
	}
}
