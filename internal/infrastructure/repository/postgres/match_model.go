package postgres

import (
	"time"

	"github.com/fieldside/matchlog/internal/domain/match"
)

type matchTableModel struct {
	ID          string    `db:"id"`
	OwnerUserID string    `db:"owner_user_id"`
	HomeTeamID  string    `db:"home_team_id"`
	AwayTeamID  string    `db:"away_team_id"`
	HomeTeam    string    `db:"home_team"`
	AwayTeam    string    `db:"away_team"`
	Competition string    `db:"competition"`
	Venue       string    `db:"venue"`
	KickoffAt   time.Time `db:"kickoff_at"`
	Status      string    `db:"status"`
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:          row.ID,
		OwnerUserID: row.OwnerUserID,
		HomeTeamID:  row.HomeTeamID,
		AwayTeamID:  row.AwayTeamID,
		HomeTeam:    row.HomeTeam,
		AwayTeam:    row.AwayTeam,
		Competition: row.Competition,
		Venue:       row.Venue,
		KickoffAt:   row.KickoffAt,
		Status:      row.Status,
	}
}
