package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fieldside/matchlog/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo matches and the position reference table
// into an empty database. Existing rows are left alone.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, code := range memory.SeedPositionCodes() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO position_codes (code) VALUES ($1) ON CONFLICT (code) DO NOTHING`,
			code,
		); err != nil {
			return fmt.Errorf("seed position code %s: %w", code, err)
		}
	}

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(1) FROM matches`); err != nil {
		return fmt.Errorf("count matches for bootstrap seed: %w", err)
	}
	if count > 0 {
		return tx.Commit()
	}

	for _, m := range memory.SeedMatches() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO matches (id, owner_user_id, home_team_id, away_team_id, home_team, away_team, competition, venue, kickoff_at, status)
VALUES (:id, :owner_user_id, :home_team_id, :away_team_id, :home_team, :away_team, :competition, :venue, :kickoff_at, :status)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":            m.ID,
			"owner_user_id": m.OwnerUserID,
			"home_team_id":  m.HomeTeamID,
			"away_team_id":  m.AwayTeamID,
			"home_team":     m.HomeTeam,
			"away_team":     m.AwayTeam,
			"competition":   m.Competition,
			"venue":         m.Venue,
			"kickoff_at":    m.KickoffAt,
			"status":        m.Status,
		})
		if err != nil {
			return fmt.Errorf("bind seed match %s query: %w", m.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed match %s: %w", m.ID, err)
		}
	}

	return tx.Commit()
}
