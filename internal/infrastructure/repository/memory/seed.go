package memory

import (
	"time"

	"github.com/fieldside/matchlog/internal/domain/match"
)

const (
	MatchIDPersijaPersib    = "idn-2025-08-psj-psb"
	MatchIDBaliUtdPersebaya = "idn-2025-08-bu-prb"

	SeedOwnerUserID = "coach-001"
)

func SeedMatches() []match.Match {
	return []match.Match{
		{
			ID:          MatchIDPersijaPersib,
			OwnerUserID: SeedOwnerUserID,
			HomeTeamID:  "idn-persija",
			AwayTeamID:  "idn-persib",
			HomeTeam:    "Persija Jakarta",
			AwayTeam:    "Persib Bandung",
			Competition: "Liga 1 Indonesia",
			Venue:       "Jakarta International Stadium",
			KickoffAt:   time.Date(2025, time.August, 15, 19, 0, 0, 0, time.UTC),
			Status:      match.StatusScheduled,
		},
		{
			ID:          MatchIDBaliUtdPersebaya,
			OwnerUserID: SeedOwnerUserID,
			HomeTeamID:  "idn-baliutd",
			AwayTeamID:  "idn-persebaya",
			HomeTeam:    "Bali United",
			AwayTeam:    "Persebaya Surabaya",
			Competition: "Liga 1 Indonesia",
			Venue:       "Kapten I Wayan Dipta Stadium",
			KickoffAt:   time.Date(2025, time.August, 16, 15, 30, 0, 0, time.UTC),
			Status:      match.StatusScheduled,
		},
	}
}

func SeedPositionCodes() []string {
	return []string{"GK", "CB", "LB", "RB", "CDM", "CM", "CAM", "LM", "RM", "LW", "RW", "ST", "CF"}
}
