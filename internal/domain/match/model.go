package match

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusCancelled = "CANCELLED"
	StatusPostponed = "POSTPONED"
)

// Match holds the metadata this service reads from the matches collaborator.
type Match struct {
	ID          string
	OwnerUserID string
	HomeTeamID  string
	AwayTeamID  string
	HomeTeam    string
	AwayTeam    string
	Competition string
	Venue       string
	KickoffAt   time.Time
	Status      string
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusLive, "IN_PLAY", "HT", "1H", "2H", "ET", "PEN":
		return true
	default:
		return false
	}
}

// TeamName resolves a team id to its display name, falling back to the id for
// teams this match does not know about.
func (m Match) TeamName(teamID string) string {
	switch teamID {
	case m.HomeTeamID:
		return m.HomeTeam
	case m.AwayTeamID:
		return m.AwayTeam
	default:
		return teamID
	}
}
