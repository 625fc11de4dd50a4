package timeline

import "time"

const (
	EventSubstitutionOff = "substitution_off"
	EventSubstitutionOn  = "substitution_on"
	EventGoal            = "goal"
	EventOwnGoal         = "own_goal"
	EventPenaltyGoal     = "penalty_goal"
	EventYellowCard      = "yellow_card"
	EventRedCard         = "red_card"
)

// Event is one entry in a match timeline. Substitution markers are produced by
// the substitution handler; the rest arrive from the external event log.
type Event struct {
	ID              string
	MatchID         string
	PlayerID        string
	RelatedPlayerID string
	TeamID          string
	Type            string
	Minute          float64
	Detail          string
	CreatedAt       time.Time
}

func (e Event) IsGoal() bool {
	switch e.Type {
	case EventGoal, EventOwnGoal, EventPenaltyGoal:
		return true
	default:
		return false
	}
}
