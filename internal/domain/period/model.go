package period

import (
	"errors"
	"strings"
	"time"
)

const (
	TypeRegular         = "REGULAR"
	TypeExtraTime       = "EXTRA_TIME"
	TypePenaltyShootout = "PENALTY_SHOOTOUT"
)

const (
	MaxNotesLength     = 500
	MaxDurationSeconds = 7200
)

var (
	ErrActivePeriodExists = errors.New("another period is already active")
	ErrDuplicate          = errors.New("period already exists for this natural key")
)

// Period is one bounded match-time segment. Numbers are scoped per type, so
// REGULAR and EXTRA_TIME both count from 1. A nil EndedAt marks the single
// active period of the match.
type Period struct {
	ID              string
	MatchID         string
	Number          int
	Type            string
	StartedAt       time.Time
	EndedAt         *time.Time
	DurationSeconds *int
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p Period) Active() bool {
	return p.EndedAt == nil
}

func NormalizeType(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

func ValidType(value string) bool {
	switch NormalizeType(value) {
	case TypeRegular, TypeExtraTime, TypePenaltyShootout:
		return true
	default:
		return false
	}
}

// ElapsedMinutes derives the current match-clock minute from the recorded
// periods: the sum of closed playing-time durations plus time elapsed in the
// active period, if any. Penalty shootouts do not advance the clock.
func ElapsedMinutes(periods []Period, now time.Time) float64 {
	total := 0.0
	for _, p := range periods {
		if p.Type == TypePenaltyShootout {
			continue
		}
		switch {
		case p.EndedAt != nil && p.DurationSeconds != nil:
			total += float64(*p.DurationSeconds) / 60.0
		case p.EndedAt != nil:
			total += p.EndedAt.Sub(p.StartedAt).Minutes()
		case now.After(p.StartedAt):
			total += now.Sub(p.StartedAt).Minutes()
		}
	}
	return total
}
