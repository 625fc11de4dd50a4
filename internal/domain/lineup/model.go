package lineup

import (
	"errors"
	"time"
)

var (
	ErrOverlap            = errors.New("interval overlaps an existing stint")
	ErrOpenIntervalExists = errors.New("player already has an open interval")
	ErrDuplicate          = errors.New("interval already exists for this natural key")
	ErrOpenIntervalGone   = errors.New("open interval was closed concurrently")
)

const MaxReasonLength = 100

// MaxMinute caps recorded match minutes. Stored ranges must stay below the
// open-stint sentinel used by the lineup_intervals exclusion constraint.
const MaxMinute float64 = 1000

// Interval is one contiguous stint of a player at a position during a match.
// A nil EndMinute means the player is currently on the pitch.
type Interval struct {
	ID          string
	MatchID     string
	PlayerID    string
	Position    string
	StartMinute float64
	EndMinute   *float64
	PitchX      *float64
	PitchY      *float64
	Reason      string
	DeletedAt   *time.Time
	DeletedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (iv Interval) Deleted() bool {
	return iv.DeletedAt != nil
}

func (iv Interval) Open() bool {
	return iv.EndMinute == nil
}

// CoversMinute reports whether the stint is active at the given match minute.
// Start is inclusive, end is exclusive: a player subbed off exactly at minute 30
// is not active at minute 30.
func (iv Interval) CoversMinute(atMinute float64) bool {
	if iv.Deleted() {
		return false
	}
	if atMinute < iv.StartMinute {
		return false
	}
	return iv.EndMinute == nil || *iv.EndMinute > atMinute
}

// Overlaps reports whether two stints share any span of match time.
// Ranges are half-open, so back-to-back stints (end == next start) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	if iv.Deleted() || other.Deleted() {
		return false
	}
	if iv.EndMinute != nil && *iv.EndMinute <= other.StartMinute {
		return false
	}
	if other.EndMinute != nil && *other.EndMinute <= iv.StartMinute {
		return false
	}
	return true
}

// SameNaturalKey reports whether two records describe the same logical write.
// (MatchID, PlayerID, StartMinute) drives restore-on-recreate for replays.
func (iv Interval) SameNaturalKey(other Interval) bool {
	return iv.MatchID == other.MatchID &&
		iv.PlayerID == other.PlayerID &&
		iv.StartMinute == other.StartMinute
}

// ActivePlayer is the (player, position) projection of an active interval.
type ActivePlayer struct {
	PlayerID string
	Position string
}
