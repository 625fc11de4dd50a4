package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/fieldside/matchlog/internal/domain/lineup"
	"github.com/fieldside/matchlog/internal/domain/timeline"
	"github.com/fieldside/matchlog/internal/infrastructure/repository/memory"
)

// newSubstitutionFixture wires lineup and substitution services over the same
// interval store, sharing one id sequence so every minted id is distinct.
func newSubstitutionFixture() (*LineupService, *SubstitutionService, *memory.TimelineRepository) {
	matchRepo := seededMatchRepo()
	positionRepo := memory.NewPositionRepository(memory.SeedPositionCodes())
	timelineRepo := memory.NewTimelineRepository()
	intervalRepo := memory.NewIntervalRepository(timelineRepo)
	idGen := &seqIDGenerator{prefix: "rec"}

	lineupSvc := NewLineupService(matchRepo, positionRepo, intervalRepo, idGen, discardLogger())
	subSvc := NewSubstitutionService(matchRepo, positionRepo, intervalRepo, idGen, discardLogger())
	return lineupSvc, subSvc, timelineRepo
}

func TestSubstitutionService_Substitute_ClosesOffAndOpensOn(t *testing.T) {
	lineupSvc, subSvc, timelineRepo := newSubstitutionFixture()
	principal := ownerPrincipal()
	notifier := &recordingNotifier{}
	subSvc.SetChangeNotifier(notifier)

	created, err := lineupSvc.CreateInterval(t.Context(), principal, CreateIntervalInput{
		MatchID:     memory.MatchIDPersijaPersib,
		PlayerID:    "p-10",
		Position:    "ST",
		StartMinute: 0,
	})
	if err != nil {
		t.Fatalf("seed stint failed: %v", err)
	}

	subbedAt := time.Date(2025, 8, 15, 20, 0, 0, 0, time.UTC)
	subSvc.now = func() time.Time { return subbedAt }

	result, err := subSvc.Substitute(t.Context(), principal, SubstituteInput{
		MatchID:     memory.MatchIDPersijaPersib,
		PlayerOffID: "p-10",
		PlayerOnID:  "p-23",
		Position:    "cm",
		AtMinute:    60,
		Reason:      "fresh legs",
	})
	if err != nil {
		t.Fatalf("substitute failed: %v", err)
	}

	if result.OffInterval.ID != created.ID {
		t.Fatalf("expected off interval %s, got %s", created.ID, result.OffInterval.ID)
	}
	if result.OffInterval.EndMinute == nil || *result.OffInterval.EndMinute != 60 {
		t.Fatalf("expected off stint closed at 60, got %v", result.OffInterval.EndMinute)
	}
	if result.OnInterval.PlayerID != "p-23" || result.OnInterval.Position != "CM" {
		t.Fatalf("expected p-23 on at CM, got %s at %s", result.OnInterval.PlayerID, result.OnInterval.Position)
	}
	if result.OnInterval.StartMinute != 60 || result.OnInterval.EndMinute != nil {
		t.Fatalf("expected open stint from 60, got start=%v end=%v", result.OnInterval.StartMinute, result.OnInterval.EndMinute)
	}
	if result.ZeroDurationStint {
		t.Fatal("expected a non-zero-duration off stint")
	}

	if len(result.TimelineEvents) != 2 {
		t.Fatalf("expected two markers, got %d", len(result.TimelineEvents))
	}
	off, on := result.TimelineEvents[0], result.TimelineEvents[1]
	if off.Type != timeline.EventSubstitutionOff || off.PlayerID != "p-10" || off.RelatedPlayerID != "p-23" {
		t.Fatalf("unexpected off marker: %+v", off)
	}
	if on.Type != timeline.EventSubstitutionOn || on.PlayerID != "p-23" || on.RelatedPlayerID != "p-10" {
		t.Fatalf("unexpected on marker: %+v", on)
	}
	if off.Minute != 60 || on.Minute != 60 || off.Detail != "fresh legs" {
		t.Fatalf("expected markers at minute 60 with the reason, got off=%+v on=%+v", off, on)
	}

	stored, err := timelineRepo.ListByMatch(t.Context(), memory.MatchIDPersijaPersib)
	if err != nil {
		t.Fatalf("list events failed: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected both markers persisted, got %d", len(stored))
	}

	wantDedup := memory.MatchIDPersijaPersib + ":p-23:60.0000"
	if len(notifier.kinds) != 1 || notifier.kinds[0] != "substitution" || notifier.dedups[0] != wantDedup {
		t.Fatalf("expected one substitution notification with dedup %s, got kinds=%v dedups=%v", wantDedup, notifier.kinds, notifier.dedups)
	}
}

func TestSubstitutionService_Substitute_PlayerNotOnPitch(t *testing.T) {
	_, subSvc, _ := newSubstitutionFixture()

	_, err := subSvc.Substitute(t.Context(), ownerPrincipal(), SubstituteInput{
		MatchID:     memory.MatchIDPersijaPersib,
		PlayerOffID: "p-10",
		PlayerOnID:  "p-23",
		Position:    "CM",
		AtMinute:    60,
	})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestSubstitutionService_Substitute_MinutePrecedesStintStart(t *testing.T) {
	lineupSvc, subSvc, _ := newSubstitutionFixture()
	principal := ownerPrincipal()

	if _, err := lineupSvc.CreateInterval(t.Context(), principal, CreateIntervalInput{
		MatchID:     memory.MatchIDPersijaPersib,
		PlayerID:    "p-10",
		Position:    "ST",
		StartMinute: 30,
	}); err != nil {
		t.Fatalf("seed stint failed: %v", err)
	}

	_, err := subSvc.Substitute(t.Context(), principal, SubstituteInput{
		MatchID:     memory.MatchIDPersijaPersib,
		PlayerOffID: "p-10",
		PlayerOnID:  "p-23",
		Position:    "CM",
		AtMinute:    20,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubstitutionService_Substitute_FlagsZeroDurationStint(t *testing.T) {
	lineupSvc, subSvc, _ := newSubstitutionFixture()
	principal := ownerPrincipal()

	if _, err := lineupSvc.CreateInterval(t.Context(), principal, CreateIntervalInput{
		MatchID:     memory.MatchIDPersijaPersib,
		PlayerID:    "p-10",
		Position:    "ST",
		StartMinute: 75,
	}); err != nil {
		t.Fatalf("seed stint failed: %v", err)
	}

	result, err := subSvc.Substitute(t.Context(), principal, SubstituteInput{
		MatchID:     memory.MatchIDPersijaPersib,
		PlayerOffID: "p-10",
		PlayerOnID:  "p-23",
		Position:    "CM",
		AtMinute:    75,
	})
	if err != nil {
		t.Fatalf("substitute failed: %v", err)
	}
	if !result.ZeroDurationStint {
		t.Fatal("expected zero-duration stint flag")
	}
	if result.OffInterval.EndMinute == nil || *result.OffInterval.EndMinute != 75 {
		t.Fatalf("expected off stint closed at its own start, got %v", result.OffInterval.EndMinute)
	}
}

func TestSubstitutionService_Substitute_RejectsSamePlayer(t *testing.T) {
	_, subSvc, _ := newSubstitutionFixture()

	_, err := subSvc.Substitute(t.Context(), ownerPrincipal(), SubstituteInput{
		MatchID:     memory.MatchIDPersijaPersib,
		PlayerOffID: "p-10",
		PlayerOnID:  "p-10",
		Position:    "CM",
		AtMinute:    60,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubstitutionService_Substitute_RejectsMinuteBeyondClockCap(t *testing.T) {
	_, subSvc, _ := newSubstitutionFixture()

	_, err := subSvc.Substitute(t.Context(), ownerPrincipal(), SubstituteInput{
		MatchID:     memory.MatchIDPersijaPersib,
		PlayerOffID: "p-10",
		PlayerOnID:  "p-23",
		Position:    "CM",
		AtMinute:    lineup.MaxMinute + 1,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubstitutionService_Substitute_OnPlayerAlreadyOnPitchConflicts(t *testing.T) {
	lineupSvc, subSvc, timelineRepo := newSubstitutionFixture()
	principal := ownerPrincipal()

	for _, playerID := range []string{"p-10", "p-23"} {
		if _, err := lineupSvc.CreateInterval(t.Context(), principal, CreateIntervalInput{
			MatchID:     memory.MatchIDPersijaPersib,
			PlayerID:    playerID,
			Position:    "CM",
			StartMinute: 0,
		}); err != nil {
			t.Fatalf("seed stint for %s failed: %v", playerID, err)
		}
	}

	_, err := subSvc.Substitute(t.Context(), principal, SubstituteInput{
		MatchID:     memory.MatchIDPersijaPersib,
		PlayerOffID: "p-10",
		PlayerOnID:  "p-23",
		Position:    "CM",
		AtMinute:    60,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict when the incoming player is already on the pitch, got %v", err)
	}

	// The failed call leaves no trace: both stints stay open and no markers
	// are written.
	after, err := lineupSvc.GetCurrentLineup(t.Context(), memory.MatchIDPersijaPersib, 90)
	if err != nil {
		t.Fatalf("lineup after failed substitution: %v", err)
	}
	if len(after) != 2 {
		t.Fatalf("expected both players still on the pitch, got %d", len(after))
	}
	for _, item := range after {
		if item.EndMinute != nil {
			t.Fatalf("expected stint of %s to stay open, got end=%v", item.PlayerID, *item.EndMinute)
		}
	}

	events, err := timelineRepo.ListByMatch(t.Context(), memory.MatchIDPersijaPersib)
	if err != nil {
		t.Fatalf("list events failed: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no markers after a failed substitution, got %d", len(events))
	}
}
