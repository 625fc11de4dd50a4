package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/fieldside/matchlog/internal/domain/lineup"
	"github.com/fieldside/matchlog/internal/domain/timeline"
)

func minutePtr(v float64) *float64 {
	return &v
}

func testInterval(id, playerID string, start float64, end *float64) lineup.Interval {
	now := time.Date(2025, 8, 15, 19, 0, 0, 0, time.UTC)
	return lineup.Interval{
		ID:          id,
		MatchID:     MatchIDPersijaPersib,
		PlayerID:    playerID,
		Position:    "ST",
		StartMinute: start,
		EndMinute:   end,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestIntervalRepository_CreateOrRestore_RejectsOverlap(t *testing.T) {
	repo := NewIntervalRepository(NewTimelineRepository())
	ctx := t.Context()

	if _, err := repo.CreateOrRestore(ctx, testInterval("ivl-1", "p-10", 0, minutePtr(45))); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	_, err := repo.CreateOrRestore(ctx, testInterval("ivl-2", "p-10", 30, minutePtr(60)))
	if !errors.Is(err, lineup.ErrOverlap) {
		t.Fatalf("expected ErrOverlap, got %v", err)
	}
}

func TestIntervalRepository_CreateOrRestore_RejectsSecondOpen(t *testing.T) {
	repo := NewIntervalRepository(NewTimelineRepository())
	ctx := t.Context()

	if _, err := repo.CreateOrRestore(ctx, testInterval("ivl-1", "p-10", 0, nil)); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	_, err := repo.CreateOrRestore(ctx, testInterval("ivl-2", "p-10", 45, nil))
	if !errors.Is(err, lineup.ErrOpenIntervalExists) {
		t.Fatalf("expected ErrOpenIntervalExists, got %v", err)
	}
}

func TestIntervalRepository_CreateOrRestore_DuplicateNaturalKey(t *testing.T) {
	repo := NewIntervalRepository(NewTimelineRepository())
	ctx := t.Context()

	if _, err := repo.CreateOrRestore(ctx, testInterval("ivl-1", "p-10", 0, minutePtr(45))); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	_, err := repo.CreateOrRestore(ctx, testInterval("ivl-2", "p-10", 0, minutePtr(45)))
	if !errors.Is(err, lineup.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestIntervalRepository_CreateOrRestore_RestoresDeletedRow(t *testing.T) {
	repo := NewIntervalRepository(NewTimelineRepository())
	ctx := t.Context()

	if _, err := repo.CreateOrRestore(ctx, testInterval("ivl-1", "p-10", 0, minutePtr(45))); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := repo.SoftDelete(ctx, "ivl-1", "coach-001"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	replay := testInterval("ivl-2", "p-10", 0, minutePtr(45))
	replay.Position = "CF"
	restored, err := repo.CreateOrRestore(ctx, replay)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if restored.ID != "ivl-1" {
		t.Fatalf("expected the original row id ivl-1, got %s", restored.ID)
	}
	if restored.Deleted() || restored.DeletedBy != "" {
		t.Fatalf("expected a live row, got deleted_at=%v deleted_by=%q", restored.DeletedAt, restored.DeletedBy)
	}
	if restored.Position != "CF" {
		t.Fatalf("expected the replayed position, got %s", restored.Position)
	}
}

func TestIntervalRepository_ApplySubstitution_Atomic(t *testing.T) {
	timelineRepo := NewTimelineRepository()
	repo := NewIntervalRepository(timelineRepo)
	ctx := t.Context()

	open := testInterval("ivl-1", "p-10", 0, nil)
	if _, err := repo.CreateOrRestore(ctx, open); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	off := open
	off.EndMinute = minutePtr(60)
	on := testInterval("ivl-2", "p-23", 60, nil)
	markers := []timeline.Event{
		{ID: "evt-1", MatchID: MatchIDPersijaPersib, PlayerID: "p-10", Type: timeline.EventSubstitutionOff, Minute: 60},
		{ID: "evt-2", MatchID: MatchIDPersijaPersib, PlayerID: "p-23", Type: timeline.EventSubstitutionOn, Minute: 60},
	}

	storedOff, storedOn, err := repo.ApplySubstitution(ctx, off, on, markers)
	if err != nil {
		t.Fatalf("apply substitution failed: %v", err)
	}
	if storedOff.EndMinute == nil || *storedOff.EndMinute != 60 {
		t.Fatalf("expected off stint closed at 60, got %v", storedOff.EndMinute)
	}
	if storedOn.PlayerID != "p-23" || !storedOn.Open() {
		t.Fatalf("expected an open stint for p-23, got %+v", storedOn)
	}

	events, err := timelineRepo.ListByMatch(ctx, MatchIDPersijaPersib)
	if err != nil {
		t.Fatalf("list events failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected both markers stored, got %d", len(events))
	}
}

func TestIntervalRepository_ApplySubstitution_OpenIntervalGone(t *testing.T) {
	repo := NewIntervalRepository(NewTimelineRepository())
	ctx := t.Context()

	closed := testInterval("ivl-1", "p-10", 0, minutePtr(45))
	if _, err := repo.CreateOrRestore(ctx, closed); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	off := closed
	off.EndMinute = minutePtr(60)
	on := testInterval("ivl-2", "p-23", 60, nil)

	_, _, err := repo.ApplySubstitution(ctx, off, on, nil)
	if !errors.Is(err, lineup.ErrOpenIntervalGone) {
		t.Fatalf("expected ErrOpenIntervalGone, got %v", err)
	}
}

func TestIntervalRepository_ListActiveAt_SortsByStartThenPlayer(t *testing.T) {
	repo := NewIntervalRepository(NewTimelineRepository())
	ctx := t.Context()

	for _, item := range []lineup.Interval{
		testInterval("ivl-1", "p-23", 10, nil),
		testInterval("ivl-2", "p-10", 0, nil),
		testInterval("ivl-3", "p-05", 0, minutePtr(5)),
	} {
		if _, err := repo.CreateOrRestore(ctx, item); err != nil {
			t.Fatalf("insert %s failed: %v", item.ID, err)
		}
	}

	items, err := repo.ListActiveAt(ctx, MatchIDPersijaPersib, 15)
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 active intervals, got %d", len(items))
	}
	if items[0].PlayerID != "p-10" || items[1].PlayerID != "p-23" {
		t.Fatalf("expected start-minute ordering, got %s then %s", items[0].PlayerID, items[1].PlayerID)
	}
}

func TestIntervalRepository_ReturnsClones(t *testing.T) {
	repo := NewIntervalRepository(NewTimelineRepository())
	ctx := t.Context()

	if _, err := repo.CreateOrRestore(ctx, testInterval("ivl-1", "p-10", 0, minutePtr(45))); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	first, _, err := repo.GetByID(ctx, "ivl-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	*first.EndMinute = 90

	second, _, err := repo.GetByID(ctx, "ivl-1")
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if *second.EndMinute != 45 {
		t.Fatalf("expected the stored row to be isolated from callers, got end=%v", *second.EndMinute)
	}
}
