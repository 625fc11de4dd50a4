package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/fieldside/matchlog/internal/domain/period"
)

func testPeriod(id string, number int, periodType string, started time.Time) period.Period {
	return period.Period{
		ID:        id,
		MatchID:   MatchIDPersijaPersib,
		Number:    number,
		Type:      periodType,
		StartedAt: started,
		CreatedAt: started,
		UpdatedAt: started,
	}
}

func TestPeriodRepository_Insert_SingleActiveRule(t *testing.T) {
	repo := NewPeriodRepository()
	ctx := t.Context()
	kickoff := time.Date(2025, 8, 15, 19, 0, 0, 0, time.UTC)

	if _, err := repo.Insert(ctx, testPeriod("per-1", 1, period.TypeRegular, kickoff)); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	_, err := repo.Insert(ctx, testPeriod("per-2", 1, period.TypeExtraTime, kickoff.Add(time.Minute)))
	if !errors.Is(err, period.ErrActivePeriodExists) {
		t.Fatalf("expected ErrActivePeriodExists, got %v", err)
	}
}

func TestPeriodRepository_Insert_DuplicateNaturalKey(t *testing.T) {
	repo := NewPeriodRepository()
	ctx := t.Context()
	kickoff := time.Date(2025, 8, 15, 19, 0, 0, 0, time.UTC)

	first := testPeriod("per-1", 1, period.TypeRegular, kickoff)
	ended := kickoff.Add(45 * time.Minute)
	first.EndedAt = &ended
	if _, err := repo.Insert(ctx, first); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	_, err := repo.Insert(ctx, testPeriod("per-2", 1, period.TypeRegular, kickoff.Add(time.Hour)))
	if !errors.Is(err, period.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestPeriodRepository_Upsert_KeepsRowIdentity(t *testing.T) {
	repo := NewPeriodRepository()
	ctx := t.Context()
	kickoff := time.Date(2025, 8, 15, 19, 0, 0, 0, time.UTC)

	original := testPeriod("per-1", 1, period.TypeRegular, kickoff)
	if _, err := repo.Upsert(ctx, original); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	replay := testPeriod("per-99", 1, period.TypeRegular, kickoff)
	notes := "backfilled"
	replay.Notes = notes
	replay.CreatedAt = kickoff.Add(time.Hour)

	stored, err := repo.Upsert(ctx, replay)
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if stored.ID != "per-1" {
		t.Fatalf("expected the original id per-1, got %s", stored.ID)
	}
	if !stored.CreatedAt.Equal(kickoff) {
		t.Fatalf("expected the original created_at, got %v", stored.CreatedAt)
	}
	if stored.Notes != notes {
		t.Fatalf("expected the replayed notes, got %q", stored.Notes)
	}

	items, err := repo.ListByMatch(ctx, MatchIDPersijaPersib)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one stored period, got %d", len(items))
	}
}

func TestPeriodRepository_Upsert_SingleActiveRule(t *testing.T) {
	repo := NewPeriodRepository()
	ctx := t.Context()
	kickoff := time.Date(2025, 8, 15, 19, 0, 0, 0, time.UTC)

	live := testPeriod("per-1", 1, period.TypeRegular, kickoff)
	if _, err := repo.Insert(ctx, live); err != nil {
		t.Fatalf("insert active failed: %v", err)
	}

	// A second open period is rejected, but refreshing the live one by its
	// own natural key is fine.
	_, err := repo.Upsert(ctx, testPeriod("per-2", 1, period.TypeExtraTime, kickoff.Add(time.Minute)))
	if !errors.Is(err, period.ErrActivePeriodExists) {
		t.Fatalf("expected ErrActivePeriodExists, got %v", err)
	}

	refreshed, err := repo.Upsert(ctx, testPeriod("per-9", 1, period.TypeRegular, kickoff.Add(time.Minute)))
	if err != nil {
		t.Fatalf("refresh of the active period failed: %v", err)
	}
	if refreshed.ID != "per-1" {
		t.Fatalf("expected the original id per-1, got %s", refreshed.ID)
	}

	closed := testPeriod("per-3", 2, period.TypeRegular, kickoff.Add(time.Hour))
	ended := kickoff.Add(2 * time.Hour)
	closed.EndedAt = &ended
	if _, err := repo.Upsert(ctx, closed); err != nil {
		t.Fatalf("closed upsert alongside active failed: %v", err)
	}
}

func TestPeriodRepository_FindActive(t *testing.T) {
	repo := NewPeriodRepository()
	ctx := t.Context()
	kickoff := time.Date(2025, 8, 15, 19, 0, 0, 0, time.UTC)

	closed := testPeriod("per-1", 1, period.TypeRegular, kickoff)
	ended := kickoff.Add(45 * time.Minute)
	closed.EndedAt = &ended
	if _, err := repo.Insert(ctx, closed); err != nil {
		t.Fatalf("insert closed failed: %v", err)
	}

	if _, found, err := repo.FindActive(ctx, MatchIDPersijaPersib); err != nil || found {
		t.Fatalf("expected no active period, got found=%v err=%v", found, err)
	}

	if _, err := repo.Insert(ctx, testPeriod("per-2", 2, period.TypeRegular, ended.Add(15*time.Minute))); err != nil {
		t.Fatalf("insert active failed: %v", err)
	}

	active, found, err := repo.FindActive(ctx, MatchIDPersijaPersib)
	if err != nil || !found {
		t.Fatalf("expected an active period, got found=%v err=%v", found, err)
	}
	if active.ID != "per-2" {
		t.Fatalf("expected per-2, got %s", active.ID)
	}
}

func TestPeriodRepository_ListByMatch_SortsByStart(t *testing.T) {
	repo := NewPeriodRepository()
	ctx := t.Context()
	kickoff := time.Date(2025, 8, 15, 19, 0, 0, 0, time.UTC)

	second := testPeriod("per-2", 2, period.TypeRegular, kickoff.Add(time.Hour))
	ended := kickoff.Add(2 * time.Hour)
	second.EndedAt = &ended
	first := testPeriod("per-1", 1, period.TypeRegular, kickoff)
	firstEnd := kickoff.Add(45 * time.Minute)
	first.EndedAt = &firstEnd

	if _, err := repo.Insert(ctx, second); err != nil {
		t.Fatalf("insert second failed: %v", err)
	}
	if _, err := repo.Insert(ctx, first); err != nil {
		t.Fatalf("insert first failed: %v", err)
	}

	items, err := repo.ListByMatch(ctx, MatchIDPersijaPersib)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 2 || items[0].ID != "per-1" || items[1].ID != "per-2" {
		t.Fatalf("expected start-time ordering per-1 then per-2, got %+v", items)
	}
}
