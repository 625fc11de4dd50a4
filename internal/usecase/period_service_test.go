package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/fieldside/matchlog/internal/domain/period"
	"github.com/fieldside/matchlog/internal/infrastructure/repository/memory"
)

func newPeriodFixture() (*PeriodService, *memory.PeriodRepository) {
	periodRepo := memory.NewPeriodRepository()
	service := NewPeriodService(
		seededMatchRepo(),
		periodRepo,
		&seqIDGenerator{prefix: "per"},
		discardLogger(),
	)
	return service, periodRepo
}

func TestPeriodService_StartPeriod_NumbersPerType(t *testing.T) {
	service, _ := newPeriodFixture()
	principal := ownerPrincipal()

	kickoff := time.Date(2025, 8, 15, 19, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return kickoff }

	first, err := service.StartPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, "regular", "first half")
	if err != nil {
		t.Fatalf("start first half failed: %v", err)
	}
	if first.Number != 1 || first.Type != period.TypeRegular {
		t.Fatalf("expected REGULAR 1, got %s %d", first.Type, first.Number)
	}
	if !first.StartedAt.Equal(kickoff) || first.Notes != "first half" {
		t.Fatalf("expected start %v with notes, got started=%v notes=%q", kickoff, first.StartedAt, first.Notes)
	}

	service.now = func() time.Time { return kickoff.Add(45 * time.Minute) }
	if _, err := service.EndPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, first.ID, ""); err != nil {
		t.Fatalf("end first half failed: %v", err)
	}

	second, err := service.StartPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, "REGULAR", "")
	if err != nil {
		t.Fatalf("start second half failed: %v", err)
	}
	if second.Number != 2 {
		t.Fatalf("expected second REGULAR period numbered 2, got %d", second.Number)
	}

	service.now = func() time.Time { return kickoff.Add(95 * time.Minute) }
	if _, err := service.EndPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, second.ID, ""); err != nil {
		t.Fatalf("end second half failed: %v", err)
	}

	// Extra time counts from 1 again; numbering is scoped per type.
	extra, err := service.StartPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, "extra_time", "")
	if err != nil {
		t.Fatalf("start extra time failed: %v", err)
	}
	if extra.Number != 1 || extra.Type != period.TypeExtraTime {
		t.Fatalf("expected EXTRA_TIME 1, got %s %d", extra.Type, extra.Number)
	}
}

func TestPeriodService_StartPeriod_SecondActiveConflicts(t *testing.T) {
	service, _ := newPeriodFixture()
	principal := ownerPrincipal()

	if _, err := service.StartPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, period.TypeRegular, ""); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	_, err := service.StartPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, period.TypeExtraTime, "")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict while another period is active, got %v", err)
	}
}

func TestPeriodService_StartPeriod_UnknownTypeInvalid(t *testing.T) {
	service, _ := newPeriodFixture()

	_, err := service.StartPeriod(t.Context(), ownerPrincipal(), memory.MatchIDPersijaPersib, "THIRD_HALF", "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPeriodService_EndPeriod_DerivesDuration(t *testing.T) {
	service, _ := newPeriodFixture()
	principal := ownerPrincipal()

	started := time.Date(2025, 8, 15, 19, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return started }

	item, err := service.StartPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, period.TypeRegular, "first half")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	ended := started.Add(45 * time.Minute)
	service.now = func() time.Time { return ended }

	closed, err := service.EndPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, item.ID, "half time")
	if err != nil {
		t.Fatalf("end failed: %v", err)
	}

	if closed.EndedAt == nil || !closed.EndedAt.Equal(ended) {
		t.Fatalf("expected ended at %v, got %v", ended, closed.EndedAt)
	}
	if closed.DurationSeconds == nil || *closed.DurationSeconds != 2700 {
		t.Fatalf("expected duration 2700s, got %v", closed.DurationSeconds)
	}
	if closed.Notes != "half time" {
		t.Fatalf("expected the end reason to replace notes, got %q", closed.Notes)
	}
}

func TestPeriodService_EndPeriod_ClampsDurationToMaximum(t *testing.T) {
	service, _ := newPeriodFixture()
	principal := ownerPrincipal()

	started := time.Date(2025, 8, 15, 19, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return started }

	item, err := service.StartPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, period.TypeRegular, "")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// A period forgotten for three hours still closes with a storable duration.
	service.now = func() time.Time { return started.Add(3 * time.Hour) }

	closed, err := service.EndPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, item.ID, "")
	if err != nil {
		t.Fatalf("end failed: %v", err)
	}
	if closed.DurationSeconds == nil || *closed.DurationSeconds != period.MaxDurationSeconds {
		t.Fatalf("expected duration clamped to %d, got %v", period.MaxDurationSeconds, closed.DurationSeconds)
	}
}

func TestPeriodService_EndPeriod_AlreadyEnded(t *testing.T) {
	service, _ := newPeriodFixture()
	principal := ownerPrincipal()

	item, err := service.StartPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, period.TypeRegular, "")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := service.EndPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, item.ID, ""); err != nil {
		t.Fatalf("first end failed: %v", err)
	}

	_, err = service.EndPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, item.ID, "")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestPeriodService_EndPeriod_WrongMatchNotFound(t *testing.T) {
	service, _ := newPeriodFixture()
	principal := ownerPrincipal()

	item, err := service.StartPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, period.TypeRegular, "")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	_, err = service.EndPeriod(t.Context(), principal, memory.MatchIDBaliUtdPersebaya, item.ID, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a period of another match, got %v", err)
	}
}

func TestPeriodService_ImportPeriod_UpsertIsIdempotent(t *testing.T) {
	service, periodRepo := newPeriodFixture()
	principal := ownerPrincipal()

	started := time.Date(2025, 8, 15, 19, 0, 0, 0, time.UTC)
	ended := started.Add(47 * time.Minute)

	first, err := service.ImportPeriod(t.Context(), principal, ImportPeriodInput{
		MatchID:   memory.MatchIDPersijaPersib,
		Number:    1,
		Type:      period.TypeRegular,
		StartedAt: started,
		EndedAt:   &ended,
	})
	if err != nil {
		t.Fatalf("first import failed: %v", err)
	}
	if first.DurationSeconds == nil || *first.DurationSeconds != 47*60 {
		t.Fatalf("expected derived duration %ds, got %v", 47*60, first.DurationSeconds)
	}

	// Replaying the same period keeps the stored row and its identity.
	override := 2700
	second, err := service.ImportPeriod(t.Context(), principal, ImportPeriodInput{
		MatchID:         memory.MatchIDPersijaPersib,
		Number:          1,
		Type:            period.TypeRegular,
		StartedAt:       started,
		EndedAt:         &ended,
		DurationSeconds: &override,
	})
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected upsert to keep id %s, got %s", first.ID, second.ID)
	}
	if second.DurationSeconds == nil || *second.DurationSeconds != override {
		t.Fatalf("expected explicit duration %d to win, got %v", override, second.DurationSeconds)
	}

	items, err := periodRepo.ListByMatch(t.Context(), memory.MatchIDPersijaPersib)
	if err != nil {
		t.Fatalf("list periods failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected a single stored period, got %d", len(items))
	}
}

func TestPeriodService_ImportPeriod_Validation(t *testing.T) {
	service, _ := newPeriodFixture()
	principal := ownerPrincipal()

	started := time.Date(2025, 8, 15, 19, 0, 0, 0, time.UTC)
	before := started.Add(-time.Minute)
	tooLong := period.MaxDurationSeconds + 1

	cases := []struct {
		name  string
		input ImportPeriodInput
	}{
		{
			name:  "zero number",
			input: ImportPeriodInput{MatchID: memory.MatchIDPersijaPersib, Number: 0, Type: period.TypeRegular, StartedAt: started},
		},
		{
			name:  "missing started at",
			input: ImportPeriodInput{MatchID: memory.MatchIDPersijaPersib, Number: 1, Type: period.TypeRegular},
		},
		{
			name:  "ended before started",
			input: ImportPeriodInput{MatchID: memory.MatchIDPersijaPersib, Number: 1, Type: period.TypeRegular, StartedAt: started, EndedAt: &before},
		},
		{
			name:  "duration over bound",
			input: ImportPeriodInput{MatchID: memory.MatchIDPersijaPersib, Number: 1, Type: period.TypeRegular, StartedAt: started, DurationSeconds: &tooLong},
		},
		{
			name:  "unknown type",
			input: ImportPeriodInput{MatchID: memory.MatchIDPersijaPersib, Number: 1, Type: "WARMUP", StartedAt: started},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.ImportPeriod(t.Context(), principal, tc.input)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestPeriodService_ImportPeriod_AllowsClosedBackfillAlongsideActive(t *testing.T) {
	service, _ := newPeriodFixture()
	principal := ownerPrincipal()

	if _, err := service.StartPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, period.TypeExtraTime, ""); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Closed history may land out of real-time order next to the live period.
	started := time.Date(2025, 8, 10, 15, 0, 0, 0, time.UTC)
	ended := started.Add(45 * time.Minute)
	if _, err := service.ImportPeriod(t.Context(), principal, ImportPeriodInput{
		MatchID:   memory.MatchIDPersijaPersib,
		Number:    1,
		Type:      period.TypeRegular,
		StartedAt: started,
		EndedAt:   &ended,
	}); err != nil {
		t.Fatalf("closed import alongside active period failed: %v", err)
	}
}

func TestPeriodService_ImportPeriod_OpenImportWhileActiveConflicts(t *testing.T) {
	service, _ := newPeriodFixture()
	principal := ownerPrincipal()

	if _, err := service.StartPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, period.TypeRegular, ""); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	started := time.Date(2025, 8, 10, 15, 0, 0, 0, time.UTC)
	_, err := service.ImportPeriod(t.Context(), principal, ImportPeriodInput{
		MatchID:   memory.MatchIDPersijaPersib,
		Number:    1,
		Type:      period.TypeExtraTime,
		StartedAt: started,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict importing an open period while another is active, got %v", err)
	}
}

func TestPeriodService_ImportPeriod_RefreshesTheActivePeriodItself(t *testing.T) {
	service, _ := newPeriodFixture()
	principal := ownerPrincipal()

	started := time.Date(2025, 8, 15, 19, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return started }

	live, err := service.StartPeriod(t.Context(), principal, memory.MatchIDPersijaPersib, period.TypeRegular, "")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Re-importing the active period by its own natural key is not a second
	// open period.
	refreshed, err := service.ImportPeriod(t.Context(), principal, ImportPeriodInput{
		MatchID:   memory.MatchIDPersijaPersib,
		Number:    live.Number,
		Type:      live.Type,
		StartedAt: started.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("re-import of the active period failed: %v", err)
	}
	if refreshed.ID != live.ID {
		t.Fatalf("expected upsert to keep id %s, got %s", live.ID, refreshed.ID)
	}
}
