package usecase

import (
	"errors"
	"testing"

	"github.com/fieldside/matchlog/internal/domain/user"
	"github.com/fieldside/matchlog/internal/infrastructure/repository/memory"
)

func newImportFixture() (*LineupImportService, *LineupService) {
	matchRepo := seededMatchRepo()
	intervalRepo := memory.NewIntervalRepository(memory.NewTimelineRepository())
	lineupSvc := NewLineupService(
		matchRepo,
		memory.NewPositionRepository(memory.SeedPositionCodes()),
		intervalRepo,
		&seqIDGenerator{prefix: "ivl"},
		discardLogger(),
	)
	return NewLineupImportService(matchRepo, lineupSvc), lineupSvc
}

func TestLineupImportService_Import_AppliesAllRows(t *testing.T) {
	importSvc, lineupSvc := newImportFixture()
	principal := ownerPrincipal()

	entries := []LineupImportEntry{
		{PlayerID: "p-01", Position: "GK", StartMinute: 0},
		{PlayerID: "p-04", Position: "CB", StartMinute: 0},
		{PlayerID: "p-10", Position: "ST", StartMinute: 0, EndMinute: floatPtr(60)},
		{PlayerID: "p-10", Position: "CM", StartMinute: 60},
	}

	result, err := importSvc.Import(t.Context(), principal, memory.MatchIDPersijaPersib, entries)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if result.Total != 4 || result.Succeeded != 4 || result.Failed != 0 {
		t.Fatalf("expected 4/4 applied, got %+v", result)
	}
	for i, row := range result.Rows {
		if row.Index != i || row.Status != "created" || row.Error != "" {
			t.Fatalf("unexpected row %d: %+v", i, row)
		}
	}

	active, err := lineupSvc.GetActivePlayersAtTime(t.Context(), memory.MatchIDPersijaPersib, 70)
	if err != nil {
		t.Fatalf("get active players failed: %v", err)
	}
	if len(active) != 3 {
		t.Fatalf("expected 3 players active at 70 after p-10 moved to CM, got %d", len(active))
	}
}

func TestLineupImportService_Import_ReplayIsHarmless(t *testing.T) {
	importSvc, _ := newImportFixture()
	principal := ownerPrincipal()

	entries := []LineupImportEntry{
		{PlayerID: "p-01", Position: "GK", StartMinute: 0},
		{PlayerID: "p-10", Position: "ST", StartMinute: 0, EndMinute: floatPtr(45)},
	}

	if _, err := importSvc.Import(t.Context(), principal, memory.MatchIDPersijaPersib, entries); err != nil {
		t.Fatalf("first import failed: %v", err)
	}

	// A device retrying the same flush reports conflicts per row instead of
	// duplicating stints.
	replay, err := importSvc.Import(t.Context(), principal, memory.MatchIDPersijaPersib, entries)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if replay.Succeeded != 0 || replay.Failed != 2 {
		t.Fatalf("expected every replayed row to conflict, got %+v", replay)
	}
	for _, row := range replay.Rows {
		if row.Status != "conflict" || row.Error == "" {
			t.Fatalf("expected conflict rows with errors, got %+v", row)
		}
	}
}

func TestLineupImportService_Import_ReportsPartialFailures(t *testing.T) {
	importSvc, _ := newImportFixture()
	principal := ownerPrincipal()

	entries := []LineupImportEntry{
		{PlayerID: "p-01", Position: "GK", StartMinute: 0},
		{PlayerID: "p-02", Position: "QB", StartMinute: 0},
		{PlayerID: "p-03", Position: "CB", StartMinute: 0, EndMinute: floatPtr(45)},
		{PlayerID: "p-03", Position: "CB", StartMinute: 30},
	}

	result, err := importSvc.Import(t.Context(), principal, memory.MatchIDPersijaPersib, entries)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if result.Succeeded != 2 || result.Failed != 2 {
		t.Fatalf("expected 2 applied and 2 rejected, got %+v", result)
	}
	if result.Rows[1].Status != "invalid" {
		t.Fatalf("expected the unknown position row to be invalid, got %+v", result.Rows[1])
	}
	if result.Rows[3].Status != "conflict" {
		t.Fatalf("expected the overlapping row to conflict, got %+v", result.Rows[3])
	}
}

func TestLineupImportService_Import_Validation(t *testing.T) {
	importSvc, _ := newImportFixture()
	principal := ownerPrincipal()
	entry := LineupImportEntry{PlayerID: "p-01", Position: "GK", StartMinute: 0}

	if _, err := importSvc.Import(t.Context(), principal, memory.MatchIDPersijaPersib, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty batch, got %v", err)
	}
	if _, err := importSvc.Import(t.Context(), principal, "no-such-match", []LineupImportEntry{entry}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := importSvc.Import(t.Context(), user.Principal{UserID: "coach-999"}, memory.MatchIDPersijaPersib, []LineupImportEntry{entry}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	oversized := make([]LineupImportEntry, lineupImportMaxEntries+1)
	for i := range oversized {
		oversized[i] = entry
	}
	if _, err := importSvc.Import(t.Context(), principal, memory.MatchIDPersijaPersib, oversized); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for oversized batch, got %v", err)
	}
}
