package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/fieldside/matchlog/internal/domain/match"
	"github.com/fieldside/matchlog/internal/domain/user"
)

const (
	lineupImportMaxEntries = 500
	lineupImportMaxWorkers = 8
)

const (
	importStatusCreated  = "created"
	importStatusConflict = "conflict"
	importStatusInvalid  = "invalid"
	importStatusFailed   = "failed"
)

type LineupImportEntry struct {
	PlayerID    string
	Position    string
	StartMinute float64
	EndMinute   *float64
	PitchX      *float64
	PitchY      *float64
	Reason      string
}

type LineupImportRow struct {
	Index    int
	PlayerID string
	Status   string
	Error    string
}

type LineupImportResult struct {
	Total     int
	Succeeded int
	Failed    int
	Rows      []LineupImportRow
}

// LineupImportService replays a batch of queued create-interval messages that
// an offline device flushed in one request. Entries for the same player run
// sequentially so their overlap checks stay ordered; distinct players run on a
// bounded worker pool. Each entry goes through the regular restore-on-recreate
// path, so replaying an already-applied batch is harmless.
type LineupImportService struct {
	matchRepo match.Repository
	lineupSvc *LineupService
}

func NewLineupImportService(matchRepo match.Repository, lineupSvc *LineupService) *LineupImportService {
	return &LineupImportService{
		matchRepo: matchRepo,
		lineupSvc: lineupSvc,
	}
}

func (s *LineupImportService) Import(ctx context.Context, principal user.Principal, matchID string, entries []LineupImportEntry) (LineupImportResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupImportService.Import")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return LineupImportResult{}, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}
	if len(entries) == 0 {
		return LineupImportResult{}, fmt.Errorf("%w: entries are required", ErrInvalidInput)
	}
	if len(entries) > lineupImportMaxEntries {
		return LineupImportResult{}, fmt.Errorf("%w: at most %d entries per import", ErrInvalidInput, lineupImportMaxEntries)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return LineupImportResult{}, fmt.Errorf("get match by id: %w", err)
	}
	if !exists {
		return LineupImportResult{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	if !principal.CanManage(item.OwnerUserID) {
		return LineupImportResult{}, fmt.Errorf("%w: caller cannot manage match=%s", ErrForbidden, matchID)
	}

	type indexedEntry struct {
		index int
		entry LineupImportEntry
	}
	groups := make(map[string][]indexedEntry)
	for i, entry := range entries {
		playerID := strings.TrimSpace(entry.PlayerID)
		groups[playerID] = append(groups[playerID], indexedEntry{index: i, entry: entry})
	}

	workerCount := len(groups)
	if workerCount > lineupImportMaxWorkers {
		workerCount = lineupImportMaxWorkers
	}
	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return LineupImportResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	rows := make([]LineupImportRow, len(entries))
	var succeeded atomic.Int32
	var failed atomic.Int32

	var workers sync.WaitGroup
	for _, group := range groups {
		group := group
		workers.Add(1)
		submitErr := workerPool.Submit(func() {
			defer workers.Done()

			// Within one player, apply earlier stints first.
			sort.SliceStable(group, func(i, j int) bool {
				return group[i].entry.StartMinute < group[j].entry.StartMinute
			})

			for _, item := range group {
				row := LineupImportRow{Index: item.index, PlayerID: strings.TrimSpace(item.entry.PlayerID)}
				_, createErr := s.lineupSvc.CreateInterval(ctx, principal, CreateIntervalInput{
					MatchID:     matchID,
					PlayerID:    item.entry.PlayerID,
					Position:    item.entry.Position,
					StartMinute: item.entry.StartMinute,
					EndMinute:   item.entry.EndMinute,
					PitchX:      item.entry.PitchX,
					PitchY:      item.entry.PitchY,
					Reason:      item.entry.Reason,
				})
				switch {
				case createErr == nil:
					row.Status = importStatusCreated
					succeeded.Add(1)
				case errors.Is(createErr, ErrConflict):
					row.Status = importStatusConflict
					row.Error = createErr.Error()
					failed.Add(1)
				case errors.Is(createErr, ErrInvalidInput):
					row.Status = importStatusInvalid
					row.Error = createErr.Error()
					failed.Add(1)
				default:
					row.Status = importStatusFailed
					row.Error = createErr.Error()
					failed.Add(1)
				}
				rows[item.index] = row
			}
		})
		if submitErr != nil {
			workers.Done()
			return LineupImportResult{}, fmt.Errorf("submit import task: %w", submitErr)
		}
	}
	workers.Wait()

	return LineupImportResult{
		Total:     len(entries),
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
		Rows:      rows,
	}, nil
}
