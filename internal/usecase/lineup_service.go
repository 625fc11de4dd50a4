package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fieldside/matchlog/internal/domain/lineup"
	"github.com/fieldside/matchlog/internal/domain/match"
	"github.com/fieldside/matchlog/internal/domain/reference"
	"github.com/fieldside/matchlog/internal/domain/user"
	idgen "github.com/fieldside/matchlog/internal/platform/id"
)

// ChangeNotifier tells the external delivery transport that match data changed.
// The dedup id makes downstream fan-out idempotent for replayed notifications.
type ChangeNotifier interface {
	NotifyMatchChanged(ctx context.Context, matchID, kind, dedupID string) error
}

type CreateIntervalInput struct {
	MatchID     string
	PlayerID    string
	Position    string
	StartMinute float64
	EndMinute   *float64
	PitchX      *float64
	PitchY      *float64
	Reason      string
}

// UpdateIntervalPatch carries the mutable interval fields; nil means "leave as is".
type UpdateIntervalPatch struct {
	EndMinute *float64
	Position  *string
	PitchX    *float64
	PitchY    *float64
	Reason    *string
}

type LineupService struct {
	matchRepo    match.Repository
	positionRepo reference.PositionRepository
	intervalRepo lineup.Repository
	notifier     ChangeNotifier
	idGen        idgen.Generator
	logger       *slog.Logger
	now          func() time.Time
}

func NewLineupService(
	matchRepo match.Repository,
	positionRepo reference.PositionRepository,
	intervalRepo lineup.Repository,
	idGen idgen.Generator,
	logger *slog.Logger,
) *LineupService {
	if logger == nil {
		logger = slog.Default()
	}

	return &LineupService{
		matchRepo:    matchRepo,
		positionRepo: positionRepo,
		intervalRepo: intervalRepo,
		idGen:        idGen,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *LineupService) SetChangeNotifier(notifier ChangeNotifier) {
	s.notifier = notifier
}

// CreateInterval records a stint, restoring a soft-deleted row when the same
// natural key is replayed, so at-least-once delivery never duplicates stints.
func (s *LineupService) CreateInterval(ctx context.Context, principal user.Principal, input CreateIntervalInput) (lineup.Interval, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupService.CreateInterval")
	defer span.End()

	input.MatchID = strings.TrimSpace(input.MatchID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	input.Position = reference.NormalizePosition(input.Position)
	input.Reason = strings.TrimSpace(input.Reason)

	if input.MatchID == "" {
		return lineup.Interval{}, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}
	if input.PlayerID == "" {
		return lineup.Interval{}, fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}
	if err := s.validateStintFields(ctx, input.Position, input.StartMinute, input.EndMinute, input.PitchX, input.PitchY, input.Reason); err != nil {
		return lineup.Interval{}, err
	}
	if _, err := s.requireManagedMatch(ctx, principal, input.MatchID); err != nil {
		return lineup.Interval{}, err
	}

	proposed := lineup.Interval{
		MatchID:     input.MatchID,
		PlayerID:    input.PlayerID,
		Position:    input.Position,
		StartMinute: input.StartMinute,
		EndMinute:   copyFloat(input.EndMinute),
		PitchX:      copyFloat(input.PitchX),
		PitchY:      copyFloat(input.PitchY),
		Reason:      input.Reason,
	}

	if err := s.checkNoOverlap(ctx, proposed, ""); err != nil {
		return lineup.Interval{}, err
	}

	newID, err := s.idGen.NewID()
	if err != nil {
		return lineup.Interval{}, fmt.Errorf("generate interval id: %w", err)
	}
	proposed.ID = newID
	proposed.CreatedAt = s.now().UTC()
	proposed.UpdatedAt = proposed.CreatedAt

	stored, err := s.intervalRepo.CreateOrRestore(ctx, proposed)
	if err != nil {
		return lineup.Interval{}, mapIntervalConflict("create interval", err)
	}

	s.notifyChanged(ctx, input.MatchID, "lineup_interval_created", naturalKeyDedupID(stored))
	return stored, nil
}

func (s *LineupService) UpdateInterval(ctx context.Context, principal user.Principal, matchID, intervalID string, patch UpdateIntervalPatch) (lineup.Interval, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupService.UpdateInterval")
	defer span.End()

	existing, err := s.requireInterval(ctx, principal, matchID, intervalID)
	if err != nil {
		return lineup.Interval{}, err
	}

	updated := existing
	if patch.EndMinute != nil {
		updated.EndMinute = copyFloat(patch.EndMinute)
	}
	if patch.Position != nil {
		updated.Position = reference.NormalizePosition(*patch.Position)
	}
	if patch.PitchX != nil {
		updated.PitchX = copyFloat(patch.PitchX)
	}
	if patch.PitchY != nil {
		updated.PitchY = copyFloat(patch.PitchY)
	}
	if patch.Reason != nil {
		updated.Reason = strings.TrimSpace(*patch.Reason)
	}

	if err := s.validateStintFields(ctx, updated.Position, updated.StartMinute, updated.EndMinute, updated.PitchX, updated.PitchY, updated.Reason); err != nil {
		return lineup.Interval{}, err
	}
	if err := s.checkNoOverlap(ctx, updated, updated.ID); err != nil {
		return lineup.Interval{}, err
	}

	updated.UpdatedAt = s.now().UTC()
	stored, err := s.intervalRepo.Update(ctx, updated)
	if err != nil {
		return lineup.Interval{}, mapIntervalConflict("update interval", err)
	}

	s.notifyChanged(ctx, stored.MatchID, "lineup_interval_updated", naturalKeyDedupID(stored))
	return stored, nil
}

func (s *LineupService) DeleteInterval(ctx context.Context, principal user.Principal, matchID, intervalID string) (lineup.Interval, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupService.DeleteInterval")
	defer span.End()

	existing, err := s.requireInterval(ctx, principal, matchID, intervalID)
	if err != nil {
		return lineup.Interval{}, err
	}

	deleted, err := s.intervalRepo.SoftDelete(ctx, existing.ID, principal.UserID)
	if err != nil {
		return lineup.Interval{}, fmt.Errorf("soft delete interval: %w", err)
	}

	s.notifyChanged(ctx, deleted.MatchID, "lineup_interval_deleted", naturalKeyDedupID(deleted))
	return deleted, nil
}

// GetCurrentLineup returns the intervals active at the given match minute.
// Start is inclusive, end is exclusive.
func (s *LineupService) GetCurrentLineup(ctx context.Context, matchID string, atMinute float64) ([]lineup.Interval, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupService.GetCurrentLineup")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}
	if atMinute < 0 {
		return nil, fmt.Errorf("%w: minute must be >= 0", ErrInvalidInput)
	}
	if err := s.requireMatch(ctx, matchID); err != nil {
		return nil, err
	}

	items, err := s.intervalRepo.ListActiveAt(ctx, matchID, atMinute)
	if err != nil {
		return nil, fmt.Errorf("list active intervals: %w", err)
	}
	return items, nil
}

func (s *LineupService) GetActivePlayersAtTime(ctx context.Context, matchID string, atMinute float64) ([]lineup.ActivePlayer, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupService.GetActivePlayersAtTime")
	defer span.End()

	items, err := s.GetCurrentLineup(ctx, matchID, atMinute)
	if err != nil {
		return nil, err
	}

	out := make([]lineup.ActivePlayer, 0, len(items))
	for _, item := range items {
		out = append(out, lineup.ActivePlayer{PlayerID: item.PlayerID, Position: item.Position})
	}
	return out, nil
}

func (s *LineupService) requireMatch(ctx context.Context, matchID string) error {
	_, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return fmt.Errorf("get match by id: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return nil
}

func (s *LineupService) requireManagedMatch(ctx context.Context, principal user.Principal, matchID string) (match.Match, error) {
	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match by id: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	if !principal.CanManage(item.OwnerUserID) {
		return match.Match{}, fmt.Errorf("%w: caller cannot manage match=%s", ErrForbidden, matchID)
	}
	return item, nil
}

func (s *LineupService) requireInterval(ctx context.Context, principal user.Principal, matchID, intervalID string) (lineup.Interval, error) {
	matchID = strings.TrimSpace(matchID)
	intervalID = strings.TrimSpace(intervalID)
	if matchID == "" || intervalID == "" {
		return lineup.Interval{}, fmt.Errorf("%w: match_id and interval_id are required", ErrInvalidInput)
	}
	if _, err := s.requireManagedMatch(ctx, principal, matchID); err != nil {
		return lineup.Interval{}, err
	}

	existing, exists, err := s.intervalRepo.GetByID(ctx, intervalID)
	if err != nil {
		return lineup.Interval{}, fmt.Errorf("get interval by id: %w", err)
	}
	if !exists || existing.Deleted() || existing.MatchID != matchID {
		return lineup.Interval{}, fmt.Errorf("%w: interval=%s", ErrNotFound, intervalID)
	}
	return existing, nil
}

func (s *LineupService) validateStintFields(ctx context.Context, position string, startMinute float64, endMinute, pitchX, pitchY *float64, reason string) error {
	if position == "" {
		return fmt.Errorf("%w: position is required", ErrInvalidInput)
	}
	valid, err := s.positionRepo.IsValidPosition(ctx, position)
	if err != nil {
		return fmt.Errorf("check position code: %w", err)
	}
	if !valid {
		return fmt.Errorf("%w: unrecognized position code %s", ErrInvalidInput, position)
	}
	if startMinute < 0 || startMinute > lineup.MaxMinute {
		return fmt.Errorf("%w: start minute must be within [0,%v]", ErrInvalidInput, lineup.MaxMinute)
	}
	if endMinute != nil && *endMinute <= startMinute {
		return fmt.Errorf("%w: end minute must be after start minute", ErrInvalidInput)
	}
	if endMinute != nil && *endMinute > lineup.MaxMinute {
		return fmt.Errorf("%w: end minute must be within [0,%v]", ErrInvalidInput, lineup.MaxMinute)
	}
	if err := validatePitchCoordinate("pitch_x", pitchX); err != nil {
		return err
	}
	if err := validatePitchCoordinate("pitch_y", pitchY); err != nil {
		return err
	}
	if len(reason) > lineup.MaxReasonLength {
		return fmt.Errorf("%w: reason cannot exceed %d characters", ErrInvalidInput, lineup.MaxReasonLength)
	}
	return nil
}

// checkNoOverlap is the read-side guard; the repository constraints re-check
// under the write transaction, so a racing writer still loses with Conflict.
func (s *LineupService) checkNoOverlap(ctx context.Context, proposed lineup.Interval, excludeID string) error {
	existing, err := s.intervalRepo.ListByPlayer(ctx, proposed.MatchID, proposed.PlayerID)
	if err != nil {
		return fmt.Errorf("list intervals by player: %w", err)
	}

	for _, other := range existing {
		if other.Deleted() || other.ID == excludeID {
			continue
		}
		if other.SameNaturalKey(proposed) && excludeID == "" {
			return fmt.Errorf("%w: interval already exists at start minute %.2f", ErrConflict, proposed.StartMinute)
		}
		if other.Overlaps(proposed) {
			return fmt.Errorf("%w: interval overlaps existing stint of player %s", ErrConflict, proposed.PlayerID)
		}
		if proposed.Open() && other.Open() {
			return fmt.Errorf("%w: player %s already has an open interval", ErrConflict, proposed.PlayerID)
		}
	}
	return nil
}

func (s *LineupService) notifyChanged(ctx context.Context, matchID, kind, dedupID string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyMatchChanged(ctx, matchID, kind, dedupID); err != nil {
		s.logger.WarnContext(ctx, "sync feed notify failed", "match_id", matchID, "kind", kind, "error", err)
	}
}

func mapIntervalConflict(op string, err error) error {
	switch {
	case errors.Is(err, lineup.ErrOverlap),
		errors.Is(err, lineup.ErrOpenIntervalExists),
		errors.Is(err, lineup.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func naturalKeyDedupID(item lineup.Interval) string {
	return fmt.Sprintf("%s:%s:%.4f", item.MatchID, item.PlayerID, item.StartMinute)
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func validatePitchCoordinate(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if *v < 0 || *v > 100 {
		return fmt.Errorf("%w: %s must be within [0,100]", ErrInvalidInput, name)
	}
	return nil
}
