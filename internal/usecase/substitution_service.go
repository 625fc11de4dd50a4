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
	"github.com/fieldside/matchlog/internal/domain/timeline"
	"github.com/fieldside/matchlog/internal/domain/user"
	idgen "github.com/fieldside/matchlog/internal/platform/id"
)

type SubstituteInput struct {
	MatchID     string
	PlayerOffID string
	PlayerOnID  string
	Position    string
	AtMinute    float64
	Reason      string
}

// SubstitutionResult carries all four effects of one substitution.
// ZeroDurationStint flags an off-player whose stint started and ended at the
// same minute, which is legal but usually worth surfacing to the operator.
type SubstitutionResult struct {
	OffInterval       lineup.Interval
	OnInterval        lineup.Interval
	TimelineEvents    []timeline.Event
	ZeroDurationStint bool
}

// SubstitutionService is the only sanctioned way to move one player off while
// moving another on. Composing UpdateInterval+CreateInterval by hand cannot
// guarantee the atomic handoff under concurrent requests for the same player.
type SubstitutionService struct {
	matchRepo    match.Repository
	positionRepo reference.PositionRepository
	intervalRepo lineup.Repository
	notifier     ChangeNotifier
	idGen        idgen.Generator
	logger       *slog.Logger
	now          func() time.Time
}

func NewSubstitutionService(
	matchRepo match.Repository,
	positionRepo reference.PositionRepository,
	intervalRepo lineup.Repository,
	idGen idgen.Generator,
	logger *slog.Logger,
) *SubstitutionService {
	if logger == nil {
		logger = slog.Default()
	}

	return &SubstitutionService{
		matchRepo:    matchRepo,
		positionRepo: positionRepo,
		intervalRepo: intervalRepo,
		idGen:        idGen,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *SubstitutionService) SetChangeNotifier(notifier ChangeNotifier) {
	s.notifier = notifier
}

func (s *SubstitutionService) Substitute(ctx context.Context, principal user.Principal, input SubstituteInput) (SubstitutionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubstitutionService.Substitute")
	defer span.End()

	input.MatchID = strings.TrimSpace(input.MatchID)
	input.PlayerOffID = strings.TrimSpace(input.PlayerOffID)
	input.PlayerOnID = strings.TrimSpace(input.PlayerOnID)
	input.Position = reference.NormalizePosition(input.Position)
	input.Reason = strings.TrimSpace(input.Reason)

	if input.MatchID == "" {
		return SubstitutionResult{}, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}
	if input.PlayerOffID == "" || input.PlayerOnID == "" {
		return SubstitutionResult{}, fmt.Errorf("%w: player_off_id and player_on_id are required", ErrInvalidInput)
	}
	if input.PlayerOffID == input.PlayerOnID {
		return SubstitutionResult{}, fmt.Errorf("%w: players must be different", ErrInvalidInput)
	}
	if input.AtMinute < 0 || input.AtMinute > lineup.MaxMinute {
		return SubstitutionResult{}, fmt.Errorf("%w: minute must be within [0,%v]", ErrInvalidInput, lineup.MaxMinute)
	}
	if len(input.Reason) > lineup.MaxReasonLength {
		return SubstitutionResult{}, fmt.Errorf("%w: reason cannot exceed %d characters", ErrInvalidInput, lineup.MaxReasonLength)
	}

	valid, err := s.positionRepo.IsValidPosition(ctx, input.Position)
	if err != nil {
		return SubstitutionResult{}, fmt.Errorf("check position code: %w", err)
	}
	if !valid {
		return SubstitutionResult{}, fmt.Errorf("%w: unrecognized position code %s", ErrInvalidInput, input.Position)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		return SubstitutionResult{}, fmt.Errorf("get match by id: %w", err)
	}
	if !exists {
		return SubstitutionResult{}, fmt.Errorf("%w: match=%s", ErrNotFound, input.MatchID)
	}
	if !principal.CanManage(item.OwnerUserID) {
		return SubstitutionResult{}, fmt.Errorf("%w: caller cannot manage match=%s", ErrForbidden, input.MatchID)
	}

	open, found, err := s.intervalRepo.FindOpenByPlayer(ctx, input.MatchID, input.PlayerOffID)
	if err != nil {
		return SubstitutionResult{}, fmt.Errorf("find open interval: %w", err)
	}
	if !found {
		return SubstitutionResult{}, fmt.Errorf("%w: player not on pitch: %s", ErrInvalidState, input.PlayerOffID)
	}
	if input.AtMinute < open.StartMinute {
		return SubstitutionResult{}, fmt.Errorf("%w: substitution minute precedes stint start", ErrInvalidInput)
	}

	now := s.now().UTC()

	off := open
	end := input.AtMinute
	off.EndMinute = &end
	off.Reason = input.Reason
	off.UpdatedAt = now

	onID, err := s.idGen.NewID()
	if err != nil {
		return SubstitutionResult{}, fmt.Errorf("generate interval id: %w", err)
	}
	on := lineup.Interval{
		ID:          onID,
		MatchID:     input.MatchID,
		PlayerID:    input.PlayerOnID,
		Position:    input.Position,
		StartMinute: input.AtMinute,
		Reason:      input.Reason,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	events, err := s.buildMarkers(input, now)
	if err != nil {
		return SubstitutionResult{}, err
	}

	storedOff, storedOn, err := s.intervalRepo.ApplySubstitution(ctx, off, on, events)
	if err != nil {
		switch {
		case errors.Is(err, lineup.ErrOpenIntervalGone):
			return SubstitutionResult{}, fmt.Errorf("%w: player not on pitch: %s", ErrConflict, input.PlayerOffID)
		case errors.Is(err, lineup.ErrOverlap), errors.Is(err, lineup.ErrOpenIntervalExists), errors.Is(err, lineup.ErrDuplicate):
			return SubstitutionResult{}, fmt.Errorf("%w: %v", ErrConflict, err)
		default:
			return SubstitutionResult{}, fmt.Errorf("apply substitution: %w", err)
		}
	}

	s.notifyChanged(ctx, input.MatchID, naturalKeyDedupID(storedOn))

	return SubstitutionResult{
		OffInterval:       storedOff,
		OnInterval:        storedOn,
		TimelineEvents:    events,
		ZeroDurationStint: input.AtMinute == open.StartMinute,
	}, nil
}

func (s *SubstitutionService) buildMarkers(input SubstituteInput, now time.Time) ([]timeline.Event, error) {
	offEventID, err := s.idGen.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate event id: %w", err)
	}
	onEventID, err := s.idGen.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate event id: %w", err)
	}

	return []timeline.Event{
		{
			ID:              offEventID,
			MatchID:         input.MatchID,
			PlayerID:        input.PlayerOffID,
			RelatedPlayerID: input.PlayerOnID,
			Type:            timeline.EventSubstitutionOff,
			Minute:          input.AtMinute,
			Detail:          input.Reason,
			CreatedAt:       now,
		},
		{
			ID:              onEventID,
			MatchID:         input.MatchID,
			PlayerID:        input.PlayerOnID,
			RelatedPlayerID: input.PlayerOffID,
			Type:            timeline.EventSubstitutionOn,
			Minute:          input.AtMinute,
			Detail:          input.Reason,
			CreatedAt:       now,
		},
	}, nil
}

func (s *SubstitutionService) notifyChanged(ctx context.Context, matchID, dedupID string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyMatchChanged(ctx, matchID, "substitution", dedupID); err != nil {
		s.logger.WarnContext(ctx, "sync feed notify failed", "match_id", matchID, "kind", "substitution", "error", err)
	}
}
