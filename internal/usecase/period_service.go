package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fieldside/matchlog/internal/domain/match"
	"github.com/fieldside/matchlog/internal/domain/period"
	"github.com/fieldside/matchlog/internal/domain/user"
	idgen "github.com/fieldside/matchlog/internal/platform/id"
)

type ImportPeriodInput struct {
	MatchID         string
	Number          int
	Type            string
	StartedAt       time.Time
	EndedAt         *time.Time
	DurationSeconds *int
}

type PeriodService struct {
	matchRepo  match.Repository
	periodRepo period.Repository
	notifier   ChangeNotifier
	idGen      idgen.Generator
	logger     *slog.Logger
	now        func() time.Time
}

func NewPeriodService(
	matchRepo match.Repository,
	periodRepo period.Repository,
	idGen idgen.Generator,
	logger *slog.Logger,
) *PeriodService {
	if logger == nil {
		logger = slog.Default()
	}

	return &PeriodService{
		matchRepo:  matchRepo,
		periodRepo: periodRepo,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *PeriodService) SetChangeNotifier(notifier ChangeNotifier) {
	s.notifier = notifier
}

// StartPeriod opens the next period of the given type. Only one period may be
// active per match across all types; the repository constraint backstops the
// read-side check so racing devices cannot both win.
func (s *PeriodService) StartPeriod(ctx context.Context, principal user.Principal, matchID, periodType, notes string) (period.Period, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PeriodService.StartPeriod")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	periodType = period.NormalizeType(periodType)
	notes = strings.TrimSpace(notes)

	if matchID == "" {
		return period.Period{}, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}
	if !period.ValidType(periodType) {
		return period.Period{}, fmt.Errorf("%w: unknown period type %s", ErrInvalidInput, periodType)
	}
	if len(notes) > period.MaxNotesLength {
		return period.Period{}, fmt.Errorf("%w: notes cannot exceed %d characters", ErrInvalidInput, period.MaxNotesLength)
	}
	if err := s.requireManagedMatch(ctx, principal, matchID); err != nil {
		return period.Period{}, err
	}

	if _, active, err := s.periodRepo.FindActive(ctx, matchID); err != nil {
		return period.Period{}, fmt.Errorf("find active period: %w", err)
	} else if active {
		return period.Period{}, fmt.Errorf("%w: another period is already active", ErrConflict)
	}

	existing, err := s.periodRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return period.Period{}, fmt.Errorf("list periods: %w", err)
	}
	number := 1
	for _, p := range existing {
		if p.Type == periodType {
			number++
		}
	}

	newID, err := s.idGen.NewID()
	if err != nil {
		return period.Period{}, fmt.Errorf("generate period id: %w", err)
	}

	now := s.now().UTC()
	item := period.Period{
		ID:        newID,
		MatchID:   matchID,
		Number:    number,
		Type:      periodType,
		StartedAt: now,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	stored, err := s.periodRepo.Insert(ctx, item)
	if err != nil {
		switch {
		case errors.Is(err, period.ErrActivePeriodExists):
			return period.Period{}, fmt.Errorf("%w: another period is already active", ErrConflict)
		case errors.Is(err, period.ErrDuplicate):
			return period.Period{}, fmt.Errorf("%w: period %s %d already recorded", ErrConflict, periodType, number)
		default:
			return period.Period{}, fmt.Errorf("insert period: %w", err)
		}
	}

	s.notifyChanged(ctx, matchID, "period_started", periodDedupID(stored))
	return stored, nil
}

func (s *PeriodService) EndPeriod(ctx context.Context, principal user.Principal, matchID, periodID, reason string) (period.Period, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PeriodService.EndPeriod")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	periodID = strings.TrimSpace(periodID)
	reason = strings.TrimSpace(reason)

	if matchID == "" || periodID == "" {
		return period.Period{}, fmt.Errorf("%w: match_id and period_id are required", ErrInvalidInput)
	}
	if len(reason) > period.MaxNotesLength {
		return period.Period{}, fmt.Errorf("%w: reason cannot exceed %d characters", ErrInvalidInput, period.MaxNotesLength)
	}
	if err := s.requireManagedMatch(ctx, principal, matchID); err != nil {
		return period.Period{}, err
	}

	item, exists, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return period.Period{}, fmt.Errorf("get period by id: %w", err)
	}
	if !exists || item.MatchID != matchID {
		return period.Period{}, fmt.Errorf("%w: period=%s", ErrNotFound, periodID)
	}
	if !item.Active() {
		return period.Period{}, fmt.Errorf("%w: period already ended", ErrInvalidState)
	}

	now := s.now().UTC()
	// Derived duration stays within [0, MaxDurationSeconds]; a period left
	// open past the cap (forgotten timer) still closes.
	duration := int(now.Sub(item.StartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}
	if duration > period.MaxDurationSeconds {
		duration = period.MaxDurationSeconds
	}
	item.EndedAt = &now
	item.DurationSeconds = &duration
	if reason != "" {
		item.Notes = reason
	}
	item.UpdatedAt = now

	stored, err := s.periodRepo.Update(ctx, item)
	if err != nil {
		return period.Period{}, fmt.Errorf("update period: %w", err)
	}

	s.notifyChanged(ctx, matchID, "period_ended", periodDedupID(stored))
	return stored, nil
}

// ImportPeriod upserts history recorded while offline. Closed periods may land
// out of real-time order; importing an open period still trips the
// one-active-period rule, same as StartPeriod.
func (s *PeriodService) ImportPeriod(ctx context.Context, principal user.Principal, input ImportPeriodInput) (period.Period, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PeriodService.ImportPeriod")
	defer span.End()

	input.MatchID = strings.TrimSpace(input.MatchID)
	input.Type = period.NormalizeType(input.Type)

	if input.MatchID == "" {
		return period.Period{}, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}
	if !period.ValidType(input.Type) {
		return period.Period{}, fmt.Errorf("%w: unknown period type %s", ErrInvalidInput, input.Type)
	}
	if input.Number < 1 {
		return period.Period{}, fmt.Errorf("%w: period number must be >= 1", ErrInvalidInput)
	}
	if input.StartedAt.IsZero() {
		return period.Period{}, fmt.Errorf("%w: started_at is required", ErrInvalidInput)
	}
	if input.EndedAt != nil && !input.EndedAt.After(input.StartedAt) {
		return period.Period{}, fmt.Errorf("%w: ended_at must be after started_at", ErrInvalidInput)
	}

	duration := input.DurationSeconds
	if duration == nil && input.EndedAt != nil {
		derived := int(input.EndedAt.Sub(input.StartedAt).Seconds())
		duration = &derived
	}
	if duration != nil && (*duration < 0 || *duration > period.MaxDurationSeconds) {
		return period.Period{}, fmt.Errorf("%w: duration must be within [0,%d] seconds", ErrInvalidInput, period.MaxDurationSeconds)
	}
	if err := s.requireManagedMatch(ctx, principal, input.MatchID); err != nil {
		return period.Period{}, err
	}

	newID, err := s.idGen.NewID()
	if err != nil {
		return period.Period{}, fmt.Errorf("generate period id: %w", err)
	}

	now := s.now().UTC()
	item := period.Period{
		ID:              newID,
		MatchID:         input.MatchID,
		Number:          input.Number,
		Type:            input.Type,
		StartedAt:       input.StartedAt.UTC(),
		DurationSeconds: duration,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.EndedAt != nil {
		ended := input.EndedAt.UTC()
		item.EndedAt = &ended
	}

	stored, err := s.periodRepo.Upsert(ctx, item)
	if err != nil {
		if errors.Is(err, period.ErrActivePeriodExists) {
			return period.Period{}, fmt.Errorf("%w: another period is already active", ErrConflict)
		}
		return period.Period{}, fmt.Errorf("upsert period: %w", err)
	}

	s.notifyChanged(ctx, input.MatchID, "period_imported", periodDedupID(stored))
	return stored, nil
}

func (s *PeriodService) requireManagedMatch(ctx context.Context, principal user.Principal, matchID string) error {
	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return fmt.Errorf("get match by id: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	if !principal.CanManage(item.OwnerUserID) {
		return fmt.Errorf("%w: caller cannot manage match=%s", ErrForbidden, matchID)
	}
	return nil
}

func (s *PeriodService) notifyChanged(ctx context.Context, matchID, kind, dedupID string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyMatchChanged(ctx, matchID, kind, dedupID); err != nil {
		s.logger.WarnContext(ctx, "sync feed notify failed", "match_id", matchID, "kind", kind, "error", err)
	}
}

func periodDedupID(p period.Period) string {
	return fmt.Sprintf("%s:%s:%d", p.MatchID, p.Type, p.Number)
}
