package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/fieldside/matchlog/internal/domain/lineup"
	"github.com/fieldside/matchlog/internal/domain/match"
	"github.com/fieldside/matchlog/internal/domain/period"
	"github.com/fieldside/matchlog/internal/domain/timeline"
	"github.com/fieldside/matchlog/internal/platform/cache"
)

const liveStateRecentEvents = 10

type LiveSummary struct {
	TotalGoals  int
	LastUpdated time.Time
}

type LiveState struct {
	Match         match.Match
	CurrentMinute float64
	ActivePeriod  *period.Period
	Lineup        []lineup.Interval
	RecentEvents  []timeline.Event
	Summary       LiveSummary
}

type TeamSummary struct {
	TeamID   string
	TeamName string
	Goals    int
	Events   int
}

type MatchDetails struct {
	Match         match.Match
	Periods       []period.Period
	Lineups       []lineup.Interval
	Events        []timeline.Event
	TeamSummaries []TeamSummary
}

// TimelineEntry is one timeline event enriched with team identity.
type TimelineEntry struct {
	Event    timeline.Event
	TeamName string
}

// LiveStateService composes lineup, period and event data into read-only
// dashboard views. A match with no recorded data yields empty collections.
type LiveStateService struct {
	matchRepo    match.Repository
	intervalRepo lineup.Repository
	periodRepo   period.Repository
	timelineRepo timeline.Repository
	cache        *cache.Store
	now          func() time.Time
}

func NewLiveStateService(
	matchRepo match.Repository,
	intervalRepo lineup.Repository,
	periodRepo period.Repository,
	timelineRepo timeline.Repository,
	cacheStore *cache.Store,
) *LiveStateService {
	return &LiveStateService{
		matchRepo:    matchRepo,
		intervalRepo: intervalRepo,
		periodRepo:   periodRepo,
		timelineRepo: timelineRepo,
		cache:        cacheStore,
		now:          time.Now,
	}
}

func (s *LiveStateService) GetLiveState(ctx context.Context, matchID string) (LiveState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveStateService.GetLiveState")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return LiveState{}, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}

	if s.cache == nil {
		return s.loadLiveState(ctx, matchID)
	}

	value, err := s.cache.GetOrLoad(ctx, "live_state:"+matchID, func(ctx context.Context) (any, error) {
		return s.loadLiveState(ctx, matchID)
	})
	if err != nil {
		return LiveState{}, err
	}
	state, ok := value.(LiveState)
	if !ok {
		return s.loadLiveState(ctx, matchID)
	}
	return state, nil
}

func (s *LiveStateService) loadLiveState(ctx context.Context, matchID string) (LiveState, error) {
	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return LiveState{}, fmt.Errorf("get match by id: %w", err)
	}
	if !exists {
		return LiveState{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	periods, err := s.periodRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return LiveState{}, fmt.Errorf("list periods: %w", err)
	}

	now := s.now().UTC()
	currentMinute := period.ElapsedMinutes(periods, now)

	active, hasActive, err := s.periodRepo.FindActive(ctx, matchID)
	if err != nil {
		return LiveState{}, fmt.Errorf("find active period: %w", err)
	}

	activeLineup, err := s.intervalRepo.ListActiveAt(ctx, matchID, currentMinute)
	if err != nil {
		return LiveState{}, fmt.Errorf("list active intervals: %w", err)
	}

	recent, err := s.timelineRepo.ListRecent(ctx, matchID, liveStateRecentEvents)
	if err != nil {
		return LiveState{}, fmt.Errorf("list recent events: %w", err)
	}

	all, err := s.timelineRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return LiveState{}, fmt.Errorf("list events: %w", err)
	}

	state := LiveState{
		Match:         item,
		CurrentMinute: currentMinute,
		Lineup:        activeLineup,
		RecentEvents:  recent,
		Summary:       buildLiveSummary(all, activeLineup),
	}
	if hasActive {
		state.ActivePeriod = &active
	}
	return state, nil
}

// GetFullDetails reconstructs the whole match record; the four repository
// reads are independent, so they fan out concurrently.
func (s *LiveStateService) GetFullDetails(ctx context.Context, matchID string) (MatchDetails, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveStateService.GetFullDetails")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return MatchDetails{}, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return MatchDetails{}, fmt.Errorf("get match by id: %w", err)
	}
	if !exists {
		return MatchDetails{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	var (
		periods []period.Period
		lineups []lineup.Interval
		events  []timeline.Event
	)

	group := pool.New().WithContext(ctx).WithCancelOnError()
	group.Go(func(ctx context.Context) error {
		var err error
		periods, err = s.periodRepo.ListByMatch(ctx, matchID)
		if err != nil {
			return fmt.Errorf("list periods: %w", err)
		}
		return nil
	})
	group.Go(func(ctx context.Context) error {
		var err error
		lineups, err = s.intervalRepo.ListByMatch(ctx, matchID)
		if err != nil {
			return fmt.Errorf("list intervals: %w", err)
		}
		return nil
	})
	group.Go(func(ctx context.Context) error {
		var err error
		events, err = s.timelineRepo.ListByMatch(ctx, matchID)
		if err != nil {
			return fmt.Errorf("list events: %w", err)
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		return MatchDetails{}, err
	}

	return MatchDetails{
		Match:         item,
		Periods:       periods,
		Lineups:       lineups,
		Events:        events,
		TeamSummaries: buildTeamSummaries(item, events),
	}, nil
}

func (s *LiveStateService) ListMatches(ctx context.Context) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveStateService.ListMatches")
	defer span.End()

	items, err := s.matchRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return items, nil
}

func (s *LiveStateService) GetTimeline(ctx context.Context, matchID string) ([]TimelineEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveStateService.GetTimeline")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("get match by id: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	events, err := s.timelineRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Minute < events[j].Minute
	})

	out := make([]TimelineEntry, 0, len(events))
	for _, event := range events {
		out = append(out, TimelineEntry{
			Event:    event,
			TeamName: item.TeamName(event.TeamID),
		})
	}
	return out, nil
}

func buildLiveSummary(events []timeline.Event, lineups []lineup.Interval) LiveSummary {
	summary := LiveSummary{}
	for _, event := range events {
		if event.IsGoal() {
			summary.TotalGoals++
		}
		if event.CreatedAt.After(summary.LastUpdated) {
			summary.LastUpdated = event.CreatedAt
		}
	}
	for _, item := range lineups {
		if item.UpdatedAt.After(summary.LastUpdated) {
			summary.LastUpdated = item.UpdatedAt
		}
	}
	return summary
}

func buildTeamSummaries(item match.Match, events []timeline.Event) []TeamSummary {
	byTeam := map[string]*TeamSummary{}
	order := make([]string, 0, 2)
	for _, teamID := range []string{item.HomeTeamID, item.AwayTeamID} {
		if teamID == "" {
			continue
		}
		byTeam[teamID] = &TeamSummary{TeamID: teamID, TeamName: item.TeamName(teamID)}
		order = append(order, teamID)
	}

	for _, event := range events {
		summary, ok := byTeam[event.TeamID]
		if !ok {
			if event.TeamID == "" {
				continue
			}
			summary = &TeamSummary{TeamID: event.TeamID, TeamName: item.TeamName(event.TeamID)}
			byTeam[event.TeamID] = summary
			order = append(order, event.TeamID)
		}
		summary.Events++
		if event.IsGoal() {
			summary.Goals++
		}
	}

	out := make([]TeamSummary, 0, len(order))
	for _, teamID := range order {
		out = append(out, *byTeam[teamID])
	}
	return out
}
