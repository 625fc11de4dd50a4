package httpapi

import (
	"time"

	"github.com/fieldside/matchlog/internal/domain/lineup"
	"github.com/fieldside/matchlog/internal/domain/match"
	"github.com/fieldside/matchlog/internal/domain/period"
	"github.com/fieldside/matchlog/internal/domain/timeline"
	"github.com/fieldside/matchlog/internal/usecase"
)

type matchDTO struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	HomeTeamID  string    `json:"home_team_id"`
	AwayTeamID  string    `json:"away_team_id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	Competition string    `json:"competition"`
	Venue       string    `json:"venue"`
	KickoffAt   time.Time `json:"kickoff_at"`
	Status      string    `json:"status"`
}

type intervalDTO struct {
	ID          string    `json:"id"`
	MatchID     string    `json:"match_id"`
	PlayerID    string    `json:"player_id"`
	Position    string    `json:"position"`
	StartMinute float64   `json:"start_minute"`
	EndMinute   *float64  `json:"end_minute"`
	PitchX      *float64  `json:"pitch_x,omitempty"`
	PitchY      *float64  `json:"pitch_y,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type activePlayerDTO struct {
	PlayerID string `json:"player_id"`
	Position string `json:"position"`
}

type periodDTO struct {
	ID              string     `json:"id"`
	MatchID         string     `json:"match_id"`
	Number          int        `json:"number"`
	Type            string     `json:"type"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationSeconds *int       `json:"duration_seconds"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type eventDTO struct {
	ID              string    `json:"id"`
	MatchID         string    `json:"match_id"`
	PlayerID        string    `json:"player_id,omitempty"`
	RelatedPlayerID string    `json:"related_player_id,omitempty"`
	TeamID          string    `json:"team_id,omitempty"`
	Type            string    `json:"type"`
	Minute          float64   `json:"minute"`
	Detail          string    `json:"detail,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type liveSummaryDTO struct {
	TotalGoals  int       `json:"total_goals"`
	LastUpdated time.Time `json:"last_updated"`
}

type liveStateDTO struct {
	Match         matchDTO       `json:"match"`
	CurrentMinute float64        `json:"current_minute"`
	ActivePeriod  *periodDTO     `json:"active_period"`
	Lineup        []intervalDTO  `json:"lineup"`
	RecentEvents  []eventDTO     `json:"recent_events"`
	Summary       liveSummaryDTO `json:"summary"`
}

type teamSummaryDTO struct {
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
	Goals    int    `json:"goals"`
	Events   int    `json:"events"`
}

type matchDetailsDTO struct {
	Match         matchDTO         `json:"match"`
	Periods       []periodDTO      `json:"periods"`
	Lineups       []intervalDTO    `json:"lineups"`
	Events        []eventDTO       `json:"events"`
	TeamSummaries []teamSummaryDTO `json:"team_summaries"`
}

type timelineEntryDTO struct {
	eventDTO
	TeamName string `json:"team_name,omitempty"`
}

type substitutionResultDTO struct {
	OffInterval       intervalDTO `json:"off_interval"`
	OnInterval        intervalDTO `json:"on_interval"`
	TimelineEvents    []eventDTO  `json:"timeline_events"`
	ZeroDurationStint bool        `json:"zero_duration_stint"`
}

type importRowDTO struct {
	Index    int    `json:"index"`
	PlayerID string `json:"player_id"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

type importResultDTO struct {
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Rows      []importRowDTO `json:"rows"`
}

func matchToDTO(item match.Match) matchDTO {
	return matchDTO{
		ID:          item.ID,
		OwnerUserID: item.OwnerUserID,
		HomeTeamID:  item.HomeTeamID,
		AwayTeamID:  item.AwayTeamID,
		HomeTeam:    item.HomeTeam,
		AwayTeam:    item.AwayTeam,
		Competition: item.Competition,
		Venue:       item.Venue,
		KickoffAt:   item.KickoffAt,
		Status:      item.Status,
	}
}

func intervalToDTO(item lineup.Interval) intervalDTO {
	return intervalDTO{
		ID:          item.ID,
		MatchID:     item.MatchID,
		PlayerID:    item.PlayerID,
		Position:    item.Position,
		StartMinute: item.StartMinute,
		EndMinute:   item.EndMinute,
		PitchX:      item.PitchX,
		PitchY:      item.PitchY,
		Reason:      item.Reason,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func intervalsToDTO(items []lineup.Interval) []intervalDTO {
	out := make([]intervalDTO, 0, len(items))
	for _, item := range items {
		out = append(out, intervalToDTO(item))
	}
	return out
}

func periodToDTO(item period.Period) periodDTO {
	return periodDTO{
		ID:              item.ID,
		MatchID:         item.MatchID,
		Number:          item.Number,
		Type:            item.Type,
		StartedAt:       item.StartedAt,
		EndedAt:         item.EndedAt,
		DurationSeconds: item.DurationSeconds,
		Notes:           item.Notes,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

func eventToDTO(item timeline.Event) eventDTO {
	return eventDTO{
		ID:              item.ID,
		MatchID:         item.MatchID,
		PlayerID:        item.PlayerID,
		RelatedPlayerID: item.RelatedPlayerID,
		TeamID:          item.TeamID,
		Type:            item.Type,
		Minute:          item.Minute,
		Detail:          item.Detail,
		CreatedAt:       item.CreatedAt,
	}
}

func eventsToDTO(items []timeline.Event) []eventDTO {
	out := make([]eventDTO, 0, len(items))
	for _, item := range items {
		out = append(out, eventToDTO(item))
	}
	return out
}

func liveStateToDTO(state usecase.LiveState) liveStateDTO {
	dto := liveStateDTO{
		Match:         matchToDTO(state.Match),
		CurrentMinute: state.CurrentMinute,
		Lineup:        intervalsToDTO(state.Lineup),
		RecentEvents:  eventsToDTO(state.RecentEvents),
		Summary: liveSummaryDTO{
			TotalGoals:  state.Summary.TotalGoals,
			LastUpdated: state.Summary.LastUpdated,
		},
	}
	if state.ActivePeriod != nil {
		converted := periodToDTO(*state.ActivePeriod)
		dto.ActivePeriod = &converted
	}
	return dto
}

func matchDetailsToDTO(details usecase.MatchDetails) matchDetailsDTO {
	periods := make([]periodDTO, 0, len(details.Periods))
	for _, item := range details.Periods {
		periods = append(periods, periodToDTO(item))
	}
	summaries := make([]teamSummaryDTO, 0, len(details.TeamSummaries))
	for _, item := range details.TeamSummaries {
		summaries = append(summaries, teamSummaryDTO{
			TeamID:   item.TeamID,
			TeamName: item.TeamName,
			Goals:    item.Goals,
			Events:   item.Events,
		})
	}

	return matchDetailsDTO{
		Match:         matchToDTO(details.Match),
		Periods:       periods,
		Lineups:       intervalsToDTO(details.Lineups),
		Events:        eventsToDTO(details.Events),
		TeamSummaries: summaries,
	}
}

func importResultToDTO(result usecase.LineupImportResult) importResultDTO {
	rows := make([]importRowDTO, 0, len(result.Rows))
	for _, row := range result.Rows {
		rows = append(rows, importRowDTO{
			Index:    row.Index,
			PlayerID: row.PlayerID,
			Status:   row.Status,
			Error:    row.Error,
		})
	}

	return importResultDTO{
		Total:     result.Total,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Rows:      rows,
	}
}

type createIntervalRequest struct {
	PlayerID    string   `json:"player_id" validate:"required"`
	Position    string   `json:"position" validate:"required"`
	StartMinute *float64 `json:"start_minute" validate:"required,gte=0"`
	EndMinute   *float64 `json:"end_minute" validate:"omitempty,gte=0"`
	PitchX      *float64 `json:"pitch_x" validate:"omitempty,gte=0,lte=100"`
	PitchY      *float64 `json:"pitch_y" validate:"omitempty,gte=0,lte=100"`
	Reason      string   `json:"reason" validate:"omitempty,max=100"`
}

type updateIntervalRequest struct {
	EndMinute *float64 `json:"end_minute" validate:"omitempty,gte=0"`
	Position  *string  `json:"position" validate:"omitempty,min=1"`
	PitchX    *float64 `json:"pitch_x" validate:"omitempty,gte=0,lte=100"`
	PitchY    *float64 `json:"pitch_y" validate:"omitempty,gte=0,lte=100"`
	Reason    *string  `json:"reason" validate:"omitempty,max=100"`
}

type importLineupEntry struct {
	PlayerID    string   `json:"player_id" validate:"required"`
	Position    string   `json:"position" validate:"required"`
	StartMinute *float64 `json:"start_minute" validate:"required,gte=0"`
	EndMinute   *float64 `json:"end_minute" validate:"omitempty,gte=0"`
	PitchX      *float64 `json:"pitch_x" validate:"omitempty,gte=0,lte=100"`
	PitchY      *float64 `json:"pitch_y" validate:"omitempty,gte=0,lte=100"`
	Reason      string   `json:"reason" validate:"omitempty,max=100"`
}

type importLineupRequest struct {
	Entries []importLineupEntry `json:"entries" validate:"required,min=1,max=500,dive"`
}

type substituteRequest struct {
	PlayerOffID string   `json:"player_off_id" validate:"required"`
	PlayerOnID  string   `json:"player_on_id" validate:"required"`
	Position    string   `json:"position" validate:"required"`
	AtMinute    *float64 `json:"at_minute" validate:"required,gte=0"`
	Reason      string   `json:"reason" validate:"omitempty,max=100"`
}

type startPeriodRequest struct {
	Type  string `json:"type" validate:"required"`
	Notes string `json:"notes" validate:"omitempty,max=500"`
}

type endPeriodRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type importPeriodRequest struct {
	Number          int        `json:"number" validate:"required,min=1"`
	Type            string     `json:"type" validate:"required"`
	StartedAt       time.Time  `json:"started_at" validate:"required"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationSeconds *int       `json:"duration_seconds" validate:"omitempty,gte=0,lte=7200"`
}
