package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/fieldside/matchlog/internal/usecase"
)

func (h *Handler) GetLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLineup")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	minute, err := parseMinuteQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	intervals, err := h.lineupService.GetCurrentLineup(ctx, matchID, minute)
	if err != nil {
		h.logger.WarnContext(ctx, "get lineup failed", "match_id", matchID, "minute", minute, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, intervalsToDTO(intervals))
}

func (h *Handler) GetActivePlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetActivePlayers")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	minute, err := parseMinuteQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	players, err := h.lineupService.GetActivePlayersAtTime(ctx, matchID, minute)
	if err != nil {
		h.logger.WarnContext(ctx, "get active players failed", "match_id", matchID, "minute", minute, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]activePlayerDTO, 0, len(players))
	for _, player := range players {
		items = append(items, activePlayerDTO{
			PlayerID: player.PlayerID,
			Position: player.Position,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateLineupInterval(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateLineupInterval")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	var req createIntervalRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.lineupService.CreateInterval(ctx, principal, usecase.CreateIntervalInput{
		MatchID:     matchID,
		PlayerID:    req.PlayerID,
		Position:    req.Position,
		StartMinute: *req.StartMinute,
		EndMinute:   req.EndMinute,
		PitchX:      req.PitchX,
		PitchY:      req.PitchY,
		Reason:      req.Reason,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create interval failed", "match_id", matchID, "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, intervalToDTO(item))
}

func (h *Handler) UpdateLineupInterval(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateLineupInterval")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	intervalID := strings.TrimSpace(r.PathValue("intervalID"))
	var req updateIntervalRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.lineupService.UpdateInterval(ctx, principal, matchID, intervalID, usecase.UpdateIntervalPatch{
		EndMinute: req.EndMinute,
		Position:  req.Position,
		PitchX:    req.PitchX,
		PitchY:    req.PitchY,
		Reason:    req.Reason,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update interval failed", "match_id", matchID, "interval_id", intervalID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, intervalToDTO(item))
}

func (h *Handler) DeleteLineupInterval(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteLineupInterval")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	intervalID := strings.TrimSpace(r.PathValue("intervalID"))
	item, err := h.lineupService.DeleteInterval(ctx, principal, matchID, intervalID)
	if err != nil {
		h.logger.WarnContext(ctx, "delete interval failed", "match_id", matchID, "interval_id", intervalID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, intervalToDTO(item))
}

func (h *Handler) ImportLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportLineup")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	var req importLineupRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	entries := make([]usecase.LineupImportEntry, 0, len(req.Entries))
	for _, entry := range req.Entries {
		entries = append(entries, usecase.LineupImportEntry{
			PlayerID:    entry.PlayerID,
			Position:    entry.Position,
			StartMinute: *entry.StartMinute,
			EndMinute:   entry.EndMinute,
			PitchX:      entry.PitchX,
			PitchY:      entry.PitchY,
			Reason:      entry.Reason,
		})
	}

	result, err := h.importService.Import(ctx, principal, matchID, entries)
	if err != nil {
		h.logger.WarnContext(ctx, "lineup import failed", "match_id", matchID, "entries", len(entries), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, importResultToDTO(result))
}
