package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	matches, err := h.liveStateService.ListMatches(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchDTO, 0, len(matches))
	for _, item := range matches {
		items = append(items, matchToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLiveState(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLiveState")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	state, err := h.liveStateService.GetLiveState(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get live state failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, liveStateToDTO(state))
}

func (h *Handler) GetMatchDetails(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchDetails")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	details, err := h.liveStateService.GetFullDetails(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match details failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchDetailsToDTO(details))
}

func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTimeline")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	entries, err := h.liveStateService.GetTimeline(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get timeline failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]timelineEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, timelineEntryDTO{
			eventDTO: eventToDTO(entry.Event),
			TeamName: entry.TeamName,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
