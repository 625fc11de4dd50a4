package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/fieldside/matchlog/internal/usecase"
)

func (h *Handler) Substitute(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Substitute")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	var req substituteRequest
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

	result, err := h.substitutionService.Substitute(ctx, principal, usecase.SubstituteInput{
		MatchID:     matchID,
		PlayerOffID: req.PlayerOffID,
		PlayerOnID:  req.PlayerOnID,
		Position:    req.Position,
		AtMinute:    *req.AtMinute,
		Reason:      req.Reason,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "substitution failed",
			"match_id", matchID,
			"player_off_id", req.PlayerOffID,
			"player_on_id", req.PlayerOnID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, substitutionResultDTO{
		OffInterval:       intervalToDTO(result.OffInterval),
		OnInterval:        intervalToDTO(result.OnInterval),
		TimelineEvents:    eventsToDTO(result.TimelineEvents),
		ZeroDurationStint: result.ZeroDurationStint,
	})
}
