package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/fieldside/matchlog/internal/usecase"
)

func (h *Handler) StartPeriod(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartPeriod")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	var req startPeriodRequest
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

	item, err := h.periodService.StartPeriod(ctx, principal, matchID, req.Type, req.Notes)
	if err != nil {
		h.logger.WarnContext(ctx, "start period failed", "match_id", matchID, "type", req.Type, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, periodToDTO(item))
}

func (h *Handler) EndPeriod(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EndPeriod")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	periodID := strings.TrimSpace(r.PathValue("periodID"))

	// An empty body is fine; the reason is optional.
	var req endPeriodRequest
	if r.ContentLength != 0 {
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
	}

	item, err := h.periodService.EndPeriod(ctx, principal, matchID, periodID, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "end period failed", "match_id", matchID, "period_id", periodID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, periodToDTO(item))
}

func (h *Handler) ImportPeriod(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportPeriod")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	var req importPeriodRequest
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

	item, err := h.periodService.ImportPeriod(ctx, principal, usecase.ImportPeriodInput{
		MatchID:         matchID,
		Number:          req.Number,
		Type:            req.Type,
		StartedAt:       req.StartedAt,
		EndedAt:         req.EndedAt,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "import period failed", "match_id", matchID, "number", req.Number, "type", req.Type, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, periodToDTO(item))
}
