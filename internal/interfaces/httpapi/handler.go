package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fieldside/matchlog/internal/domain/user"
	"github.com/fieldside/matchlog/internal/usecase"
)

type Handler struct {
	lineupService       *usecase.LineupService
	substitutionService *usecase.SubstitutionService
	periodService       *usecase.PeriodService
	liveStateService    *usecase.LiveStateService
	importService       *usecase.LineupImportService
	logger              *slog.Logger
	validator           *validator.Validate
}

func NewHandler(
	lineupService *usecase.LineupService,
	substitutionService *usecase.SubstitutionService,
	periodService *usecase.PeriodService,
	liveStateService *usecase.LiveStateService,
	importService *usecase.LineupImportService,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		lineupService:       lineupService,
		substitutionService: substitutionService,
		periodService:       periodService,
		liveStateService:    liveStateService,
		importService:       importService,
		logger:              logger,
		validator:           validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return principal, nil
}

// parseMinuteQuery reads the ?minute= match-clock query parameter.
func parseMinuteQuery(r *http.Request) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("minute"))
	if raw == "" {
		return 0, fmt.Errorf("%w: minute query parameter is required", usecase.ErrInvalidInput)
	}

	minute, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid minute %q", usecase.ErrInvalidInput, raw)
	}
	if minute < 0 {
		return 0, fmt.Errorf("%w: minute must be >= 0", usecase.ErrInvalidInput)
	}

	return minute, nil
}
