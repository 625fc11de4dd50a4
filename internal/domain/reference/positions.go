package reference

import (
	"context"
	"strings"
)

// PositionRepository exposes the reference list of recognized position codes.
type PositionRepository interface {
	IsValidPosition(ctx context.Context, code string) (bool, error)
	ListPositions(ctx context.Context) ([]string, error)
}

func NormalizePosition(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
