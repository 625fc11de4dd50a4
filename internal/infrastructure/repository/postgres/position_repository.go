package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fieldside/matchlog/internal/domain/reference"
	qb "github.com/fieldside/matchlog/internal/platform/querybuilder"
)

type PositionRepository struct {
	db *sqlx.DB
}

func NewPositionRepository(db *sqlx.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

func (r *PositionRepository) IsValidPosition(ctx context.Context, code string) (bool, error) {
	query, args, err := qb.Select("code").
		From("position_codes").
		Where(qb.Eq("code", reference.NormalizePosition(code))).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build position lookup query: %w", err)
	}

	var found string
	if err := r.db.GetContext(ctx, &found, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("lookup position code: %w", err)
	}

	return true, nil
}

func (r *PositionRepository) ListPositions(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("code").
		From("position_codes").
		OrderBy("code").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list positions query: %w", err)
	}

	var codes []string
	if err := r.db.SelectContext(ctx, &codes, query, args...); err != nil {
		return nil, fmt.Errorf("list position codes: %w", err)
	}

	return codes, nil
}
