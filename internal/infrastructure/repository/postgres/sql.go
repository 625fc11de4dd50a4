package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation    = "23505"
	pqExclusionViolation = "23P01"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// violatedConstraint returns the name of the unique or exclusion constraint
// behind err, or "" when err is something else. The write paths translate
// these names into domain sentinels.
func violatedConstraint(err error) string {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return ""
	}
	switch pqErr.Code {
	case pqUniqueViolation, pqExclusionViolation:
		return pqErr.Constraint
	default:
		return ""
	}
}
