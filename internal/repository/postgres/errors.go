package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories translate into domain errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// IsPgDuplicateError matches unique index violations, which is how duplicate
// titles and folder names surface.
func IsPgDuplicateError(err error) bool {
	return hasPgCode(err, uniqueViolation)
}

// IsPgForeignKeyError matches writes that point at a missing folder or document.
func IsPgForeignKeyError(err error) bool {
	return hasPgCode(err, foreignKeyViolation)
}

func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
