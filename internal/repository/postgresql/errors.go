package postgresql

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation           = "23505"
	foreignKeyViolation       = "23503"
	invalidTextRepresentation = "22P02"
)

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isUniqueViolation(err error) bool {
	return isPgError(err, uniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return isPgError(err, foreignKeyViolation)
}

// isNoRows reports a lookup that matched nothing. Keys are UUID columns, so a
// malformed id is rejected with 22P02 and is treated the same way.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || isPgError(err, invalidTextRepresentation)
}
