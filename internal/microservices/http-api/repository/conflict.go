package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes that mark a transaction as worth retrying. A
// unique violation counts because the only non-key unique object in this
// schema is the one-best partial index: it trips when two first-ever #1
// inserts for a scope race, and the retry finds the committed row and
// demotes it.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

// IsRetryableConflict reports whether err is a transient conflict that the
// coordinator may retry with the same submission.
func IsRetryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeUniqueViolation:
		return true
	}
	return false
}
