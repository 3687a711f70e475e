package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrStaleBase means the playbook's current version moved past the
	// version a caller expected. The losing side of a concurrent merge
	// sees this instead of overwriting the winner.
	ErrStaleBase = errors.New("base version no longer current")

	// ErrNotOpen means a state transition was attempted on a pull request
	// that already reached a terminal state.
	ErrNotOpen = errors.New("pull request not open")
)

// IsDuplicateError reports a unique constraint violation (23505), e.g. a
// second fork of the same playbook by the same user.
func IsDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
