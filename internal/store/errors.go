// Package store owns all writes to the messaging entities. Every mutating
// operation runs inside a single transaction so partial application is never
// observable; callers above this package do no locking of their own.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Error taxonomy surfaced to callers. Handlers map these onto HTTP statuses.
var (
	// ErrNotFound means the referenced conversation or message does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrForbidden means the caller is not a participant, or lacks the
	// sender/admin right for the operation.
	ErrForbidden = errors.New("store: forbidden")
	// ErrConflict means a uniqueness or state invariant would be violated,
	// e.g. mutating a tombstoned message.
	ErrConflict = errors.New("store: conflict")
	// ErrInvalidArgument means the input is malformed; the caller must fix it.
	ErrInvalidArgument = errors.New("store: invalid argument")
	// ErrUnavailable means the underlying persistence failed transiently.
	// The whole logical operation is safe to retry.
	ErrUnavailable = errors.New("store: unavailable")
)

// mysqlDuplicateEntry is the MySQL error number for unique key violations.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a unique constraint violation from
// any of the supported drivers.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return true
	}
	// mattn/go-sqlite3 reports constraint violations by message.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// dbErr translates a driver error into the store taxonomy, keeping the
// original error in the chain.
func dbErr(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("store: %s: %w", op, ErrNotFound)
	case isDuplicateKey(err):
		return fmt.Errorf("store: %s: %w: %w", op, ErrConflict, err)
	default:
		return fmt.Errorf("store: %s: %w: %w", op, ErrUnavailable, err)
	}
}
