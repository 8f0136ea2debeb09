// Package registry implements idempotent resolve-or-create access to
// trackers, event sessions, and extension types. Concurrent first sightings
// of the same key are resolved by the storage uniqueness constraint: the
// losing insert fails with a duplicate-key error and the full
// lookup-then-insert sequence is retried exactly once.
package registry

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	// ErrConflictRetry means a lookup-then-insert raced and the bounded
	// retry still conflicted.
	ErrConflictRetry = errors.New("resolve-or-create conflict retry exhausted")

	// ErrTrackerExists means an explicit tracker creation hit an existing code.
	ErrTrackerExists = errors.New("tracker code already exists")
)

// resolveAttempts bounds the lookup-then-insert sequence: one initial pass
// plus one retry after a duplicate-key conflict.
const resolveAttempts = 2

// isDuplicateKey reports whether err is a unique-constraint violation,
// either translated by GORM or raw from the Postgres driver.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}
