package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrDuplicate indicates that a row already exists for a unique key: an
// idempotency (voter_id, scope, key) tuple or a story_votes
// (story_id, voter_fingerprint) pair.
var ErrDuplicate = errors.New("duplicate")

// isUniqueViolation reports whether err is a unique-constraint failure.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}
