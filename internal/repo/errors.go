package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrConflict is returned by conditional updates that matched no row: the
// precondition (unconsumed, unexpired, matching code) no longer holds.
var ErrConflict = errors.New("conflict")

// ErrDuplicate indicates a unique constraint rejected an insert.
var ErrDuplicate = errors.New("duplicate")

// isUniqueViolation recognizes unique violations across drivers.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations;
// pgx reports SQLSTATE 23505.
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
		strings.Contains(low, "duplicate key value") ||
		strings.Contains(low, "sqlstate 23505")
}
