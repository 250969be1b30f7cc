package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsDuplicateKey reports a unique-constraint violation on any supported driver.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

func notFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }
