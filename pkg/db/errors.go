package db

import "strings"

// IsUniqueViolation reports whether err is a unique-constraint violation from
// Postgres or SQLite. When constraintName is provided, the helper looks for
// the constraint (or, on SQLite, the column) text in the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return true
}
