package db

import (
	"strings"

	pkgerrors "github.com/breezepoint/breezepoint-backend/pkg/errors"
)

// IsUniqueViolation reports whether err is a duplicate-key failure, optionally
// on a specific constraint. Postgres errors are matched by SQLSTATE; sqlite
// only reports the columns, so any sqlite UNIQUE failure matches.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if code, constraint := pkgerrors.PostgresCode(err); code != "" {
		return code == pkgerrors.PGUniqueViolation &&
			(constraintName == "" || constraint == constraintName)
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return true
	}
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}
