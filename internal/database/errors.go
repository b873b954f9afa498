package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// IsUniqueViolation recognises unique constraint failures from PostgreSQL
// and SQLite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
