package utils

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"

	uniqueViolationText = "duplicate key value violates unique constraint"
)

// IsPGUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
// It checks SQLSTATE 23505 first and falls back to the server message, which
// also covers errors that were flattened to text on the way up.
func IsPGUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), uniqueViolationText)
}

// ParseID parses a positive int64 path parameter.
func ParseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
