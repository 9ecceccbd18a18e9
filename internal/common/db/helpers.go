package db

import (
	"database/sql"
	"errors"
)

// IsNoRows reports whether err is sql.ErrNoRows. Repositories use it
// to turn driver misses into domain not-found errors.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
