// Package repo is the typed query facade over the schema store. It
// translates calls into SQL and driver failures into sentinel errors;
// it carries no business logic and never infers a current user —
// reminder operations take the owning user id explicitly.
package repo

import (
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a referenced row is absent. Callers
// scoping by user id receive the same error whether the row does not
// exist or belongs to someone else.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a uniqueness constraint (username,
// email) is violated on insert.
var ErrDuplicate = errors.New("duplicate key")

func isConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
