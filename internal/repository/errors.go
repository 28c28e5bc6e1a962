// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// and the session manager to distinguish between different failure
// scenarios without looking at driver-specific errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already exists")
	ErrPostNotFound    = errors.New("post not found")
	ErrPageNotFound    = errors.New("page not found")
	ErrPathExists      = errors.New("page path already exists")
	ErrSessionNotFound = errors.New("session not found")

	// ErrAuthorNotFound is returned when a post references a user that
	// does not exist.
	ErrAuthorNotFound = errors.New("author does not exist")
)

// MySQL and SQLite report constraint violations differently; these
// helpers hide the difference from the repositories.

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

func isForeignKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1452
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}
