// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow handlers to distinguish
// expected rejections from store failures.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist.  Handlers
// translate it into 404.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when an email already belongs to a
// different login.  Handlers translate it into 409.
var ErrDuplicateEmail = errors.New("email has already been used")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own.  Handlers translate it into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be performed
// because other rows still depend on the target (e.g. deleting an
// address that a profile references).  Handlers translate it into 409.
var ErrConflict = errors.New("conflict")

// PersistenceError wraps an unexpected store failure together with the
// operation that hit it.  Its text is meant for logs only.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return "persistence: " + e.Op + ": " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }

// persist wraps err as a PersistenceError unless it is nil or already
// one of the sentinel outcomes above.
func persist(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrConflict) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// mysqlDuplicateEntry is ER_DUP_ENTRY, raised when a unique key rejects a row.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a MySQL unique-key violation.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
