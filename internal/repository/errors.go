// Package repository defines error values that are reused across
// multiple repositories. These sentinel values let the service layer
// distinguish failure scenarios without parsing driver errors: for
// example ErrTableOccupied signals that the open-booking unique key
// rejected a second booking, while ErrNameTaken signals a duplicate
// table or item name.
package repository

import (
	"errors"
	"strings"
)

// ErrNameTaken is returned when an insert or rename collides with an
// existing unique name (tables.name, items.name, users.username).
var ErrNameTaken = errors.New("name already taken")

// ErrTableOccupied is returned when creating a booking for a table
// that already has an open booking. The database-level unique key on
// (table_id, open_flag) raises this even when two requests race past
// the application-level check.
var ErrTableOccupied = errors.New("table already occupied")

// ErrConflict is returned when an operation cannot proceed because of
// dependent state, such as deleting a table that still has an open
// booking.
var ErrConflict = errors.New("conflict")

// isDuplicateKey reports whether err is a MySQL duplicate-key error
// (error number 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// isForeignKeyViolation reports whether err is a MySQL restricted-delete
// error (error number 1451: row referenced by a child table).
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1451")
}
