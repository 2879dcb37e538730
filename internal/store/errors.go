package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a booking insert loses to an existing
// overlapping stay, either in the pre-insert check or to the database
// exclusion constraint.
var ErrConflict = errors.New("conflicting booking")
