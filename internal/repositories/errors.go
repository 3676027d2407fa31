package repositories

import "errors"

var (
	// ErrNotFound indicates nothing has been persisted yet.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a concurrent write won; the save may be retried.
	ErrConflict = errors.New("record conflict")
)
