package remote

import (
	"errors"
	"fmt"
)

// ErrNetwork reports that the backend could not be reached or answered with a
// failure status.
var ErrNetwork = errors.New("remote: network failure")

// ErrNotOnServer is returned when a record has no server-side counterpart.
var ErrNotOnServer = errors.New("remote: record is not stored on the server")

// StatusError carries an unexpected HTTP status from the backend.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote: %s %s returned %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("remote: %s %s returned %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Is lets errors.Is(err, ErrNetwork) match status failures.
func (e *StatusError) Is(target error) bool {
	return target == ErrNetwork
}
