package models

import (
	"errors"
	"fmt"
)

// ErrSearchExists is returned when attempting to create a saved search that already exists.
var ErrSearchExists = errors.New("saved search already exists")

// TransientFetchError marks an upstream page fetch that failed even after
// its single retry. Callers stop paginating and serve what they have
// instead of surfacing it to the end user.
type TransientFetchError struct {
	Page int
	Err  error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("transient fetch failure on upstream page %d: %v", e.Page, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// IsTransient reports whether err wraps a TransientFetchError.
func IsTransient(err error) bool {
	var t *TransientFetchError
	return errors.As(err, &t)
}
