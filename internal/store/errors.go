package store

import (
	"errors"
	"fmt"
)

// ErrNilStore is raised by consumers that are constructed without a Store.
var ErrNilStore = errors.New("habit store is not initialized")

// ValidationError rejects an action before anything is committed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
