package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError is returned when a module ID is not part of the catalog.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("module not found: %q", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
