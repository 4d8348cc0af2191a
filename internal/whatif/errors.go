package whatif

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced account or liability is not
	// part of the simulator's scope.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for arguments no scenario can be run with.
	ErrInvalidInput = errors.New("invalid input")
)

// NotFoundError identifies the missing record. It matches ErrNotFound.
type NotFoundError struct {
	Kind string // "account" or "liability"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
