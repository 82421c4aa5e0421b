package tasks

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("tasks: not found")
	// ErrNoChange may be returned by an Update func to commit nothing.
	ErrNoChange = errors.New("tasks: no change")

	ErrInvalidFilter = errors.New("tasks: invalid filter")
)

// PersistenceParseError reports a stored snapshot that could not be decoded.
type PersistenceParseError struct {
	Key string
	Err error
}

func (e *PersistenceParseError) Error() string {
	return fmt.Sprintf("tasks: parse %s: %v", e.Key, e.Err)
}

func (e *PersistenceParseError) Unwrap() error { return e.Err }
