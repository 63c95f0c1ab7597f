package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrDuplicateMatch is best-effort: it is returned when another creation
	// for the same (job, seeker) pair is in flight, not as a uniqueness proof.
	ErrDuplicateMatch = errors.New("duplicate match")
)

// StoreError wraps a failure reported by the document store. The cause is
// opaque to the core and is never retried here.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return "store " + e.Op + " failed"
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InvalidInputf returns an error matching ErrInvalidInput with a detail message.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
