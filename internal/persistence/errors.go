package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrConflict is returned when a write was based on a stale version.
	ErrConflict = errors.New("persistence: version conflict")
	// ErrConstraintViolation is returned for records the store refuses to hold.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
