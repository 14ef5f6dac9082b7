package application

import (
	"errors"
	"slices"
	"strings"
)

var (
	// ErrNotFound is returned when the requested class, session or ad-hoc session does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when an acronym is already taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrConflict is returned when a class kept changing underneath a mutation.
	ErrConflict = errors.New("application: class was modified concurrently")
	// ErrDateOccupied is returned when a session would move onto a date another session holds.
	ErrDateOccupied = errors.New("application: date already holds a session")
	// ErrInvariantViolation is returned when a mutation produced an inconsistent session list.
	ErrInvariantViolation = errors.New("application: session list invariant violated")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error. The first message recorded
// for a field wins.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}
