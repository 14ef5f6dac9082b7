package scheduler

import "errors"

var (
	// ErrNotFound indicates no session carries the requested acronym.
	ErrNotFound = errors.New("scheduler: session not found")
	// ErrInvalidSchedule indicates the class configuration cannot produce sessions.
	ErrInvalidSchedule = errors.New("scheduler: invalid schedule")
	// ErrDateOccupied indicates another session of the class already uses the target date.
	ErrDateOccupied = errors.New("scheduler: another session is already on that date")
	// ErrInvariantViolation indicates a mutation produced an inconsistent
	// session list. It signals a defect and must not be recovered from.
	ErrInvariantViolation = errors.New("scheduler: session list invariant violated")
)
