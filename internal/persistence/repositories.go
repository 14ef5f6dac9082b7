package persistence

import (
	"context"
	"time"

	"github.com/example/class-scheduler/internal/scheduler"
)

// ClassRepository stores class aggregates with their sessions and
// participants. A class is always read and written as a whole.
type ClassRepository interface {
	CreateClass(ctx context.Context, class scheduler.Class, at time.Time) (ClassRecord, error)
	GetClass(ctx context.Context, id string) (ClassRecord, error)
	GetClassByAcronym(ctx context.Context, acronym string) (ClassRecord, error)
	GetClassBySessionAcronym(ctx context.Context, sessionAcronym string) (ClassRecord, error)
	// SaveClass replaces the stored class when its version still equals
	// expectedVersion and returns ErrConflict otherwise.
	SaveClass(ctx context.Context, class scheduler.Class, expectedVersion int, at time.Time) (ClassRecord, error)
	DeleteClass(ctx context.Context, id string) error
	// ListClassesForUser returns the classes userID attends or teaches.
	ListClassesForUser(ctx context.Context, userID string) ([]ClassRecord, error)
}

// AdHocSessionRepository stores one-off sessions.
type AdHocSessionRepository interface {
	CreateAdHocSession(ctx context.Context, session scheduler.AdHocSession, at time.Time) (AdHocRecord, error)
	GetAdHocSession(ctx context.Context, acronym string) (AdHocRecord, error)
	ListAdHocSessionsForUser(ctx context.Context, userID string) ([]AdHocRecord, error)
}

// Directory resolves user IDs to display records.
type Directory interface {
	PutDisplayRecord(ctx context.Context, record DisplayRecord) error
	// GetDisplayRecordsByIDs returns the records found, keyed by ID. Unknown
	// IDs are left out of the result.
	GetDisplayRecordsByIDs(ctx context.Context, ids []string) (map[string]DisplayRecord, error)
}
