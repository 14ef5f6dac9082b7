package persistence

import (
	"time"

	"github.com/example/class-scheduler/internal/scheduler"
)

// ClassRecord is a stored class aggregate. Version increases by one on every
// successful save and is the token for optimistic replacement.
type ClassRecord struct {
	Class     scheduler.Class
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AdHocRecord is a stored one-off session.
type AdHocRecord struct {
	Session   scheduler.AdHocSession
	CreatedAt time.Time
}

// DisplayRecord is the directory entry used to present a user.
type DisplayRecord struct {
	ID    string
	Name  string
	Email string
}
