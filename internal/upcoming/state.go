// Package upcoming decides which session a user should see next: the open
// window state of each session relative to now and the nearest actionable
// session across classes and ad-hoc sessions.
package upcoming

import (
	"time"

	"github.com/example/class-scheduler/internal/scheduler"
)

// State is the open window state of a session at a given instant.
type State int

const (
	// Upcoming: the lobby has not opened yet.
	Upcoming State = iota
	// LobbyOpen: the lobby is open but the session is not running.
	LobbyOpen
	// InSession: the scheduled session is running.
	InSession
	// Closed: the lobby has closed. Terminal.
	Closed
)

func (s State) String() string {
	switch s {
	case Upcoming:
		return "upcoming"
	case LobbyOpen:
		return "lobby_open"
	case InSession:
		return "in_session"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// StateAt evaluates the window state of session at now. The lobby stays open
// after the session ends until LobbyClose, which is reported as LobbyOpen.
func StateAt(session scheduler.Session, now time.Time) State {
	switch {
	case now.Before(session.LobbyOpen):
		return Upcoming
	case now.Before(session.ScheduledStart):
		return LobbyOpen
	case !now.After(session.ScheduledEnd):
		return InSession
	case !now.After(session.LobbyClose):
		return LobbyOpen
	default:
		return Closed
	}
}

// Actionable reports whether session is still worth offering at now: it is
// open, running or yet to open.
func Actionable(session scheduler.Session, now time.Time) bool {
	return !now.After(session.LobbyClose)
}

// IsOpenNow reports whether now lies within the lobby window, bounds included.
func IsOpenNow(session scheduler.Session, now time.Time) bool {
	return !now.Before(session.LobbyOpen) && !now.After(session.LobbyClose)
}

// OpensAfterNow reports whether the lobby opens strictly after now.
func OpensAfterNow(session scheduler.Session, now time.Time) bool {
	return now.Before(session.LobbyOpen)
}

// InSessionAt reports whether now lies within the scheduled session, bounds included.
func InSessionAt(session scheduler.Session, now time.Time) bool {
	return !now.Before(session.ScheduledStart) && !now.After(session.ScheduledEnd)
}
