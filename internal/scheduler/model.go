package scheduler

import (
	"slices"
	"time"

	"github.com/example/class-scheduler/internal/recurrence"
)

// ClassConfig holds the inputs used to generate a class's sessions.
type ClassConfig struct {
	Name               string
	Acronym            string
	InstructorID       string
	HelpMessage        string
	AnchorDate         time.Time
	Schedule           recurrence.Schedule
	SessionCount       int
	DurationMinutes    int
	LobbyBufferMinutes int
}

// Session is one dated occurrence of a class. LocalDate is the calendar date
// in the session's timezone; the four instants are stored in UTC.
type Session struct {
	Acronym        string
	Sequence       int
	Name           string
	LocalDate      string
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	LobbyOpen      time.Time
	LobbyClose     time.Time
	InstructorID   string
	Timezone       string
	HelpMessage    string
	DisableEmails  bool
}

// Class is the aggregate persisted as a unit: configuration, enrolment and
// the ordered session list.
type Class struct {
	ID           string
	Config       ClassConfig
	Participants []string
	Sessions     []Session
}

// Clone returns a deep copy so that mutations never alias the caller's slices.
func (c Class) Clone() Class {
	c.Participants = slices.Clone(c.Participants)
	c.Sessions = slices.Clone(c.Sessions)
	c.Config.Schedule.Weekdays = slices.Clone(c.Config.Schedule.Weekdays)
	return c
}

// FindSession returns the index of the session with acronym, or -1.
func (c Class) FindSession(acronym string) int {
	return slices.IndexFunc(c.Sessions, func(s Session) bool { return s.Acronym == acronym })
}

// HasParticipant reports whether userID is enrolled.
func (c Class) HasParticipant(userID string) bool {
	return slices.Contains(c.Participants, userID)
}

// IsInstructor reports whether userID teaches the class or any of its sessions.
func (c Class) IsInstructor(userID string) bool {
	if userID == "" {
		return false
	}
	if c.Config.InstructorID == userID {
		return true
	}
	return slices.ContainsFunc(c.Sessions, func(s Session) bool { return s.InstructorID == userID })
}

// AddParticipant enrols userID, returning false when already enrolled.
func (c *Class) AddParticipant(userID string) bool {
	if userID == "" || c.HasParticipant(userID) {
		return false
	}
	c.Participants = append(c.Participants, userID)
	return true
}

// RemoveParticipant withdraws userID, returning false when not enrolled.
func (c *Class) RemoveParticipant(userID string) bool {
	idx := slices.Index(c.Participants, userID)
	if idx < 0 {
		return false
	}
	c.Participants = slices.Delete(c.Participants, idx, idx+1)
	return true
}
