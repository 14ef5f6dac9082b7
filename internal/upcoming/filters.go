package upcoming

import (
	"time"

	"github.com/example/class-scheduler/internal/scheduler"
)

// Filter keeps the sessions for which it returns true.
type Filter func(scheduler.Session) bool

// Apply returns the sessions matching every filter, preserving order.
func Apply(sessions []scheduler.Session, filters ...Filter) []scheduler.Session {
	out := make([]scheduler.Session, 0, len(sessions))
next:
	for _, session := range sessions {
		for _, keep := range filters {
			if !keep(session) {
				continue next
			}
		}
		out = append(out, session)
	}
	return out
}

// OnDate keeps sessions held on localDate (YYYY-MM-DD).
func OnDate(localDate string) Filter {
	return func(s scheduler.Session) bool { return s.LocalDate == localDate }
}

// TaughtBy keeps sessions assigned to instructorID.
func TaughtBy(instructorID string) Filter {
	return func(s scheduler.Session) bool { return s.InstructorID == instructorID }
}

// StartingWithin keeps sessions whose scheduled start lies in [now, now+window].
func StartingWithin(now time.Time, window time.Duration) Filter {
	end := now.Add(window)
	return func(s scheduler.Session) bool {
		return !s.ScheduledStart.Before(now) && !s.ScheduledStart.After(end)
	}
}

// OpenNow keeps sessions whose lobby window contains now.
func OpenNow(now time.Time) Filter {
	return func(s scheduler.Session) bool { return IsOpenNow(s, now) }
}

// RunningAt keeps sessions whose scheduled window contains now.
func RunningAt(now time.Time) Filter {
	return func(s scheduler.Session) bool { return InSessionAt(s, now) }
}

// FirstUpcoming returns the first session, in list order, that is open now or
// opens later. The list is expected to be ordered by start.
func FirstUpcoming(sessions []scheduler.Session, now time.Time) (scheduler.Session, bool) {
	for _, s := range sessions {
		if IsOpenNow(s, now) || OpensAfterNow(s, now) {
			return s, true
		}
	}
	return scheduler.Session{}, false
}
