package scheduler

import "time"

// ClassState is the enrolment lifecycle of a class.
type ClassState string

const (
	// ClassHold marks a class without sessions; visible but not open for enrolment.
	ClassHold ClassState = "hold"
	// ClassOpen marks a class whose first session has not started.
	ClassOpen ClassState = "open"
	// ClassInProgress marks a class whose first session has started.
	ClassInProgress ClassState = "inprog"
	// ClassDone marks a class whose last session has ended.
	ClassDone ClassState = "done"
)

// ClassStateAt derives the lifecycle state of class at now from its ordered
// session list.
func ClassStateAt(class Class, now time.Time) ClassState {
	if len(class.Sessions) == 0 {
		return ClassHold
	}
	first := class.Sessions[0]
	last := class.Sessions[len(class.Sessions)-1]
	switch {
	case now.After(last.ScheduledEnd):
		return ClassDone
	case !now.Before(first.ScheduledStart):
		return ClassInProgress
	default:
		return ClassOpen
	}
}
