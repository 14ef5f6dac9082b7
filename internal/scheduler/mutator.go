package scheduler

import (
	"fmt"
	"slices"
	"time"

	"github.com/example/class-scheduler/internal/timemath"
)

// RescheduleUpdates lists the fields a reschedule may change. Nil fields
// are left untouched.
type RescheduleUpdates struct {
	Date          *time.Time
	StartTime     *time.Time
	Timezone      *string
	HelpMessage   *string
	InstructorID  *string
	DisableEmails *bool
}

// RescheduleResult carries the updated class and whether the session moved
// in time, which is what decides if participants are notified.
type RescheduleResult struct {
	Class       Class
	DateChanged bool
}

// Reschedule edits the session identified by acronym and renumbers the list.
func (s *Scheduler) Reschedule(class Class, acronym string, updates RescheduleUpdates) (RescheduleResult, error) {
	idx := class.FindSession(acronym)
	if idx < 0 {
		return RescheduleResult{}, fmt.Errorf("%w: %s", ErrNotFound, acronym)
	}
	out := class.Clone()
	session := out.Sessions[idx]

	dateChanged := hasDateChange(session, updates)
	if dateChanged {
		tz := effectiveTimezone(updates.Timezone, session, out.Config)
		loc, err := s.engine.Zones().Resolve(tz)
		if err != nil {
			return RescheduleResult{}, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
		}

		date, err := sessionDate(session)
		if err != nil {
			return RescheduleResult{}, fmt.Errorf("%w: %w", ErrInvariantViolation, err)
		}
		if updates.Date != nil {
			date = *updates.Date
		}
		reference := session.ScheduledStart
		if updates.StartTime != nil {
			reference = *updates.StartTime
		}

		combined := timemath.CombineDateAndTimeOfDay(date, reference)
		local := combined.In(loc)
		tod := timemath.TimeOfDay{Hour: local.Hour(), Minute: local.Minute(), Timezone: loc.String()}
		ts := timemath.DeriveSessionTimestamps(timemath.DateOf(combined), tod, loc, out.Config.DurationMinutes, out.Config.LobbyBufferMinutes)

		if conflict, ok := DetectDateConflict(out.Sessions, ts.LocalDate, idx); ok {
			return RescheduleResult{}, fmt.Errorf("%w: %s is held by %s", ErrDateOccupied, conflict.LocalDate, conflict.Acronym)
		}

		applyTimestamps(&session, ts)
		if updates.Timezone != nil {
			session.Timezone = loc.String()
		}
	}

	if updates.HelpMessage != nil {
		session.HelpMessage = *updates.HelpMessage
	}
	if updates.InstructorID != nil {
		session.InstructorID = *updates.InstructorID
	}
	if updates.DisableEmails != nil {
		session.DisableEmails = *updates.DisableEmails
	}

	out.Sessions[idx] = session
	out.Sessions = Reorder(out.Config, out.Sessions)
	if err := Validate(out.Sessions); err != nil {
		return RescheduleResult{}, err
	}
	return RescheduleResult{Class: out, DateChanged: dateChanged}, nil
}

// Skip moves the session identified by acronym to the next scheduled slot
// after the last session of the class, keeping its local time of day.
func (s *Scheduler) Skip(class Class, acronym string) (Class, error) {
	idx := class.FindSession(acronym)
	if idx < 0 {
		return Class{}, fmt.Errorf("%w: %s", ErrNotFound, acronym)
	}
	out := class.Clone()
	session := out.Sessions[idx]

	last, err := sessionDate(out.Sessions[len(out.Sessions)-1])
	if err != nil {
		return Class{}, fmt.Errorf("%w: %w", ErrInvariantViolation, err)
	}
	next, err := s.engine.Next(last, out.Config.Schedule)
	if err != nil {
		return Class{}, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	tz := effectiveTimezone(nil, session, out.Config)
	loc, err := s.engine.Zones().Resolve(tz)
	if err != nil {
		return Class{}, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	local := session.ScheduledStart.In(loc)
	tod := timemath.TimeOfDay{Hour: local.Hour(), Minute: local.Minute(), Timezone: loc.String()}
	ts := timemath.DeriveSessionTimestamps(next.Date, tod, loc, out.Config.DurationMinutes, out.Config.LobbyBufferMinutes)

	if conflict, ok := DetectDateConflict(out.Sessions, ts.LocalDate, idx); ok {
		return Class{}, fmt.Errorf("%w: %s is held by %s", ErrDateOccupied, conflict.LocalDate, conflict.Acronym)
	}

	applyTimestamps(&session, ts)
	out.Sessions[idx] = session
	out.Sessions = Reorder(out.Config, out.Sessions)
	if err := Validate(out.Sessions); err != nil {
		return Class{}, err
	}
	return out, nil
}

// Delete removes the session identified by acronym and shrinks the
// configured session count to match.
func Delete(class Class, acronym string) (Class, error) {
	idx := class.FindSession(acronym)
	if idx < 0 {
		return Class{}, fmt.Errorf("%w: %s", ErrNotFound, acronym)
	}
	out := class.Clone()
	out.Sessions = slices.Delete(out.Sessions, idx, idx+1)
	out.Config.SessionCount = len(out.Sessions)
	out.Sessions = Reorder(out.Config, out.Sessions)
	if err := Validate(out.Sessions); err != nil {
		return Class{}, err
	}
	return out, nil
}

// ReassignInstructor hands every session taught by oldID to newID. Sessions
// assigned to someone else are left alone.
func ReassignInstructor(class Class, oldID, newID string) Class {
	out := class.Clone()
	for i := range out.Sessions {
		if out.Sessions[i].InstructorID == oldID {
			out.Sessions[i].InstructorID = newID
		}
	}
	return out
}

func hasDateChange(session Session, updates RescheduleUpdates) bool {
	if updates.Date != nil && timemath.FormatDate(*updates.Date) != session.LocalDate {
		return true
	}
	return updates.StartTime != nil && !updates.StartTime.Equal(session.ScheduledStart)
}

// effectiveTimezone picks the explicit update, then the zone pinned on the
// session, then the class schedule's zone.
func effectiveTimezone(update *string, session Session, cfg ClassConfig) string {
	if update != nil && *update != "" {
		return *update
	}
	if session.Timezone != "" {
		return session.Timezone
	}
	return cfg.Schedule.StartTime.Timezone
}
