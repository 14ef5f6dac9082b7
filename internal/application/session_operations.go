package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/class-scheduler/internal/persistence"
	"github.com/example/class-scheduler/internal/scheduler"
	"github.com/example/class-scheduler/internal/timemath"
)

// RescheduleSession edits one session of a class. Moving a session renumbers
// the class and regenerates the acronym of the moved session.
func (s *ClassService) RescheduleSession(ctx context.Context, input RescheduleInput) (result RescheduleResult, err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}

	logger := s.loggerWith(ctx, "RescheduleSession", "session", input.SessionAcronym)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to reschedule session", err)
			return
		}
		logger.With(
			"new_session", result.Session.Acronym,
			"date_changed", result.DateChanged,
			"version", result.Class.Version,
		).InfoContext(ctx, "session rescheduled")
	}()

	if vErr := validateStruct(input); vErr.HasErrors() {
		err = vErr
		return
	}

	var (
		dateChanged bool
		moved       scheduler.Session
	)
	var record persistence.ClassRecord
	record, err = s.mutateClass(ctx, s.bySessionAcronym(input.SessionAcronym), func(current scheduler.Class) (scheduler.Class, error) {
		updates, err := s.rescheduleUpdates(current, input)
		if err != nil {
			return scheduler.Class{}, err
		}
		res, err := s.scheduler.Reschedule(current, input.SessionAcronym, updates)
		if err != nil {
			return scheduler.Class{}, err
		}
		dateChanged = res.DateChanged
		moved = locateMoved(current, res.Class, input.SessionAcronym)
		return res.Class, nil
	})
	if err != nil {
		return
	}

	now := s.now()
	result = RescheduleResult{
		Class:       s.classDetails(record, nil),
		Session:     sessionView(moved, nil, now),
		DateChanged: dateChanged,
	}
	return
}

// SkipSession moves a session past the last session of its class, onto the
// next slot of the class schedule.
func (s *ClassService) SkipSession(ctx context.Context, sessionAcronym string) (class ClassDetails, err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SkipSession", "session", sessionAcronym)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to skip session", err)
			return
		}
		last := class.Sessions[len(class.Sessions)-1]
		logger.With("moved_to", last.Acronym, "version", class.Version).InfoContext(ctx, "session skipped")
	}()

	var record persistence.ClassRecord
	record, err = s.mutateClass(ctx, s.bySessionAcronym(sessionAcronym), func(current scheduler.Class) (scheduler.Class, error) {
		return s.scheduler.Skip(current, sessionAcronym)
	})
	if err != nil {
		return
	}
	class = s.classDetails(record, nil)
	return
}

// DeleteSession removes a session and shrinks the class's session count.
func (s *ClassService) DeleteSession(ctx context.Context, sessionAcronym string) (class ClassDetails, err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}

	logger := s.loggerWith(ctx, "DeleteSession", "session", sessionAcronym)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to delete session", err)
			return
		}
		logger.With("sessions", len(class.Sessions), "version", class.Version).InfoContext(ctx, "session deleted")
	}()

	var record persistence.ClassRecord
	record, err = s.mutateClass(ctx, s.bySessionAcronym(sessionAcronym), func(current scheduler.Class) (scheduler.Class, error) {
		return scheduler.Delete(current, sessionAcronym)
	})
	if err != nil {
		return
	}
	class = s.classDetails(record, nil)
	return
}

// rescheduleUpdates turns the textual input into scheduler updates. The new
// start time is read as a wall clock in the effective timezone on the
// target date.
func (s *ClassService) rescheduleUpdates(class scheduler.Class, input RescheduleInput) (scheduler.RescheduleUpdates, error) {
	updates := scheduler.RescheduleUpdates{
		Timezone:      input.Timezone,
		HelpMessage:   input.HelpMessage,
		InstructorID:  input.InstructorID,
		DisableEmails: input.DisableEmails,
	}

	idx := class.FindSession(input.SessionAcronym)
	if idx < 0 {
		return updates, fmt.Errorf("%w: %s", scheduler.ErrNotFound, input.SessionAcronym)
	}
	session := class.Sessions[idx]

	vErr := &ValidationError{}
	date, err := timemath.ParseDate(session.LocalDate)
	if err != nil {
		return updates, fmt.Errorf("%w: %w", scheduler.ErrInvariantViolation, err)
	}
	if input.Date != nil {
		if date, err = timemath.ParseDate(*input.Date); err != nil {
			vErr.add("date", "must match the layout 2006-01-02")
		} else {
			updates.Date = &date
		}
	}

	if input.StartTime != nil {
		tz := session.Timezone
		if input.Timezone != nil && *input.Timezone != "" {
			tz = *input.Timezone
		}
		if tz == "" {
			tz = class.Config.Schedule.StartTime.Timezone
		}
		loc, err := s.scheduler.Engine().Zones().Resolve(tz)
		if err != nil {
			vErr.add("timezone", "must be an IANA timezone name")
		}
		tod, err := parseTimeOfDay(*input.StartTime, tz)
		if err != nil {
			vErr.add("start_time", "must match the layout 15:04")
		}
		if !vErr.HasErrors() {
			start := timemath.LocalWallClockToInstant(date, tod, loc)
			updates.StartTime = &start
		}
	}

	if input.InstructorID != nil && strings.TrimSpace(*input.InstructorID) == "" {
		vErr.add("instructor_id", "must not be blank")
	}
	if vErr.HasErrors() {
		return updates, vErr
	}
	return updates, nil
}

// locateMoved finds the edited session in after. Its acronym changes when
// its date does, so it is the one acronym of after missing from before, or
// the original acronym when the date stayed put.
func locateMoved(before, after scheduler.Class, acronym string) scheduler.Session {
	for _, session := range after.Sessions {
		if before.FindSession(session.Acronym) < 0 {
			return session
		}
	}
	if idx := after.FindSession(acronym); idx >= 0 {
		return after.Sessions[idx]
	}
	return scheduler.Session{}
}
