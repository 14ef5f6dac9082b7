package application

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/example/class-scheduler/internal/persistence"
	"github.com/example/class-scheduler/internal/recurrence"
	"github.com/example/class-scheduler/internal/scheduler"
	"github.com/example/class-scheduler/internal/timemath"
	"github.com/example/class-scheduler/internal/upcoming"
)

const clockLayout = "15:04"

// classConfigFromInput validates input and converts it into a scheduler
// configuration. Acronyms are upper-cased.
func classConfigFromInput(input ClassInput) (scheduler.ClassConfig, *ValidationError) {
	vErr := validateStruct(input)

	anchor, err := timemath.ParseDate(input.StartDate)
	if err != nil {
		vErr.add("start_date", "must match the layout 2006-01-02")
	}
	weekdays, err := recurrence.ParseWeekdays(input.Weekdays)
	if err != nil {
		vErr.add("weekdays", err.Error())
	}
	tod, err := parseTimeOfDay(input.StartTime, strings.TrimSpace(input.Timezone))
	if err != nil {
		vErr.add("start_time", "must match the layout 15:04")
	}
	if vErr.HasErrors() {
		return scheduler.ClassConfig{}, vErr
	}

	return scheduler.ClassConfig{
		Name:         strings.TrimSpace(input.Name),
		Acronym:      strings.ToUpper(strings.TrimSpace(input.Acronym)),
		InstructorID: strings.TrimSpace(input.InstructorID),
		HelpMessage:  input.HelpMessage,
		AnchorDate:   anchor,
		Schedule: recurrence.Schedule{
			Weekdays:  weekdays,
			StartTime: tod,
		}.Normalized(),
		SessionCount:       input.SessionCount,
		DurationMinutes:    input.DurationMinutes,
		LobbyBufferMinutes: input.LobbyBufferMinutes,
	}, vErr
}

// expandStartInstant fills the schedule fields of input from StartAt.
// StartAt cannot be combined with an explicit schedule.
func (s *ClassService) expandStartInstant(input ClassInput) (ClassInput, *ValidationError) {
	vErr := &ValidationError{}
	if input.StartAt == nil {
		return input, vErr
	}
	if input.StartDate != "" || len(input.Weekdays) > 0 || input.StartTime != "" {
		vErr.add("start_at", "cannot be combined with start_date, weekdays or start_time")
		return input, vErr
	}

	engine := s.scheduler.Engine()
	schedule, err := engine.ScheduleFromInstant(*input.StartAt, strings.TrimSpace(input.Timezone))
	if err != nil {
		vErr.add("timezone", "must be a valid IANA timezone")
		return input, vErr
	}
	loc, err := engine.Location(schedule)
	if err != nil {
		vErr.add("timezone", "must be a valid IANA timezone")
		return input, vErr
	}

	input.StartDate = input.StartAt.In(loc).Format(timemath.DateLayout)
	input.Weekdays = []string{recurrence.FormatWeekday(schedule.Weekdays[0])}
	input.StartTime = formatTimeOfDay(schedule.StartTime)
	return input, vErr
}

func parseTimeOfDay(value, timezone string) (timemath.TimeOfDay, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(value))
	if err != nil {
		return timemath.TimeOfDay{}, fmt.Errorf("%w: %q", timemath.ErrInvalidTimeOfDay, value)
	}
	return timemath.TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Timezone: timezone}, nil
}

func formatTimeOfDay(tod timemath.TimeOfDay) string {
	return fmt.Sprintf("%02d:%02d", tod.Hour, tod.Minute)
}

func (s *ClassService) classDetails(record persistence.ClassRecord, names map[string]persistence.DisplayRecord) ClassDetails {
	class := record.Class
	cfg := class.Config
	now := s.now()

	weekdays := make([]string, 0, len(cfg.Schedule.Weekdays))
	for _, day := range cfg.Schedule.Weekdays {
		weekdays = append(weekdays, recurrence.FormatWeekday(day))
	}
	sessions := make([]SessionView, 0, len(class.Sessions))
	for _, session := range class.Sessions {
		sessions = append(sessions, sessionView(session, names, now))
	}

	return ClassDetails{
		ID:                 class.ID,
		Name:               cfg.Name,
		Acronym:            cfg.Acronym,
		InstructorID:       cfg.InstructorID,
		HelpMessage:        cfg.HelpMessage,
		StartDate:          timemath.FormatDate(cfg.AnchorDate),
		Weekdays:           weekdays,
		StartTime:          formatTimeOfDay(cfg.Schedule.StartTime),
		Timezone:           cfg.Schedule.StartTime.Timezone,
		SessionCount:       cfg.SessionCount,
		DurationMinutes:    cfg.DurationMinutes,
		LobbyBufferMinutes: cfg.LobbyBufferMinutes,
		Participants:       slices.Clone(class.Participants),
		State:              scheduler.ClassStateAt(class, now),
		Version:            record.Version,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
		Sessions:           sessions,
		Class:              class,
	}
}

func sessionView(session scheduler.Session, names map[string]persistence.DisplayRecord, now time.Time) SessionView {
	view := SessionView{
		Acronym:        session.Acronym,
		Sequence:       session.Sequence,
		Name:           session.Name,
		LocalDate:      session.LocalDate,
		ScheduledStart: session.ScheduledStart,
		ScheduledEnd:   session.ScheduledEnd,
		LobbyOpen:      session.LobbyOpen,
		LobbyClose:     session.LobbyClose,
		Timezone:       session.Timezone,
		InstructorID:   session.InstructorID,
		HelpMessage:    session.HelpMessage,
		DisableEmails:  session.DisableEmails,
		State:          upcoming.StateAt(session, now).String(),
	}
	if record, ok := names[session.InstructorID]; ok {
		view.InstructorName = record.Name
		view.InstructorEmail = record.Email
	}
	return view
}

func adHocDetails(record persistence.AdHocRecord, names map[string]persistence.DisplayRecord, now time.Time) AdHocDetails {
	session := record.Session
	return AdHocDetails{
		SessionView:  sessionView(session.Session, names, now),
		Type:         session.Type,
		Description:  session.Description,
		Capacity:     session.Capacity,
		Participants: slices.Clone(session.Participants),
		Notes:        session.Notes,
		CreatedAt:    record.CreatedAt,
	}
}

// sessionInstructors lists the distinct instructors of sessions in order of
// first appearance.
func sessionInstructors(sessions []scheduler.Session) []string {
	ids := make([]string, 0, 2)
	for _, session := range sessions {
		if session.InstructorID != "" && !slices.Contains(ids, session.InstructorID) {
			ids = append(ids, session.InstructorID)
		}
	}
	return ids
}
