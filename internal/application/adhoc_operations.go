package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/class-scheduler/internal/persistence"
	"github.com/example/class-scheduler/internal/scheduler"
)

// CreateAdHocSession validates input and stores a one-off session. The
// acronym is derived from a freshly generated ID.
func (s *ClassService) CreateAdHocSession(ctx context.Context, input AdHocInput) (session AdHocDetails, err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateAdHocSession", "instructor_id", input.InstructorID, "type", input.Type)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to create ad-hoc session", err)
			return
		}
		logger.With("acronym", session.Acronym, "start", session.ScheduledStart).InfoContext(ctx, "ad-hoc session created")
	}()

	if s.adhoc == nil {
		err = fmt.Errorf("ad-hoc repository not configured")
		return
	}

	vErr := validateStruct(input)
	adhocType, typeErr := scheduler.ParseAdHocType(input.Type)
	if typeErr != nil && strings.TrimSpace(input.Type) != "" {
		vErr.add("type", "is not a known ad-hoc session type")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	var built scheduler.AdHocSession
	built, err = s.scheduler.NewAdHocSession(scheduler.AdHocParams{
		Name:            strings.TrimSpace(input.Name),
		Type:            adhocType,
		Start:           input.Start,
		Timezone:        strings.TrimSpace(input.Timezone),
		DurationMinutes: input.DurationMinutes,
		InstructorID:    strings.TrimSpace(input.InstructorID),
		Participants:    input.Participants,
		Notes:           input.Notes,
	}, s.idGenerator(), now)
	if err != nil {
		err = mapSchedulerError(err)
		return
	}

	var record persistence.AdHocRecord
	record, err = s.adhoc.CreateAdHocSession(ctx, built, now)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	session = adHocDetails(record, nil, now)
	return
}

// GetAdHocSession returns a one-off session with its instructor resolved.
func (s *ClassService) GetAdHocSession(ctx context.Context, acronym string) (session AdHocDetails, err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}
	if s.adhoc == nil {
		err = fmt.Errorf("ad-hoc repository not configured")
		return
	}

	var record persistence.AdHocRecord
	record, err = s.adhoc.GetAdHocSession(ctx, acronym)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	var names map[string]persistence.DisplayRecord
	names, err = s.lookupNames(ctx, []string{record.Session.InstructorID})
	if err != nil {
		return
	}
	session = adHocDetails(record, names, s.now())
	return
}
