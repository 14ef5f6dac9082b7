package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/class-scheduler/internal/persistence"
	"github.com/example/class-scheduler/internal/recurrence"
	"github.com/example/class-scheduler/internal/scheduler"
	"github.com/example/class-scheduler/internal/timemath"
)

// ClassStore captures the persistence operations needed for classes.
type ClassStore interface {
	CreateClass(ctx context.Context, class scheduler.Class, at time.Time) (persistence.ClassRecord, error)
	GetClass(ctx context.Context, id string) (persistence.ClassRecord, error)
	GetClassByAcronym(ctx context.Context, acronym string) (persistence.ClassRecord, error)
	GetClassBySessionAcronym(ctx context.Context, sessionAcronym string) (persistence.ClassRecord, error)
	SaveClass(ctx context.Context, class scheduler.Class, expectedVersion int, at time.Time) (persistence.ClassRecord, error)
	DeleteClass(ctx context.Context, id string) error
	ListClassesForUser(ctx context.Context, userID string) ([]persistence.ClassRecord, error)
}

// AdHocStore captures the persistence operations needed for one-off sessions.
type AdHocStore interface {
	CreateAdHocSession(ctx context.Context, session scheduler.AdHocSession, at time.Time) (persistence.AdHocRecord, error)
	GetAdHocSession(ctx context.Context, acronym string) (persistence.AdHocRecord, error)
	ListAdHocSessionsForUser(ctx context.Context, userID string) ([]persistence.AdHocRecord, error)
}

// UserDirectory resolves user IDs to display records in one batch.
type UserDirectory interface {
	GetDisplayRecordsByIDs(ctx context.Context, ids []string) (map[string]persistence.DisplayRecord, error)
}

// DirectoryWriter is implemented by directories that accept new or changed
// display records.
type DirectoryWriter interface {
	PutDisplayRecord(ctx context.Context, record persistence.DisplayRecord) error
}

// DefaultSaveAttempts bounds how often a mutation is re-read and re-applied
// after losing an optimistic replacement race.
const DefaultSaveAttempts = 3

// ClassServiceDeps wires a ClassService.
type ClassServiceDeps struct {
	Classes   ClassStore
	AdHoc     AdHocStore
	Directory UserDirectory
	Scheduler *scheduler.Scheduler
	// IDGenerator yields class IDs and ad-hoc acronyms. Defaults to uuid.New.
	IDGenerator func() uuid.UUID
	Now         func() time.Time
	Logger      *slog.Logger

	// LobbyURL is the page the upcoming banner links to.
	LobbyURL           string
	DirectoryCacheTTL  time.Duration
	DirectoryCacheSize int
	SaveAttempts       int
}

// ClassService orchestrates validation, scheduling and persistence for
// classes, their sessions and ad-hoc sessions.
type ClassService struct {
	classes      ClassStore
	adhoc        AdHocStore
	directory    UserDirectory
	scheduler    *scheduler.Scheduler
	idGenerator  func() uuid.UUID
	now          func() time.Time
	logger       *slog.Logger
	names        *displayCache
	lobbyURL     string
	saveAttempts int
}

// NewClassService constructs a class service with the provided dependencies.
func NewClassService(deps ClassServiceDeps) *ClassService {
	if deps.IDGenerator == nil {
		deps.IDGenerator = uuid.New
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Scheduler == nil {
		deps.Scheduler = scheduler.New(recurrence.NewEngine(timemath.NewZones(0)))
	}
	if deps.SaveAttempts <= 0 {
		deps.SaveAttempts = DefaultSaveAttempts
	}
	return &ClassService{
		classes:      deps.Classes,
		adhoc:        deps.AdHoc,
		directory:    deps.Directory,
		scheduler:    deps.Scheduler,
		idGenerator:  deps.IDGenerator,
		now:          deps.Now,
		logger:       defaultLogger(deps.Logger),
		names:        newDisplayCache(deps.DirectoryCacheTTL, deps.DirectoryCacheSize, deps.Now),
		lobbyURL:     deps.LobbyURL,
		saveAttempts: deps.SaveAttempts,
	}
}

func (s *ClassService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ClassService", operation, attrs...)
}

// ScheduleClass validates input, generates the session list and stores the
// new class.
func (s *ClassService) ScheduleClass(ctx context.Context, input ClassInput) (class ClassDetails, err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ScheduleClass", "class_acronym", input.Acronym)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to schedule class", err)
			return
		}
		logger.With("class_id", class.ID, "sessions", len(class.Sessions)).InfoContext(ctx, "class scheduled")
	}()

	if s.classes == nil {
		err = fmt.Errorf("class repository not configured")
		return
	}

	input, vErr := s.expandStartInstant(input)
	cfg, cfgErr := classConfigFromInput(input)
	vErr.merge(cfgErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	draft := scheduler.Class{ID: s.idGenerator().String()}
	for _, p := range input.Participants {
		draft.AddParticipant(strings.TrimSpace(p))
	}
	draft, err = s.scheduler.Apply(draft, cfg)
	if err != nil {
		err = mapSchedulerError(err)
		return
	}

	var record persistence.ClassRecord
	record, err = s.classes.CreateClass(ctx, draft, s.now())
	if err != nil {
		err = mapRepoError(err)
		return
	}
	class = s.classDetails(record, nil)
	return
}

// UpdateClass replaces the configuration of an existing class and
// regenerates its whole session list. Per-session edits are discarded.
func (s *ClassService) UpdateClass(ctx context.Context, classID string, input ClassInput) (class ClassDetails, err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateClass", "class_id", classID)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to update class", err)
			return
		}
		logger.With("version", class.Version).InfoContext(ctx, "class rebuilt")
	}()

	input, vErr := s.expandStartInstant(input)
	cfg, cfgErr := classConfigFromInput(input)
	vErr.merge(cfgErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var record persistence.ClassRecord
	record, err = s.mutateClass(ctx, s.byClassID(classID), func(current scheduler.Class) (scheduler.Class, error) {
		return s.scheduler.Apply(current, cfg)
	})
	if err != nil {
		return
	}
	class = s.classDetails(record, nil)
	return
}

// GetClass returns a class by ID or, failing that, by acronym. Sessions are
// enriched with instructor display records.
func (s *ClassService) GetClass(ctx context.Context, idOrAcronym string) (class ClassDetails, err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}
	if s.classes == nil {
		err = fmt.Errorf("class repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "GetClass", "class", idOrAcronym)
	defer func() {
		if err != nil && !errors.Is(err, ErrNotFound) {
			logFailure(ctx, logger, "failed to load class", err)
		}
	}()

	var record persistence.ClassRecord
	record, err = s.findClass(ctx, idOrAcronym)
	if err != nil {
		return
	}

	var names map[string]persistence.DisplayRecord
	names, err = s.lookupNames(ctx, sessionInstructors(record.Class.Sessions))
	if err != nil {
		return
	}
	class = s.classDetails(record, names)
	return
}

// DeleteClass removes a class together with its sessions.
func (s *ClassService) DeleteClass(ctx context.Context, classID string) (err error) {
	if s == nil {
		return fmt.Errorf("ClassService is nil")
	}
	if s.classes == nil {
		return fmt.Errorf("class repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteClass", "class_id", classID)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to delete class", err)
			return
		}
		logger.InfoContext(ctx, "class deleted")
	}()

	if err = s.classes.DeleteClass(ctx, classID); err != nil {
		err = mapRepoError(err)
	}
	return
}

// EnrollParticipant adds userID to the class. Enrolling twice is a no-op.
func (s *ClassService) EnrollParticipant(ctx context.Context, classID, userID string) (class ClassDetails, err error) {
	return s.changeParticipants(ctx, "EnrollParticipant", classID, userID, func(c *scheduler.Class) { c.AddParticipant(userID) })
}

// WithdrawParticipant removes userID from the class. Unknown users are ignored.
func (s *ClassService) WithdrawParticipant(ctx context.Context, classID, userID string) (class ClassDetails, err error) {
	return s.changeParticipants(ctx, "WithdrawParticipant", classID, userID, func(c *scheduler.Class) { c.RemoveParticipant(userID) })
}

func (s *ClassService) changeParticipants(ctx context.Context, operation, classID, userID string, change func(*scheduler.Class)) (class ClassDetails, err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}

	logger := s.loggerWith(ctx, operation, "class_id", classID, "user_id", userID)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to change enrolment", err)
			return
		}
		logger.With("participants", len(class.Participants)).InfoContext(ctx, "enrolment changed")
	}()

	if strings.TrimSpace(userID) == "" {
		vErr := &ValidationError{}
		vErr.add("user_id", "is required")
		err = vErr
		return
	}

	var record persistence.ClassRecord
	record, err = s.mutateClass(ctx, s.byClassID(classID), func(current scheduler.Class) (scheduler.Class, error) {
		out := current.Clone()
		change(&out)
		return out, nil
	})
	if err != nil {
		return
	}
	class = s.classDetails(record, nil)
	return
}

// ReassignInstructor hands the class and every session taught by oldID to
// newID. Sessions assigned to someone else keep their instructor.
func (s *ClassService) ReassignInstructor(ctx context.Context, classID, oldID, newID string) (class ClassDetails, err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ReassignInstructor", "class_id", classID, "from", oldID, "to", newID)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to reassign instructor", err)
			return
		}
		logger.InfoContext(ctx, "instructor reassigned")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(oldID) == "" {
		vErr.add("old_instructor_id", "is required")
	}
	if strings.TrimSpace(newID) == "" {
		vErr.add("new_instructor_id", "is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var record persistence.ClassRecord
	record, err = s.mutateClass(ctx, s.byClassID(classID), func(current scheduler.Class) (scheduler.Class, error) {
		out := scheduler.ReassignInstructor(current, oldID, newID)
		if out.Config.InstructorID == oldID {
			out.Config.InstructorID = newID
		}
		return out, nil
	})
	if err != nil {
		return
	}
	s.names.Forget(oldID)
	class = s.classDetails(record, nil)
	return
}

// classLoader reads the current stored state of the class to mutate.
type classLoader func(ctx context.Context) (persistence.ClassRecord, error)

func (s *ClassService) byClassID(classID string) classLoader {
	return func(ctx context.Context) (persistence.ClassRecord, error) {
		return s.classes.GetClass(ctx, classID)
	}
}

func (s *ClassService) bySessionAcronym(acronym string) classLoader {
	return func(ctx context.Context) (persistence.ClassRecord, error) {
		return s.classes.GetClassBySessionAcronym(ctx, acronym)
	}
}

// mutateClass loads the whole class, applies change and writes the result
// back against the version that was read. Losing the race re-reads and
// re-applies, up to saveAttempts times.
func (s *ClassService) mutateClass(ctx context.Context, load classLoader, change func(scheduler.Class) (scheduler.Class, error)) (persistence.ClassRecord, error) {
	if s.classes == nil {
		return persistence.ClassRecord{}, fmt.Errorf("class repository not configured")
	}

	var lastErr error
	for attempt := 1; attempt <= s.saveAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return persistence.ClassRecord{}, err
		}
		record, err := load(ctx)
		if err != nil {
			return persistence.ClassRecord{}, mapRepoError(err)
		}
		updated, err := change(record.Class)
		if err != nil {
			return persistence.ClassRecord{}, mapSchedulerError(err)
		}
		saved, err := s.classes.SaveClass(ctx, updated, record.Version, s.now())
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, persistence.ErrConflict) {
			return persistence.ClassRecord{}, mapRepoError(err)
		}
		lastErr = err
		s.loggerWith(ctx, "mutateClass", "class_id", record.Class.ID, "attempt", attempt).
			WarnContext(ctx, "class changed during mutation, retrying")
	}
	return persistence.ClassRecord{}, fmt.Errorf("%w: %w", ErrConflict, lastErr)
}

func (s *ClassService) findClass(ctx context.Context, idOrAcronym string) (persistence.ClassRecord, error) {
	record, err := s.classes.GetClass(ctx, idOrAcronym)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return persistence.ClassRecord{}, mapRepoError(err)
	}
	record, err = s.classes.GetClassByAcronym(ctx, strings.ToUpper(strings.TrimSpace(idOrAcronym)))
	if err != nil {
		return persistence.ClassRecord{}, mapRepoError(err)
	}
	return record, nil
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, persistence.ErrDuplicate):
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	case errors.Is(err, persistence.ErrConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{}
		vErr.add("class", err.Error())
		return vErr
	}
	return err
}

func mapSchedulerError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, scheduler.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, scheduler.ErrDateOccupied):
		return fmt.Errorf("%w: %w", ErrDateOccupied, err)
	case errors.Is(err, scheduler.ErrInvariantViolation):
		return fmt.Errorf("%w: %w", ErrInvariantViolation, err)
	case errors.Is(err, scheduler.ErrInvalidSchedule):
		vErr := &ValidationError{}
		vErr.add("schedule", err.Error())
		return vErr
	case errors.Is(err, scheduler.ErrInvalidAdHocType):
		vErr := &ValidationError{}
		vErr.add("type", err.Error())
		return vErr
	case errors.Is(err, scheduler.ErrNoParticipants):
		vErr := &ValidationError{}
		vErr.add("participants", "must include someone besides the instructor")
		return vErr
	}
	return err
}
