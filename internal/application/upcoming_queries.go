package application

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/example/class-scheduler/internal/persistence"
	"github.com/example/class-scheduler/internal/scheduler"
	"github.com/example/class-scheduler/internal/upcoming"
)

// SessionQuery narrows the sessions returned by ListSessions. Zero fields
// do not filter.
type SessionQuery struct {
	LocalDate      string
	InstructorID   string
	OpenNow        bool
	InSession      bool
	StartingWithin time.Duration
	// FirstUpcoming keeps only the earliest matching session whose lobby is
	// open or still to open.
	FirstUpcoming bool
}

func (q SessionQuery) filters(now time.Time) []upcoming.Filter {
	var filters []upcoming.Filter
	if q.LocalDate != "" {
		filters = append(filters, upcoming.OnDate(q.LocalDate))
	}
	if q.InstructorID != "" {
		filters = append(filters, upcoming.TaughtBy(q.InstructorID))
	}
	if q.OpenNow {
		filters = append(filters, upcoming.OpenNow(now))
	}
	if q.InSession {
		filters = append(filters, upcoming.RunningAt(now))
	}
	if q.StartingWithin > 0 {
		filters = append(filters, upcoming.StartingWithin(now, q.StartingWithin))
	}
	return filters
}

func (q SessionQuery) apply(sessions []scheduler.Session, now time.Time) []scheduler.Session {
	matched := upcoming.Apply(sessions, q.filters(now)...)
	if !q.FirstUpcoming {
		return matched
	}
	first, ok := upcoming.FirstUpcoming(matched, now)
	if !ok {
		return nil
	}
	return []scheduler.Session{first}
}

// ListSessions returns the sessions of a class matching query, enriched
// with instructor display records.
func (s *ClassService) ListSessions(ctx context.Context, idOrAcronym string, query SessionQuery) (sessions []SessionView, err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}
	if s.classes == nil {
		err = fmt.Errorf("class repository not configured")
		return
	}

	var record persistence.ClassRecord
	record, err = s.findClass(ctx, idOrAcronym)
	if err != nil {
		return
	}
	return s.EnrichSessions(ctx, query.apply(record.Class.Sessions, s.now()))
}

// EnrichSessions attaches instructor display records to sessions. All
// instructors are resolved with one directory query; users missing from
// the directory are left without a name.
func (s *ClassService) EnrichSessions(ctx context.Context, sessions []scheduler.Session) (views []SessionView, err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}

	var names map[string]persistence.DisplayRecord
	names, err = s.lookupNames(ctx, sessionInstructors(sessions))
	if err != nil {
		logFailure(ctx, s.loggerWith(ctx, "EnrichSessions"), "failed to resolve instructors", err)
		return
	}

	now := s.now()
	views = make([]SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, sessionView(session, names, now))
	}
	return
}

// UpcomingBanner resolves the session userID should see next across their
// classes and ad-hoc sessions and describes it for the banner. A zero at
// means now.
func (s *ClassService) UpcomingBanner(ctx context.Context, userID string, at time.Time) (banner upcoming.Banner, err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}
	if at.IsZero() {
		at = s.now()
	}

	logger := s.loggerWith(ctx, "UpcomingBanner", "user_id", userID)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to resolve upcoming session", err)
			return
		}
		logger.With("state", banner.State).DebugContext(ctx, "upcoming session resolved")
	}()

	if userID == "" {
		vErr := &ValidationError{}
		vErr.add("user_id", "is required")
		err = vErr
		return
	}
	if s.classes == nil {
		err = fmt.Errorf("class repository not configured")
		return
	}

	var classes []persistence.ClassRecord
	classes, err = s.classes.ListClassesForUser(ctx, userID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	var classCandidates []upcoming.Candidate
	for _, record := range classes {
		classCandidates = append(classCandidates, upcoming.FromClass(record.Class, userID)...)
	}

	var adhocCandidates []upcoming.Candidate
	if s.adhoc != nil {
		var records []persistence.AdHocRecord
		records, err = s.adhoc.ListAdHocSessionsForUser(ctx, userID)
		if err != nil {
			err = mapRepoError(err)
			return
		}
		sessions := make([]scheduler.AdHocSession, 0, len(records))
		for _, record := range records {
			sessions = append(sessions, record.Session)
		}
		adhocCandidates = upcoming.FromAdHoc(sessions)
	}

	nearest := upcoming.Resolve(classCandidates, adhocCandidates, at)

	names := map[string]string{}
	if nearest.Found {
		var records map[string]persistence.DisplayRecord
		records, err = s.lookupNames(ctx, []string{nearest.Candidate.Session.InstructorID})
		if err != nil {
			return
		}
		for id, record := range records {
			names[id] = record.Name
		}
	}

	banner = upcoming.BuildBanner(nearest, at, names, s.lobbyURL, s.scheduler.Engine().Zones())
	return
}

// lookupNames resolves ids through the cache and then a single directory
// query for whatever the cache could not answer.
func (s *ClassService) lookupNames(ctx context.Context, ids []string) (map[string]persistence.DisplayRecord, error) {
	if len(ids) == 0 || s.directory == nil {
		return map[string]persistence.DisplayRecord{}, nil
	}
	records, missing := s.names.Lookup(ids)
	if len(missing) == 0 {
		return records, nil
	}
	found, err := s.directory.GetDisplayRecordsByIDs(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("lookup instructors: %w", err)
	}
	s.names.Store(missing, found)
	maps.Copy(records, found)
	return records, nil
}
