// Package scheduler builds and edits the ordered session list of a class.
// Every operation takes a Class value and returns a new one; nothing here
// performs I/O.
package scheduler

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/example/class-scheduler/internal/recurrence"
	"github.com/example/class-scheduler/internal/timemath"
)

// Scheduler generates and mutates session lists.
type Scheduler struct {
	engine *recurrence.Engine
}

// New constructs a Scheduler. A nil engine falls back to one without a zone cache.
func New(engine *recurrence.Engine) *Scheduler {
	if engine == nil {
		engine = recurrence.NewEngine(nil)
	}
	return &Scheduler{engine: engine}
}

// Engine exposes the recurrence engine used by the scheduler.
func (s *Scheduler) Engine() *recurrence.Engine {
	return s.engine
}

// ValidateConfig reports why cfg cannot produce a session list.
func (s *Scheduler) ValidateConfig(cfg ClassConfig) error {
	switch {
	case strings.TrimSpace(cfg.Acronym) == "":
		return fmt.Errorf("%w: class acronym is required", ErrInvalidSchedule)
	case cfg.SessionCount < 0:
		return fmt.Errorf("%w: session count %d is negative", ErrInvalidSchedule, cfg.SessionCount)
	case cfg.DurationMinutes <= 0:
		return fmt.Errorf("%w: duration %d must be positive", ErrInvalidSchedule, cfg.DurationMinutes)
	case cfg.LobbyBufferMinutes < 0:
		return fmt.Errorf("%w: lobby buffer %d is negative", ErrInvalidSchedule, cfg.LobbyBufferMinutes)
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	if _, err := s.engine.Location(cfg.Schedule); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	return nil
}

// Build generates the complete session list for cfg. The result replaces
// whatever list the class held before.
func (s *Scheduler) Build(cfg ClassConfig) ([]Session, error) {
	if err := s.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	loc, err := s.engine.Location(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	occurrences, err := s.engine.GenerateOccurrences(cfg.AnchorDate, cfg.Schedule, cfg.SessionCount, recurrence.GenerateOptions{IncludeAnchor: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	sessions := make([]Session, 0, len(occurrences))
	for _, occ := range occurrences {
		ts := timemath.DeriveSessionTimestamps(occ.Date, cfg.Schedule.StartTime, loc, cfg.DurationMinutes, cfg.LobbyBufferMinutes)
		session := Session{
			InstructorID: cfg.InstructorID,
			Timezone:     loc.String(),
			HelpMessage:  cfg.HelpMessage,
		}
		applyTimestamps(&session, ts)
		sessions = append(sessions, session)
	}

	sessions = Reorder(cfg, sessions)
	if err := Validate(sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Apply replaces the configuration and the whole session list of class.
func (s *Scheduler) Apply(class Class, cfg ClassConfig) (Class, error) {
	sessions, err := s.Build(cfg)
	if err != nil {
		return Class{}, err
	}
	out := class.Clone()
	out.Config = cfg
	out.Sessions = sessions
	return out, nil
}

// Reorder sorts sessions by local date, keeping the prior relative order of
// sessions on the same date, then renumbers every entry and regenerates its
// name and acronym. The input slice is not modified.
func Reorder(cfg ClassConfig, sessions []Session) []Session {
	out := slices.Clone(sessions)
	slices.SortStableFunc(out, func(a, b Session) int {
		return strings.Compare(a.LocalDate, b.LocalDate)
	})
	for i := range out {
		out[i].Sequence = i + 1
		out[i].Name = SessionName(cfg.Name, out[i].Sequence)
		out[i].Acronym = SessionAcronym(cfg.Acronym, out[i].LocalDate)
	}
	return out
}

// SessionName renders the display name of the n-th session.
func SessionName(className string, n int) string {
	return className + ", Session " + strconv.Itoa(n)
}

// SessionAcronym renders {classAcronym}-{YYMMDD}. A malformed local date is
// kept verbatim so that Validate can report it.
func SessionAcronym(classAcronym, localDate string) string {
	fragment, err := timemath.AcronymDate(localDate)
	if err != nil {
		fragment = localDate
	}
	return classAcronym + "-" + fragment
}

func applyTimestamps(session *Session, ts timemath.Timestamps) {
	session.LocalDate = ts.LocalDate
	session.ScheduledStart = ts.Start
	session.ScheduledEnd = ts.End
	session.LobbyOpen = ts.LobbyOpen
	session.LobbyClose = ts.LobbyClose
}

func sessionDate(session Session) (time.Time, error) {
	return timemath.ParseDate(session.LocalDate)
}
