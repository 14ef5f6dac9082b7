package testfixtures

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/example/class-scheduler/internal/persistence"
	"github.com/example/class-scheduler/internal/recurrence"
	"github.com/example/class-scheduler/internal/scheduler"
	"github.com/example/class-scheduler/internal/timemath"
)

var (
	classCounter  uint64
	adHocCounter  uint64
	personCounter uint64
)

var referenceTime = time.Date(2021, time.December, 1, 0, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It precedes the first session of the reference class.
func ReferenceTime() time.Time {
	return referenceTime
}

// Scheduler returns a scheduler with a small zone cache.
func Scheduler() *scheduler.Scheduler {
	return scheduler.New(recurrence.NewEngine(timemath.NewZones(8)))
}

// ------------------------------ Class fixtures ------------------------------

// ClassFixture describes a class configuration plus its enrolment. The
// defaults reproduce the MTSTANDG1 reference class: Mondays and Wednesdays at
// 13:00 in Los Angeles, 24 one-hour sessions from 2021-12-06.
type ClassFixture struct {
	ID           string
	Config       scheduler.ClassConfig
	Participants []string
}

// ClassOption configures the generated class fixture.
type ClassOption func(*ClassFixture)

// NewClassFixture returns the reference class with optional overrides. IDs
// are unique per call.
func NewClassFixture(opts ...ClassOption) ClassFixture {
	idx := atomic.AddUint64(&classCounter, 1)
	fixture := ClassFixture{
		ID: fmt.Sprintf("class-%03d", idx),
		Config: scheduler.ClassConfig{
			Name:         "Moving Together Standing",
			Acronym:      "MTSTANDG1",
			InstructorID: "instructor-001",
			HelpMessage:  "Call 555-0100 for help",
			AnchorDate:   time.Date(2021, time.December, 6, 0, 0, 0, 0, time.UTC),
			Schedule: recurrence.Schedule{
				Weekdays:  []time.Weekday{time.Monday, time.Wednesday},
				StartTime: timemath.TimeOfDay{Hour: 13, Minute: 0, Timezone: "America/Los_Angeles"},
			},
			SessionCount:       24,
			DurationMinutes:    60,
			LobbyBufferMinutes: 15,
		},
		Participants: []string{"participant-001", "participant-002"},
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithClassID overrides the generated class ID.
func WithClassID(id string) ClassOption {
	return func(f *ClassFixture) {
		f.ID = id
	}
}

// WithClassAcronym overrides the class acronym.
func WithClassAcronym(acronym string) ClassOption {
	return func(f *ClassFixture) {
		f.Config.Acronym = acronym
	}
}

// WithClassName overrides the class name used for session display names.
func WithClassName(name string) ClassOption {
	return func(f *ClassFixture) {
		f.Config.Name = name
	}
}

// WithWeekdays replaces the weekday pattern.
func WithWeekdays(days ...time.Weekday) ClassOption {
	return func(f *ClassFixture) {
		f.Config.Schedule.Weekdays = append([]time.Weekday(nil), days...)
	}
}

// WithStartTime replaces the local start time and zone.
func WithStartTime(hour, minute int, timezone string) ClassOption {
	return func(f *ClassFixture) {
		f.Config.Schedule.StartTime = timemath.TimeOfDay{Hour: hour, Minute: minute, Timezone: timezone}
	}
}

// WithAnchorDate sets the recurrence anchor.
func WithAnchorDate(date time.Time) ClassOption {
	return func(f *ClassFixture) {
		f.Config.AnchorDate = date
	}
}

// WithSessionCount sets the number of generated sessions.
func WithSessionCount(n int) ClassOption {
	return func(f *ClassFixture) {
		f.Config.SessionCount = n
	}
}

// WithDuration sets the session duration and lobby buffer in minutes.
func WithDuration(durationMinutes, lobbyMinutes int) ClassOption {
	return func(f *ClassFixture) {
		f.Config.DurationMinutes = durationMinutes
		f.Config.LobbyBufferMinutes = lobbyMinutes
	}
}

// WithInstructor sets the class instructor.
func WithInstructor(id string) ClassOption {
	return func(f *ClassFixture) {
		f.Config.InstructorID = id
	}
}

// WithParticipants replaces the enrolled participants.
func WithParticipants(ids ...string) ClassOption {
	return func(f *ClassFixture) {
		f.Participants = append([]string(nil), ids...)
	}
}

// Class returns the fixture as a class aggregate without sessions.
func (f ClassFixture) Class() scheduler.Class {
	return scheduler.Class{
		ID:           f.ID,
		Config:       f.Config,
		Participants: append([]string(nil), f.Participants...),
	}
}

// Build generates the session list, failing the test on error.
func (f ClassFixture) Build(tb testing.TB) scheduler.Class {
	tb.Helper()
	class, err := Scheduler().Apply(f.Class(), f.Config)
	if err != nil {
		tb.Fatalf("failed to build class %s: %v", f.Config.Acronym, err)
	}
	return class
}

// ----------------------------- Ad-hoc fixtures ------------------------------

// AdHocFixture describes an ad-hoc session request.
type AdHocFixture struct {
	ID     uuid.UUID
	Params scheduler.AdHocParams
}

// AdHocOption configures the generated ad-hoc fixture.
type AdHocOption func(*AdHocFixture)

// NewAdHocFixture returns a tech check starting one day after ReferenceTime.
// The UUID is derived from a counter so acronyms stay deterministic.
func NewAdHocFixture(opts ...AdHocOption) AdHocFixture {
	idx := atomic.AddUint64(&adHocCounter, 1)
	fixture := AdHocFixture{
		ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("adhoc-%03d", idx))),
		Params: scheduler.AdHocParams{
			Name:            fmt.Sprintf("Tech Check %03d", idx),
			Type:            scheduler.AdHocTechCheck,
			Start:           referenceTime.Add(24 * time.Hour),
			Timezone:        "America/Los_Angeles",
			DurationMinutes: 30,
			InstructorID:    "instructor-002",
			Participants:    []string{"participant-001"},
		},
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAdHocStart sets the requested start instant.
func WithAdHocStart(start time.Time) AdHocOption {
	return func(f *AdHocFixture) {
		f.Params.Start = start
	}
}

// WithAdHocParticipants replaces the participants.
func WithAdHocParticipants(ids ...string) AdHocOption {
	return func(f *AdHocFixture) {
		f.Params.Participants = append([]string(nil), ids...)
	}
}

// WithAdHocInstructor sets the instructor.
func WithAdHocInstructor(id string) AdHocOption {
	return func(f *AdHocFixture) {
		f.Params.InstructorID = id
	}
}

// Build creates the session, failing the test on error.
func (f AdHocFixture) Build(tb testing.TB) scheduler.AdHocSession {
	tb.Helper()
	session, err := Scheduler().NewAdHocSession(f.Params, f.ID, referenceTime)
	if err != nil {
		tb.Fatalf("failed to build ad-hoc session: %v", err)
	}
	return session
}

// ---------------------------- Directory fixtures ----------------------------

// NewDisplayRecord returns a deterministic directory record. An empty id
// yields a generated one.
func NewDisplayRecord(id string) persistence.DisplayRecord {
	idx := atomic.AddUint64(&personCounter, 1)
	if id == "" {
		id = fmt.Sprintf("person-%03d", idx)
	}
	return persistence.DisplayRecord{
		ID:    id,
		Name:  fmt.Sprintf("Person %03d", idx),
		Email: fmt.Sprintf("%s@example.com", id),
	}
}
