package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/example/class-scheduler/internal/persistence"
	"github.com/example/class-scheduler/internal/recurrence"
	"github.com/example/class-scheduler/internal/scheduler"
	"github.com/example/class-scheduler/internal/timemath"
)

var testNow = time.Date(2021, time.December, 1, 0, 0, 0, 0, time.UTC)

// classStoreStub keeps classes in memory with the same version semantics as
// the SQLite repository.
type classStoreStub struct {
	mu      sync.Mutex
	records map[string]persistence.ClassRecord

	// beforeSave runs ahead of every SaveClass, letting tests interfere
	// with the stored state the way a concurrent writer would.
	beforeSave func(s *classStoreStub)
	saves      int
	createErr  error
}

func newClassStoreStub() *classStoreStub {
	return &classStoreStub{records: make(map[string]persistence.ClassRecord)}
}

func (r *classStoreStub) CreateClass(ctx context.Context, class scheduler.Class, at time.Time) (persistence.ClassRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return persistence.ClassRecord{}, r.createErr
	}
	for _, existing := range r.records {
		if existing.Class.Config.Acronym == class.Config.Acronym {
			return persistence.ClassRecord{}, fmt.Errorf("%w: acronym %s", persistence.ErrDuplicate, class.Config.Acronym)
		}
	}
	record := persistence.ClassRecord{Class: class.Clone(), Version: 1, CreatedAt: at, UpdatedAt: at}
	r.records[class.ID] = record
	return record, nil
}

func (r *classStoreStub) GetClass(ctx context.Context, id string) (persistence.ClassRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return persistence.ClassRecord{}, persistence.ErrNotFound
	}
	record.Class = record.Class.Clone()
	return record, nil
}

func (r *classStoreStub) GetClassByAcronym(ctx context.Context, acronym string) (persistence.ClassRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.Class.Config.Acronym == acronym {
			record.Class = record.Class.Clone()
			return record, nil
		}
	}
	return persistence.ClassRecord{}, persistence.ErrNotFound
}

func (r *classStoreStub) GetClassBySessionAcronym(ctx context.Context, sessionAcronym string) (persistence.ClassRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.Class.FindSession(sessionAcronym) >= 0 {
			record.Class = record.Class.Clone()
			return record, nil
		}
	}
	return persistence.ClassRecord{}, persistence.ErrNotFound
}

func (r *classStoreStub) SaveClass(ctx context.Context, class scheduler.Class, expectedVersion int, at time.Time) (persistence.ClassRecord, error) {
	if r.beforeSave != nil {
		r.beforeSave(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	record, ok := r.records[class.ID]
	if !ok {
		return persistence.ClassRecord{}, persistence.ErrNotFound
	}
	if record.Version != expectedVersion {
		return persistence.ClassRecord{}, persistence.ErrConflict
	}
	record.Class = class.Clone()
	record.Version++
	record.UpdatedAt = at
	r.records[class.ID] = record
	return record, nil
}

func (r *classStoreStub) DeleteClass(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *classStoreStub) ListClassesForUser(ctx context.Context, userID string) ([]persistence.ClassRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []persistence.ClassRecord
	for _, record := range r.records {
		if record.Class.HasParticipant(userID) || record.Class.IsInstructor(userID) {
			record.Class = record.Class.Clone()
			out = append(out, record)
		}
	}
	slices.SortFunc(out, func(a, b persistence.ClassRecord) int {
		if a.Class.Config.Acronym < b.Class.Config.Acronym {
			return -1
		}
		if a.Class.Config.Acronym > b.Class.Config.Acronym {
			return 1
		}
		return 0
	})
	return out, nil
}

// bump simulates another writer saving the class in between.
func (r *classStoreStub) bump(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record := r.records[id]
	record.Version++
	r.records[id] = record
}

type adhocStoreStub struct {
	created []persistence.AdHocRecord
	listErr error
}

func (r *adhocStoreStub) CreateAdHocSession(ctx context.Context, session scheduler.AdHocSession, at time.Time) (persistence.AdHocRecord, error) {
	record := persistence.AdHocRecord{Session: session, CreatedAt: at}
	r.created = append(r.created, record)
	return record, nil
}

func (r *adhocStoreStub) GetAdHocSession(ctx context.Context, acronym string) (persistence.AdHocRecord, error) {
	for _, record := range r.created {
		if record.Session.Acronym == acronym {
			return record, nil
		}
	}
	return persistence.AdHocRecord{}, persistence.ErrNotFound
}

func (r *adhocStoreStub) ListAdHocSessionsForUser(ctx context.Context, userID string) ([]persistence.AdHocRecord, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []persistence.AdHocRecord
	for _, record := range r.created {
		if record.Session.InstructorID == userID || slices.Contains(record.Session.Participants, userID) {
			out = append(out, record)
		}
	}
	return out, nil
}

type directoryStub struct {
	records map[string]persistence.DisplayRecord
	calls   [][]string
	err     error
}

func (d *directoryStub) GetDisplayRecordsByIDs(ctx context.Context, ids []string) (map[string]persistence.DisplayRecord, error) {
	d.calls = append(d.calls, slices.Clone(ids))
	if d.err != nil {
		return nil, d.err
	}
	out := make(map[string]persistence.DisplayRecord)
	for _, id := range ids {
		if record, ok := d.records[id]; ok {
			out[id] = record
		}
	}
	return out, nil
}

func (d *directoryStub) PutDisplayRecord(ctx context.Context, record persistence.DisplayRecord) error {
	if d.err != nil {
		return d.err
	}
	d.records[record.ID] = record
	return nil
}

func newTestDirectory() *directoryStub {
	return &directoryStub{records: map[string]persistence.DisplayRecord{
		"instructor-001": {ID: "instructor-001", Name: "Pat Instructor", Email: "pat@example.com"},
		"instructor-002": {ID: "instructor-002", Name: "Sam Substitute", Email: "sam@example.com"},
	}}
}

type testEnv struct {
	service   *ClassService
	classes   *classStoreStub
	adhoc     *adhocStoreStub
	directory *directoryStub
	now       time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		classes:   newClassStoreStub(),
		adhoc:     &adhocStoreStub{},
		directory: newTestDirectory(),
		now:       testNow,
	}
	var counter uint32
	env.service = NewClassService(ClassServiceDeps{
		Classes:   env.classes,
		AdHoc:     env.adhoc,
		Directory: env.directory,
		Scheduler: scheduler.New(recurrence.NewEngine(timemath.NewZones(4))),
		IDGenerator: func() uuid.UUID {
			counter++
			return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("test-%d", counter)))
		},
		Now:      func() time.Time { return env.now },
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		LobbyURL: "https://lobby.example.com/session/upcoming",
	})
	return env
}

// referenceInput describes the MTSTANDG1 class: Mondays and Wednesdays at
// 13:00 in Los Angeles, 24 one-hour sessions from 2021-12-06.
func referenceInput() ClassInput {
	return ClassInput{
		Name:               "Moving Together Standing",
		Acronym:            "mtstandg1",
		InstructorID:       "instructor-001",
		HelpMessage:        "Call 555-0100 for help",
		StartDate:          "2021-12-06",
		Weekdays:           []string{"wed", "mon"},
		StartTime:          "13:00",
		Timezone:           "America/Los_Angeles",
		SessionCount:       24,
		DurationMinutes:    60,
		LobbyBufferMinutes: 15,
		Participants:       []string{"participant-001", "participant-002"},
	}
}

func (e *testEnv) scheduleReference(t *testing.T) ClassDetails {
	t.Helper()
	class, err := e.service.ScheduleClass(context.Background(), referenceInput())
	if err != nil {
		t.Fatalf("schedule reference class: %v", err)
	}
	return class
}
