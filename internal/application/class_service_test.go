package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/class-scheduler/internal/scheduler"
)

func TestClassService_ScheduleClass(t *testing.T) {
	t.Run("builds and stores the reference class", func(t *testing.T) {
		env := newTestEnv(t)
		class := env.scheduleReference(t)

		if class.Acronym != "MTSTANDG1" {
			t.Fatalf("expected acronym to be upper-cased, got %q", class.Acronym)
		}
		if class.Version != 1 {
			t.Fatalf("expected version 1, got %d", class.Version)
		}
		if class.State != scheduler.ClassOpen {
			t.Fatalf("expected open class before the first session, got %s", class.State)
		}
		if len(class.Sessions) != 24 {
			t.Fatalf("expected 24 sessions, got %d", len(class.Sessions))
		}
		first, last := class.Sessions[0], class.Sessions[23]
		if first.Acronym != "MTSTANDG1-211206" || last.Acronym != "MTSTANDG1-220223" {
			t.Fatalf("unexpected session range %s..%s", first.Acronym, last.Acronym)
		}
		if want := time.Date(2021, time.December, 6, 21, 0, 0, 0, time.UTC); !first.ScheduledStart.Equal(want) {
			t.Fatalf("expected first start %s, got %s", want, first.ScheduledStart)
		}
		if first.Name != "Moving Together Standing, Session 1" {
			t.Fatalf("unexpected session name %q", first.Name)
		}
		if got := class.Weekdays; len(got) != 2 || got[0] != "mon" || got[1] != "wed" {
			t.Fatalf("expected normalized weekdays, got %v", got)
		}
		if class.StartTime != "13:00" || class.StartDate != "2021-12-06" {
			t.Fatalf("unexpected schedule echo %s %s", class.StartDate, class.StartTime)
		}
	})

	t.Run("collects field errors", func(t *testing.T) {
		env := newTestEnv(t)
		input := referenceInput()
		input.Name = ""
		input.Weekdays = []string{"mon", "funday"}
		input.Timezone = "Mars/Olympus_Mons"
		input.StartTime = "25:00"

		_, err := env.service.ScheduleClass(context.Background(), input)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		for _, field := range []string{"name", "weekdays", "timezone", "start_time"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s to be reported, got %v", field, vErr.FieldErrors)
			}
		}
		if len(env.classes.records) != 0 {
			t.Fatalf("expected nothing to be stored")
		}
	})

	t.Run("rejects a taken acronym", func(t *testing.T) {
		env := newTestEnv(t)
		env.scheduleReference(t)

		_, err := env.service.ScheduleClass(context.Background(), referenceInput())
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("nil service", func(t *testing.T) {
		var svc *ClassService
		if _, err := svc.ScheduleClass(context.Background(), referenceInput()); err == nil {
			t.Fatalf("expected error from nil service")
		}
	})
}

func TestClassService_GetClass(t *testing.T) {
	env := newTestEnv(t)
	created := env.scheduleReference(t)

	byID, err := env.service.GetClass(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Sessions[0].InstructorName != "Pat Instructor" {
		t.Fatalf("expected enriched instructor name, got %q", byID.Sessions[0].InstructorName)
	}

	byAcronym, err := env.service.GetClass(context.Background(), "mtstandg1")
	if err != nil {
		t.Fatalf("get by acronym: %v", err)
	}
	if byAcronym.ID != created.ID {
		t.Fatalf("expected acronym lookup to find %s, got %s", created.ID, byAcronym.ID)
	}

	if _, err := env.service.GetClass(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClassService_UpdateClassRebuildsSessions(t *testing.T) {
	env := newTestEnv(t)
	created := env.scheduleReference(t)

	input := referenceInput()
	input.SessionCount = 4
	input.Weekdays = []string{"tue"}

	updated, err := env.service.UpdateClass(context.Background(), created.ID, input)
	if err != nil {
		t.Fatalf("update class: %v", err)
	}
	if len(updated.Sessions) != 4 || updated.Sessions[0].Acronym != "MTSTANDG1-211207" {
		t.Fatalf("expected four Tuesday sessions, got %d starting %s", len(updated.Sessions), updated.Sessions[0].Acronym)
	}
	if updated.Version != 2 {
		t.Fatalf("expected version 2, got %d", updated.Version)
	}
	if len(updated.Participants) != 2 {
		t.Fatalf("expected enrolment to survive a rebuild, got %v", updated.Participants)
	}
}

func TestClassService_Enrolment(t *testing.T) {
	env := newTestEnv(t)
	created := env.scheduleReference(t)
	ctx := context.Background()

	class, err := env.service.EnrollParticipant(ctx, created.ID, "participant-003")
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if len(class.Participants) != 3 {
		t.Fatalf("expected three participants, got %v", class.Participants)
	}

	if class, err = env.service.EnrollParticipant(ctx, created.ID, "participant-003"); err != nil || len(class.Participants) != 3 {
		t.Fatalf("expected second enrolment to be a no-op, got %v (%v)", class.Participants, err)
	}

	class, err = env.service.WithdrawParticipant(ctx, created.ID, "participant-001")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if class.Participants[0] != "participant-002" || len(class.Participants) != 2 {
		t.Fatalf("unexpected participants after withdrawal %v", class.Participants)
	}

	_, err = env.service.EnrollParticipant(ctx, created.ID, " ")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for blank user, got %v", err)
	}
}

func TestClassService_ReassignInstructor(t *testing.T) {
	env := newTestEnv(t)
	created := env.scheduleReference(t)
	ctx := context.Background()

	sub := "substitute-001"
	if _, err := env.service.RescheduleSession(ctx, RescheduleInput{SessionAcronym: "MTSTANDG1-211208", InstructorID: &sub}); err != nil {
		t.Fatalf("assign substitute: %v", err)
	}

	class, err := env.service.ReassignInstructor(ctx, created.ID, "instructor-001", "instructor-002")
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if class.InstructorID != "instructor-002" {
		t.Fatalf("expected class instructor to change, got %s", class.InstructorID)
	}
	for _, session := range class.Sessions {
		want := "instructor-002"
		if session.Acronym == "MTSTANDG1-211208" {
			want = sub
		}
		if session.InstructorID != want {
			t.Fatalf("session %s taught by %s, want %s", session.Acronym, session.InstructorID, want)
		}
	}

	_, err = env.service.ReassignInstructor(ctx, created.ID, "", "instructor-002")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClassService_DeleteClass(t *testing.T) {
	env := newTestEnv(t)
	created := env.scheduleReference(t)

	if err := env.service.DeleteClass(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := env.service.DeleteClass(context.Background(), created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestClassService_OptimisticReplacement(t *testing.T) {
	t.Run("retries after losing a race", func(t *testing.T) {
		env := newTestEnv(t)
		created := env.scheduleReference(t)

		raced := false
		env.classes.beforeSave = func(s *classStoreStub) {
			if !raced {
				raced = true
				s.bump(created.ID)
			}
		}

		class, err := env.service.SkipSession(context.Background(), "MTSTANDG1-211206")
		if err != nil {
			t.Fatalf("skip: %v", err)
		}
		if env.classes.saves != 2 {
			t.Fatalf("expected a second save attempt, got %d", env.classes.saves)
		}
		if class.Version != 3 {
			t.Fatalf("expected version 3 after the racing write and ours, got %d", class.Version)
		}
	})

	t.Run("gives up after repeated conflicts", func(t *testing.T) {
		env := newTestEnv(t)
		created := env.scheduleReference(t)
		env.classes.beforeSave = func(s *classStoreStub) { s.bump(created.ID) }

		_, err := env.service.SkipSession(context.Background(), "MTSTANDG1-211206")
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
		if env.classes.saves != DefaultSaveAttempts {
			t.Fatalf("expected %d attempts, got %d", DefaultSaveAttempts, env.classes.saves)
		}
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		env := newTestEnv(t)
		env.scheduleReference(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := env.service.SkipSession(ctx, "MTSTANDG1-211206"); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

func TestClassService_ScheduleClassFromStartInstant(t *testing.T) {
	t.Run("derives weekday, time and date in the class timezone", func(t *testing.T) {
		env := newTestEnv(t)
		input := referenceInput()
		input.StartDate, input.Weekdays, input.StartTime = "", nil, ""
		// Tuesday 05:30 UTC is still Monday 21:30 in Los Angeles.
		start := time.Date(2021, time.December, 7, 5, 30, 0, 0, time.UTC)
		input.StartAt = &start

		class, err := env.service.ScheduleClass(context.Background(), input)
		if err != nil {
			t.Fatalf("schedule: %v", err)
		}
		if class.StartDate != "2021-12-06" || class.StartTime != "21:30" {
			t.Fatalf("unexpected schedule %s %s", class.StartDate, class.StartTime)
		}
		if len(class.Weekdays) != 1 || class.Weekdays[0] != "mon" {
			t.Fatalf("expected a Monday class, got %v", class.Weekdays)
		}
		if !class.Sessions[0].ScheduledStart.Equal(start) || class.Sessions[1].Acronym != "MTSTANDG1-211213" {
			t.Fatalf("unexpected sessions %s / %s", class.Sessions[0].ScheduledStart, class.Sessions[1].Acronym)
		}
	})

	t.Run("cannot be combined with an explicit schedule", func(t *testing.T) {
		env := newTestEnv(t)
		input := referenceInput()
		start := time.Date(2021, time.December, 6, 21, 0, 0, 0, time.UTC)
		input.StartAt = &start

		_, err := env.service.ScheduleClass(context.Background(), input)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, ok := vErr.FieldErrors["start_at"]; !ok {
			t.Fatalf("expected start_at error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("unknown timezone", func(t *testing.T) {
		env := newTestEnv(t)
		input := referenceInput()
		input.StartDate, input.Weekdays, input.StartTime = "", nil, ""
		input.Timezone = "Mars/Olympus_Mons"
		start := time.Date(2021, time.December, 6, 21, 0, 0, 0, time.UTC)
		input.StartAt = &start

		_, err := env.service.ScheduleClass(context.Background(), input)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, ok := vErr.FieldErrors["timezone"]; !ok {
			t.Fatalf("expected timezone error, got %v", vErr.FieldErrors)
		}
	})
}

func TestClassService_ScheduleClassWithoutSessions(t *testing.T) {
	env := newTestEnv(t)
	input := referenceInput()
	input.SessionCount = 0

	class, err := env.service.ScheduleClass(context.Background(), input)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(class.Sessions) != 0 || class.State != scheduler.ClassHold {
		t.Fatalf("expected an empty class on hold, got %d sessions in %s", len(class.Sessions), class.State)
	}
}
