package scheduler_test

import (
	"testing"
	"time"

	"github.com/example/class-scheduler/internal/scheduler"
	"github.com/example/class-scheduler/internal/testfixtures"
)

func TestClassStateAt(t *testing.T) {
	t.Parallel()

	class := testfixtures.NewClassFixture(testfixtures.WithSessionCount(2)).Build(t)
	first := class.Sessions[0]
	last := class.Sessions[1]

	cases := []struct {
		name string
		now  time.Time
		want scheduler.ClassState
	}{
		{name: "before the first session", now: first.LobbyOpen, want: scheduler.ClassOpen},
		{name: "first session started", now: first.ScheduledStart, want: scheduler.ClassInProgress},
		{name: "between sessions", now: first.LobbyClose.Add(time.Hour), want: scheduler.ClassInProgress},
		{name: "at the end of the last session", now: last.ScheduledEnd, want: scheduler.ClassInProgress},
		{name: "after the last session", now: last.ScheduledEnd.Add(time.Second), want: scheduler.ClassDone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := scheduler.ClassStateAt(class, tc.now); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}

	empty := testfixtures.NewClassFixture(testfixtures.WithSessionCount(0)).Build(t)
	if got := scheduler.ClassStateAt(empty, testfixtures.ReferenceTime()); got != scheduler.ClassHold {
		t.Fatalf("expected hold for a class without sessions, got %s", got)
	}
}

func TestClassParticipants(t *testing.T) {
	t.Parallel()

	class := testfixtures.NewClassFixture(testfixtures.WithParticipants("p-1")).Build(t)

	if !class.AddParticipant("p-2") || class.AddParticipant("p-2") || class.AddParticipant("") {
		t.Fatalf("expected only the first add of p-2 to succeed")
	}
	if !class.HasParticipant("p-2") {
		t.Fatalf("expected p-2 to be enrolled")
	}
	if !class.RemoveParticipant("p-1") || class.RemoveParticipant("p-1") {
		t.Fatalf("expected only the first removal of p-1 to succeed")
	}
	if !class.IsInstructor("instructor-001") || class.IsInstructor("p-2") || class.IsInstructor("") {
		t.Fatalf("unexpected instructor detection")
	}

	clone := class.Clone()
	clone.Participants[0] = "changed"
	if class.Participants[0] == "changed" {
		t.Fatalf("expected Clone to copy participants")
	}
}
