package upcoming_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/class-scheduler/internal/testfixtures"
	"github.com/example/class-scheduler/internal/upcoming"
)

func TestFilters(t *testing.T) {
	class := testfixtures.NewClassFixture().Build(t)
	sessions := class.Sessions
	sessions[1].InstructorID = "substitute-001"

	first := sessions[0] // 2021-12-06 21:00Z, lobby 20:45Z..22:15Z

	t.Run("on date", func(t *testing.T) {
		got := upcoming.Apply(sessions, upcoming.OnDate("2021-12-08"))
		require.Len(t, got, 1)
		assert.Equal(t, "MTSTANDG1-211208", got[0].Acronym)
	})

	t.Run("taught by", func(t *testing.T) {
		got := upcoming.Apply(sessions, upcoming.TaughtBy("substitute-001"))
		require.Len(t, got, 1)
		assert.Equal(t, "MTSTANDG1-211208", got[0].Acronym)
	})

	t.Run("starting within a window", func(t *testing.T) {
		now := first.ScheduledStart.Add(-2 * time.Hour)
		assert.Len(t, upcoming.Apply(sessions, upcoming.StartingWithin(now, 2*time.Hour)), 1)
		assert.Empty(t, upcoming.Apply(sessions, upcoming.StartingWithin(now, time.Hour)))
		assert.Len(t, upcoming.Apply(sessions, upcoming.StartingWithin(now, 50*time.Hour)), 2)
	})

	t.Run("open now includes the lobby bounds", func(t *testing.T) {
		assert.Len(t, upcoming.Apply(sessions, upcoming.OpenNow(first.LobbyOpen)), 1)
		assert.Len(t, upcoming.Apply(sessions, upcoming.OpenNow(first.LobbyClose)), 1)
		assert.Empty(t, upcoming.Apply(sessions, upcoming.OpenNow(first.LobbyClose.Add(time.Second))))
	})

	t.Run("running at", func(t *testing.T) {
		assert.Len(t, upcoming.Apply(sessions, upcoming.RunningAt(first.ScheduledEnd)), 1)
		assert.Empty(t, upcoming.Apply(sessions, upcoming.RunningAt(first.LobbyOpen)))
	})

	t.Run("filters combine", func(t *testing.T) {
		got := upcoming.Apply(sessions, upcoming.TaughtBy("instructor-001"), upcoming.OnDate("2021-12-08"))
		assert.Empty(t, got)
	})

	t.Run("first upcoming", func(t *testing.T) {
		got, ok := upcoming.FirstUpcoming(sessions, first.LobbyClose.Add(time.Minute))
		require.True(t, ok)
		assert.Equal(t, "MTSTANDG1-211208", got.Acronym)

		got, ok = upcoming.FirstUpcoming(sessions, first.ScheduledStart)
		require.True(t, ok)
		assert.Equal(t, first.Acronym, got.Acronym)

		_, ok = upcoming.FirstUpcoming(sessions, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC))
		assert.False(t, ok)
	})
}
