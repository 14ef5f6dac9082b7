package recurrence

import (
	"errors"
	"testing"
	"time"

	"github.com/example/class-scheduler/internal/timemath"
)

func laSchedule(days ...time.Weekday) Schedule {
	return Schedule{
		Weekdays:  days,
		StartTime: timemath.TimeOfDay{Hour: 13, Minute: 0, Timezone: "America/Los_Angeles"},
	}
}

func dates(occurrences []Occurrence) []string {
	out := make([]string, len(occurrences))
	for i, occ := range occurrences {
		out[i] = timemath.FormatDate(occ.Date)
	}
	return out
}

func TestEngine_GenerateOccurrences(t *testing.T) {
	t.Parallel()

	engine := NewEngine(timemath.NewZones(8))
	anchor := time.Date(2021, time.December, 6, 0, 0, 0, 0, time.UTC) // Monday

	t.Run("includes a matching anchor when requested", func(t *testing.T) {
		t.Parallel()
		got, err := engine.GenerateOccurrences(anchor, laSchedule(time.Monday, time.Wednesday), 24, GenerateOptions{IncludeAnchor: true})
		if err != nil {
			t.Fatalf("GenerateOccurrences returned error: %v", err)
		}
		if len(got) != 24 {
			t.Fatalf("expected 24 occurrences, got %d", len(got))
		}
		ds := dates(got)
		if ds[0] != "2021-12-06" || ds[1] != "2021-12-08" || ds[2] != "2021-12-13" {
			t.Fatalf("unexpected leading dates %v", ds[:3])
		}
		if ds[23] != "2022-02-23" {
			t.Fatalf("expected last date 2022-02-23, got %s", ds[23])
		}
		if want := time.Date(2021, time.December, 6, 21, 0, 0, 0, time.UTC); !got[0].Start.Equal(want) {
			t.Fatalf("expected first start %v, got %v", want, got[0].Start)
		}
	})

	t.Run("starts strictly after the anchor otherwise", func(t *testing.T) {
		t.Parallel()
		got, err := engine.GenerateOccurrences(anchor, laSchedule(time.Monday, time.Wednesday), 3, GenerateOptions{})
		if err != nil {
			t.Fatalf("GenerateOccurrences returned error: %v", err)
		}
		ds := dates(got)
		want := []string{"2021-12-08", "2021-12-13", "2021-12-15"}
		for i := range want {
			if ds[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, ds)
			}
		}
	})

	t.Run("produces strictly increasing dates on selected weekdays", func(t *testing.T) {
		t.Parallel()
		days := []time.Weekday{time.Tuesday, time.Thursday, time.Saturday}
		got, err := engine.GenerateOccurrences(anchor, laSchedule(days...), 30, GenerateOptions{IncludeAnchor: true})
		if err != nil {
			t.Fatalf("GenerateOccurrences returned error: %v", err)
		}
		allowed := weekdaySet(days)
		for i, occ := range got {
			if _, ok := allowed[occ.Date.Weekday()]; !ok {
				t.Fatalf("occurrence %d on unexpected weekday %s", i, occ.Date.Weekday())
			}
			if i > 0 && !occ.Date.After(got[i-1].Date) {
				t.Fatalf("occurrences not strictly increasing at %d", i)
			}
		}
	})

	t.Run("applies the offset of each specific date", func(t *testing.T) {
		t.Parallel()
		sunday := time.Date(2022, time.March, 6, 0, 0, 0, 0, time.UTC)
		got, err := engine.GenerateOccurrences(sunday, laSchedule(time.Sunday), 2, GenerateOptions{IncludeAnchor: true})
		if err != nil {
			t.Fatalf("GenerateOccurrences returned error: %v", err)
		}
		if got[0].Start.Hour() != 21 || got[1].Start.Hour() != 20 {
			t.Fatalf("expected 21:00Z then 20:00Z across the DST change, got %v and %v", got[0].Start, got[1].Start)
		}
	})

	t.Run("matches weekdays on the local wall clock", func(t *testing.T) {
		t.Parallel()
		tokyo := Schedule{
			Weekdays:  []time.Weekday{time.Monday},
			StartTime: timemath.TimeOfDay{Hour: 23, Minute: 30, Timezone: "Asia/Tokyo"},
		}
		monday := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
		got, err := engine.GenerateOccurrences(monday, tokyo, 1, GenerateOptions{IncludeAnchor: true})
		if err != nil {
			t.Fatalf("GenerateOccurrences returned error: %v", err)
		}
		if timemath.FormatDate(got[0].Date) != "2024-03-04" {
			t.Fatalf("expected Monday 2024-03-04, got %s", timemath.FormatDate(got[0].Date))
		}
		if want := time.Date(2024, time.March, 4, 14, 30, 0, 0, time.UTC); !got[0].Start.Equal(want) {
			t.Fatalf("expected start %v, got %v", want, got[0].Start)
		}
	})

	t.Run("zero count yields no occurrences", func(t *testing.T) {
		t.Parallel()
		got, err := engine.GenerateOccurrences(anchor, laSchedule(time.Monday), 0, GenerateOptions{})
		if err != nil {
			t.Fatalf("GenerateOccurrences returned error: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no occurrences, got %d", len(got))
		}
	})
}

func TestEngine_GenerateOccurrencesRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)
	anchor := time.Date(2021, time.December, 6, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		schedule Schedule
		count    int
		want     error
	}{
		{name: "empty weekdays", schedule: laSchedule(), count: 1, want: ErrNoWeekdays},
		{name: "weekday out of range", schedule: laSchedule(time.Weekday(9)), count: 1, want: ErrInvalidWeekday},
		{name: "negative count", schedule: laSchedule(time.Monday), count: -1, want: ErrInvalidCount},
		{
			name: "unknown timezone",
			schedule: Schedule{
				Weekdays:  []time.Weekday{time.Monday},
				StartTime: timemath.TimeOfDay{Hour: 9, Timezone: "Nowhere/Special"},
			},
			count: 1,
			want:  timemath.ErrUnknownTimezone,
		},
		{
			name: "hour out of range",
			schedule: Schedule{
				Weekdays:  []time.Weekday{time.Monday},
				StartTime: timemath.TimeOfDay{Hour: 25, Timezone: "UTC"},
			},
			count: 1,
			want:  timemath.ErrInvalidTimeOfDay,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.GenerateOccurrences(anchor, tc.schedule, tc.count, GenerateOptions{})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestEngine_Next(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)
	last := time.Date(2022, time.February, 23, 0, 0, 0, 0, time.UTC) // Wednesday
	got, err := engine.Next(last, laSchedule(time.Monday, time.Wednesday))
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if timemath.FormatDate(got.Date) != "2022-02-28" {
		t.Fatalf("expected 2022-02-28, got %s", timemath.FormatDate(got.Date))
	}
}

func TestEngine_ScheduleFromInstant(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)
	instant := time.Date(2021, time.December, 7, 2, 30, 0, 0, time.UTC)
	got, err := engine.ScheduleFromInstant(instant, "America/Los_Angeles")
	if err != nil {
		t.Fatalf("ScheduleFromInstant returned error: %v", err)
	}
	if len(got.Weekdays) != 1 || got.Weekdays[0] != time.Monday {
		t.Fatalf("expected Monday, got %v", got.Weekdays)
	}
	if got.StartTime.Hour != 18 || got.StartTime.Minute != 30 {
		t.Fatalf("expected 18:30, got %02d:%02d", got.StartTime.Hour, got.StartTime.Minute)
	}
}

func TestParseWeekday(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]time.Weekday{"mon": time.Monday, "Wednesday": time.Wednesday, " SAT ": time.Saturday} {
		got, err := ParseWeekday(name)
		if err != nil {
			t.Fatalf("ParseWeekday(%q) returned error: %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseWeekday(%q) = %s, want %s", name, got, want)
		}
		if FormatWeekday(got) != FormatWeekday(want) {
			t.Fatalf("FormatWeekday mismatch for %s", want)
		}
	}
	if _, err := ParseWeekday("funday"); !errors.Is(err, ErrInvalidWeekday) {
		t.Fatalf("expected ErrInvalidWeekday, got %v", err)
	}
	if FormatWeekday(time.Thursday) != "thu" {
		t.Fatalf("expected thu, got %s", FormatWeekday(time.Thursday))
	}
}

func TestScheduleNormalized(t *testing.T) {
	t.Parallel()

	got := laSchedule(time.Wednesday, time.Monday, time.Wednesday).Normalized()
	if len(got.Weekdays) != 2 || got.Weekdays[0] != time.Monday || got.Weekdays[1] != time.Wednesday {
		t.Fatalf("expected [Monday Wednesday], got %v", got.Weekdays)
	}
}
