package recurrence

import (
	"testing"
	"time"

	"github.com/example/class-scheduler/internal/timemath"
)

func BenchmarkEngineGenerateOccurrences(b *testing.B) {
	engine := NewEngine(timemath.NewZones(4))
	anchor := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	schedule := Schedule{
		Weekdays: []time.Weekday{
			time.Monday,
			time.Tuesday,
			time.Wednesday,
			time.Thursday,
			time.Friday,
		},
		StartTime: timemath.TimeOfDay{Hour: 9, Minute: 0, Timezone: "Asia/Tokyo"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		occurrences, err := engine.GenerateOccurrences(anchor, schedule, 60, GenerateOptions{IncludeAnchor: true})
		if err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
		if len(occurrences) != 60 {
			b.Fatal("expected occurrences to be generated")
		}
	}
}
