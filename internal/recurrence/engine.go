package recurrence

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/class-scheduler/internal/timemath"
)

var (
	// ErrNoWeekdays indicates the schedule does not select any weekday.
	ErrNoWeekdays = errors.New("recurrence: schedule requires at least one weekday")
	// ErrInvalidWeekday indicates a weekday outside Sunday..Saturday or an unknown name.
	ErrInvalidWeekday = errors.New("recurrence: invalid weekday")
	// ErrInvalidCount indicates a negative occurrence count.
	ErrInvalidCount = errors.New("recurrence: occurrence count must not be negative")
)

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// Schedule is the weekly pattern of a class: a set of weekdays and a local
// start time.
type Schedule struct {
	Weekdays  []time.Weekday
	StartTime timemath.TimeOfDay
}

// Validate checks the weekday set and time of day. Timezone resolution is
// performed by the Engine.
func (s Schedule) Validate() error {
	if len(s.Weekdays) == 0 {
		return ErrNoWeekdays
	}
	for _, day := range s.Weekdays {
		if day < time.Sunday || day > time.Saturday {
			return fmt.Errorf("%w: %d", ErrInvalidWeekday, day)
		}
	}
	return s.StartTime.Validate()
}

// Normalized returns a copy with weekdays sorted and deduplicated.
func (s Schedule) Normalized() Schedule {
	set := weekdaySet(s.Weekdays)
	days := make([]time.Weekday, 0, len(set))
	for day := range set {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	s.Weekdays = days
	return s
}

// ParseWeekday accepts short ("mon") or full ("monday") names, case-insensitive.
func ParseWeekday(name string) (time.Weekday, error) {
	day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, name)
	}
	return day, nil
}

// ParseWeekdays parses every name, failing on the first unknown one.
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		day, err := ParseWeekday(name)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

// FormatWeekday renders the three letter lowercase name of day.
func FormatWeekday(day time.Weekday) string {
	return strings.ToLower(day.String()[:3])
}

// GenerateOptions controls the handling of the anchor date.
type GenerateOptions struct {
	// IncludeAnchor lets the anchor date itself be the first occurrence when
	// it falls on a scheduled weekday. When false generation starts strictly
	// after the anchor.
	IncludeAnchor bool
}

// Occurrence is one generated slot: the calendar date (UTC midnight) and the
// instant the schedule's wall-clock time falls on for that date.
type Occurrence struct {
	Date  time.Time
	Start time.Time
}

// Engine expands weekly schedules into occurrences.
type Engine struct {
	zones *timemath.Zones
}

// NewEngine constructs an Engine resolving timezones through zones. A nil
// zones value loads locations without caching.
func NewEngine(zones *timemath.Zones) *Engine {
	return &Engine{zones: zones}
}

// Zones returns the timezone resolver shared by the engine.
func (e *Engine) Zones() *timemath.Zones {
	return e.zones
}

// Location resolves the schedule's timezone.
func (e *Engine) Location(s Schedule) (*time.Location, error) {
	return e.zones.Resolve(s.StartTime.Timezone)
}

// GenerateOccurrences produces exactly count occurrences in strictly
// increasing order, each on one of the schedule's weekdays.
//
// anchor is read as a calendar date. Weekdays are matched against the local
// wall clock in the schedule's timezone, so a 23:30 class in Tokyo is matched
// on its Tokyo weekday even though its UTC instant falls on the previous day.
func (e *Engine) GenerateOccurrences(anchor time.Time, s Schedule, count int, opts GenerateOptions) ([]Occurrence, error) {
	if count < 0 {
		return nil, ErrInvalidCount
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	loc, err := e.Location(s)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	days := weekdaySet(s.Weekdays)
	current := timemath.DateOf(anchor)
	if !opts.IncludeAnchor {
		current = current.AddDate(0, 0, 1)
	}

	occurrences := make([]Occurrence, 0, count)
	for len(occurrences) < count {
		start := timemath.LocalWallClockToInstant(current, s.StartTime, loc)
		if _, ok := days[start.In(loc).Weekday()]; ok {
			occurrences = append(occurrences, Occurrence{Date: current, Start: start})
		}
		current = current.AddDate(0, 0, 1)
	}
	return occurrences, nil
}

// Next returns the first occurrence strictly after anchor.
func (e *Engine) Next(anchor time.Time, s Schedule) (Occurrence, error) {
	occurrences, err := e.GenerateOccurrences(anchor, s, 1, GenerateOptions{})
	if err != nil {
		return Occurrence{}, err
	}
	return occurrences[0], nil
}

// ScheduleFromInstant builds a single-weekday schedule whose weekday and
// time of day are those of instant in the named timezone.
func (e *Engine) ScheduleFromInstant(instant time.Time, timezone string) (Schedule, error) {
	loc, err := e.zones.Resolve(timezone)
	if err != nil {
		return Schedule{}, err
	}
	local := instant.In(loc)
	return Schedule{
		Weekdays: []time.Weekday{local.Weekday()},
		StartTime: timemath.TimeOfDay{
			Hour:     local.Hour(),
			Minute:   local.Minute(),
			Timezone: loc.String(),
		},
	}, nil
}

func weekdaySet(days []time.Weekday) map[time.Weekday]struct{} {
	set := make(map[time.Weekday]struct{}, len(days))
	for _, day := range days {
		set[day] = struct{}{}
	}
	return set
}
