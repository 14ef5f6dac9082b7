// Package timemath converts between calendar dates, local wall-clock times
// and the UTC instants stored for class sessions.
package timemath

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the canonical layout of a session's local date.
	DateLayout = "2006-01-02"
	// AcronymDateLayout is the date fragment embedded in session acronyms.
	AcronymDateLayout = "060102"
)

var (
	// ErrInvalidDate indicates a calendar date string could not be parsed.
	ErrInvalidDate = errors.New("timemath: invalid date")
	// ErrInvalidTimeOfDay indicates an hour or minute outside its range.
	ErrInvalidTimeOfDay = errors.New("timemath: invalid time of day")
)

// TimeOfDay is a wall-clock time in a named IANA timezone.
type TimeOfDay struct {
	Hour     int
	Minute   int
	Timezone string
}

// Validate reports whether the hour and minute are within range. Timezone
// resolution is left to Zones.
func (t TimeOfDay) Validate() error {
	if t.Hour < 0 || t.Hour > 23 {
		return fmt.Errorf("%w: hour %d", ErrInvalidTimeOfDay, t.Hour)
	}
	if t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("%w: minute %d", ErrInvalidTimeOfDay, t.Minute)
	}
	return nil
}

// Timestamps holds the four instants derived for a session along with its
// local calendar date.
type Timestamps struct {
	LocalDate  string
	Start      time.Time
	End        time.Time
	LobbyOpen  time.Time
	LobbyClose time.Time
}

// LocalWallClockToInstant reads the calendar portion of date in UTC and
// combines it with the time of day in loc. Offsets are resolved for that
// specific date, so DST transitions are honoured.
func LocalWallClockToInstant(date time.Time, tod TimeOfDay, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.UTC().Date()
	return time.Date(y, m, d, tod.Hour, tod.Minute, 0, 0, loc).UTC()
}

// DeriveSessionTimestamps computes start, end and the lobby window for a
// session held on date at tod.
func DeriveSessionTimestamps(date time.Time, tod TimeOfDay, loc *time.Location, durationMinutes, lobbyMinutes int) Timestamps {
	if loc == nil {
		loc = time.UTC
	}
	return TimestampsAt(LocalWallClockToInstant(date, tod, loc), loc, durationMinutes, lobbyMinutes)
}

// TimestampsAt derives the session window around an absolute start instant.
// LocalDate is the date of start in loc.
func TimestampsAt(start time.Time, loc *time.Location, durationMinutes, lobbyMinutes int) Timestamps {
	if loc == nil {
		loc = time.UTC
	}
	start = start.UTC()
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	lobby := time.Duration(lobbyMinutes) * time.Minute
	return Timestamps{
		LocalDate:  start.In(loc).Format(DateLayout),
		Start:      start,
		End:        end,
		LobbyOpen:  start.Add(-lobby),
		LobbyClose: end.Add(lobby),
	}
}

// CombineDateAndTimeOfDay returns the calendar date of date joined with the
// hour and minute of reference. Both are read in UTC: a reschedule that keeps
// "the same time" keeps the raw UTC time-of-day of the previous start.
func CombineDateAndTimeOfDay(date, reference time.Time) time.Time {
	y, m, d := date.UTC().Date()
	ref := reference.UTC()
	return time.Date(y, m, d, ref.Hour(), ref.Minute(), 0, 0, time.UTC)
}

// ParseDate accepts either a bare YYYY-MM-DD date or an RFC 3339 timestamp
// and returns the UTC midnight of its UTC calendar date.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return DateOf(t), nil
}

// DateOf truncates t to the UTC midnight of its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders the UTC calendar date of t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// AcronymDate renders a YYYY-MM-DD local date as the YYMMDD fragment used in
// session acronyms.
func AcronymDate(localDate string) (string, error) {
	t, err := time.Parse(DateLayout, localDate)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, localDate)
	}
	return t.Format(AcronymDateLayout), nil
}
