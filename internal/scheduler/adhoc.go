package scheduler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/class-scheduler/internal/timemath"
)

// AdHocType classifies one-off sessions.
type AdHocType string

const (
	AdHocResearchInformation AdHocType = "Research Information"
	AdHocTechCheck           AdHocType = "Tech Check"
	AdHocMeetYourInstructor  AdHocType = "Meet Your Instructor"
	AdHocOrientation         AdHocType = "Orientation"
	AdHocStudySurvey         AdHocType = "Study Survey"
	AdHocSupport             AdHocType = "Support"
)

// AdHocSlot is the granularity ad-hoc start times and durations snap to.
const AdHocSlot = 15 * time.Minute

// DefaultAdHocCapacity is the number of seats given to a new ad-hoc session.
const DefaultAdHocCapacity = 8

var adHocTypes = []AdHocType{
	AdHocResearchInformation,
	AdHocTechCheck,
	AdHocMeetYourInstructor,
	AdHocOrientation,
	AdHocStudySurvey,
	AdHocSupport,
}

var (
	// ErrInvalidAdHocType indicates an unknown ad-hoc session type.
	ErrInvalidAdHocType = errors.New("scheduler: invalid ad-hoc session type")
	// ErrNoParticipants indicates an ad-hoc session has nobody besides the instructor.
	ErrNoParticipants = errors.New("scheduler: ad-hoc session requires participants")
)

// ParseAdHocType matches value case-insensitively against the known types.
func ParseAdHocType(value string) (AdHocType, error) {
	for _, t := range adHocTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(value)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAdHocType, value)
}

// AdHocSession is a one-off session outside any class schedule.
type AdHocSession struct {
	Session
	Type         AdHocType
	Description  string
	Capacity     int
	Participants []string
	Notes        string
}

// AdHocParams are the inputs for NewAdHocSession.
type AdHocParams struct {
	Name            string
	Type            AdHocType
	Start           time.Time
	Timezone        string
	DurationMinutes int
	InstructorID    string
	Participants    []string
	Notes           string
}

// AdHocAcronym renders id as an unpadded url-safe token.
func AdHocAcronym(id uuid.UUID) string {
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// NewAdHocSession builds a one-off session. The start is floored and the
// duration rounded up to AdHocSlot; ad-hoc sessions have no lobby buffer, so
// the lobby window equals the session window.
func (s *Scheduler) NewAdHocSession(params AdHocParams, id uuid.UUID, now time.Time) (AdHocSession, error) {
	if _, err := ParseAdHocType(string(params.Type)); err != nil {
		return AdHocSession{}, err
	}
	loc, err := s.engine.Zones().Resolve(params.Timezone)
	if err != nil {
		return AdHocSession{}, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	participants := make([]string, 0, len(params.Participants))
	for _, p := range params.Participants {
		if p == "" || p == params.InstructorID || slices.Contains(participants, p) {
			continue
		}
		participants = append(participants, p)
	}
	if len(participants) == 0 {
		return AdHocSession{}, ErrNoParticipants
	}

	start := params.Start.UTC().Truncate(AdHocSlot)
	ts := timemath.TimestampsAt(start, loc, RoundAdHocDuration(params.DurationMinutes), 0)

	session := AdHocSession{
		Session: Session{
			Acronym:      AdHocAcronym(id),
			Name:         params.Name,
			InstructorID: params.InstructorID,
			Timezone:     loc.String(),
		},
		Type:         params.Type,
		Description:  fmt.Sprintf("%s (Scheduled on %s)", params.Name, now.UTC().Format(time.RFC3339)),
		Capacity:     DefaultAdHocCapacity,
		Participants: participants,
		Notes:        params.Notes,
	}
	applyTimestamps(&session.Session, ts)
	return session, nil
}

// RoundAdHocDuration rounds minutes up to the next slot; non-positive
// durations become a single slot.
func RoundAdHocDuration(minutes int) int {
	slot := int(AdHocSlot / time.Minute)
	if minutes <= 0 {
		return slot
	}
	return (minutes + slot - 1) / slot * slot
}
