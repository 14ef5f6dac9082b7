package upcoming

import (
	"slices"
	"strings"
	"time"

	"github.com/example/class-scheduler/internal/scheduler"
)

// Source tells where a candidate session comes from.
type Source string

const (
	SourceClass Source = "class"
	SourceAdHoc Source = "adhoc"
)

// Candidate is a session offered to the resolver together with the context
// needed to present it.
type Candidate struct {
	Source    Source
	ClassID   string
	ClassName string
	Session   scheduler.Session
}

// Nearest is the outcome of a resolution. The zero value is NoUpcoming.
type Nearest struct {
	Candidate Candidate
	Found     bool
}

// NoUpcoming is the result when no source has an actionable session.
var NoUpcoming = Nearest{}

// SelectNearest returns the actionable candidate whose lobby opens first,
// breaking ties by scheduled start and then acronym.
func SelectNearest(candidates []Candidate, now time.Time) Nearest {
	actionable := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if Actionable(c.Session, now) {
			actionable = append(actionable, c)
		}
	}
	if len(actionable) == 0 {
		return NoUpcoming
	}
	best := slices.MinFunc(actionable, compareCandidates)
	return Nearest{Candidate: best, Found: true}
}

// Merge picks between the nearest class session and the nearest ad-hoc
// session. A strictly earlier lobby opening wins; on a tie the class session
// is kept.
func Merge(class, adhoc Nearest) Nearest {
	switch {
	case !class.Found:
		return adhoc
	case !adhoc.Found:
		return class
	case adhoc.Candidate.Session.LobbyOpen.Before(class.Candidate.Session.LobbyOpen):
		return adhoc
	default:
		return class
	}
}

// Resolve computes each source's nearest candidate and merges them.
func Resolve(classCandidates, adhocCandidates []Candidate, now time.Time) Nearest {
	return Merge(SelectNearest(classCandidates, now), SelectNearest(adhocCandidates, now))
}

// FromClass returns the class sessions viewerID may attend, as candidates.
// Instructors of the class only see the sessions assigned to them; anyone
// else sees every session.
func FromClass(class scheduler.Class, viewerID string) []Candidate {
	sessions := class.Sessions
	if class.IsInstructor(viewerID) {
		sessions = Apply(sessions, TaughtBy(viewerID))
	}
	out := make([]Candidate, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, Candidate{
			Source:    SourceClass,
			ClassID:   class.ID,
			ClassName: class.Config.Name,
			Session:   s,
		})
	}
	return out
}

// FromAdHoc wraps ad-hoc sessions as candidates.
func FromAdHoc(sessions []scheduler.AdHocSession) []Candidate {
	out := make([]Candidate, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, Candidate{
			Source:    SourceAdHoc,
			ClassName: s.Name,
			Session:   s.Session,
		})
	}
	return out
}

func compareCandidates(a, b Candidate) int {
	if c := a.Session.LobbyOpen.Compare(b.Session.LobbyOpen); c != 0 {
		return c
	}
	if c := a.Session.ScheduledStart.Compare(b.Session.ScheduledStart); c != 0 {
		return c
	}
	return strings.Compare(a.Session.Acronym, b.Session.Acronym)
}
