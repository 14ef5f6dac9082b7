package upcoming

import (
	"time"

	"github.com/example/class-scheduler/internal/timemath"
)

// BannerState is the call to action shown for the nearest session.
type BannerState string

const (
	BannerUpcoming           BannerState = "upcoming"
	BannerLobbyIsOpen        BannerState = "lobby_is_open"
	BannerClassIsOpen        BannerState = "class_is_open"
	BannerNextClassAvailable BannerState = "next_class_available"
	BannerSignupForClass     BannerState = "signup_for_class"
)

// Banner is the payload rendered by the "next class" banner.
type Banner struct {
	Class struct {
		Name          string     `json:"name"`
		Time          *time.Time `json:"time"`
		LobbyOpenTime *time.Time `json:"lobby_open_time"`
	} `json:"class"`
	Instructor struct {
		Name string `json:"name"`
	} `json:"instructor"`
	Link struct {
		URL string `json:"url"`
	} `json:"link"`
	State BannerState `json:"state"`
}

// BuildBanner describes nearest for display at now. Instructor names are
// looked up in names, keyed by user ID. zones resolves the session's timezone
// and may be nil.
//
// A found session is "next_class_available" unless it starts on the same
// local calendar day as now, in which case its window state refines it.
func BuildBanner(nearest Nearest, now time.Time, names map[string]string, link string, zones *timemath.Zones) Banner {
	var b Banner
	b.Link.URL = link
	b.State = BannerSignupForClass
	if !nearest.Found {
		return b
	}

	session := nearest.Candidate.Session
	start := session.ScheduledStart
	lobby := session.LobbyOpen
	b.Class.Name = nearest.Candidate.ClassName
	b.Class.Time = &start
	b.Class.LobbyOpenTime = &lobby
	b.Instructor.Name = names[session.InstructorID]

	b.State = BannerNextClassAvailable
	if !sameLocalDay(now, start, zones, session.Timezone) {
		return b
	}
	switch {
	case OpensAfterNow(session, now):
		b.State = BannerUpcoming
	case InSessionAt(session, now):
		b.State = BannerClassIsOpen
	case IsOpenNow(session, now):
		b.State = BannerLobbyIsOpen
	}
	return b
}

func sameLocalDay(a, b time.Time, zones *timemath.Zones, timezone string) bool {
	loc, err := zones.Resolve(timezone)
	if err != nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
