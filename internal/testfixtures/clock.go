package testfixtures

import (
	"sync"
	"time"

	"github.com/example/class-scheduler/internal/scheduler"
)

// Clock is a controllable time source. It starts at ReferenceTime unless
// told otherwise and only moves when a test moves it.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock set to start, or to ReferenceTime when start is
// the zero value.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start.UTC()}
}

// Now returns the instant the clock is set to.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now for injection into services.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t.UTC()
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

// AtLobbyOpen moves the clock to the instant the lobby of session opens.
func (c *Clock) AtLobbyOpen(session scheduler.Session) time.Time {
	c.Set(session.LobbyOpen)
	return session.LobbyOpen
}

// AfterLobbyClose moves the clock just past the lobby close of session, the
// first instant at which it is no longer actionable.
func (c *Clock) AfterLobbyClose(session scheduler.Session) time.Time {
	t := session.LobbyClose.Add(time.Nanosecond)
	c.Set(t)
	return t
}
