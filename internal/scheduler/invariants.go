package scheduler

import "fmt"

// Validate checks the post-conditions every session list must satisfy:
// contiguous 1-based sequence numbers in local date order, unique acronyms
// and lobbyOpen <= start < end <= lobbyClose for each session.
func Validate(sessions []Session) error {
	seen := make(map[string]int, len(sessions))
	for i, session := range sessions {
		if session.Sequence != i+1 {
			return fmt.Errorf("%w: position %d carries sequence %d", ErrInvariantViolation, i+1, session.Sequence)
		}
		if i > 0 && sessions[i-1].LocalDate > session.LocalDate {
			return fmt.Errorf("%w: %s is ordered after %s", ErrInvariantViolation, session.LocalDate, sessions[i-1].LocalDate)
		}
		if prev, ok := seen[session.Acronym]; ok {
			return fmt.Errorf("%w: acronym %s shared by sequences %d and %d", ErrInvariantViolation, session.Acronym, prev, session.Sequence)
		}
		seen[session.Acronym] = session.Sequence

		switch {
		case session.LobbyOpen.After(session.ScheduledStart):
			return fmt.Errorf("%w: %s lobby opens after start", ErrInvariantViolation, session.Acronym)
		case !session.ScheduledStart.Before(session.ScheduledEnd):
			return fmt.Errorf("%w: %s starts at or after its end", ErrInvariantViolation, session.Acronym)
		case session.ScheduledEnd.After(session.LobbyClose):
			return fmt.Errorf("%w: %s lobby closes before end", ErrInvariantViolation, session.Acronym)
		}
	}
	return nil
}
