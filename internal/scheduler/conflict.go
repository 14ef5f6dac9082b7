package scheduler

// DateConflict identifies the session already held on a local date.
type DateConflict struct {
	Acronym   string
	Sequence  int
	LocalDate string
}

// DetectDateConflict reports the first session other than the one at skip
// whose local date equals localDate. Session acronyms are derived from the
// date, so two sessions on one date would share an acronym.
func DetectDateConflict(sessions []Session, localDate string, skip int) (DateConflict, bool) {
	for i, session := range sessions {
		if i == skip {
			continue
		}
		if session.LocalDate == localDate {
			return DateConflict{
				Acronym:   session.Acronym,
				Sequence:  session.Sequence,
				LocalDate: session.LocalDate,
			}, true
		}
	}
	return DateConflict{}, false
}
