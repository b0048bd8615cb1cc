package cadence

import (
	"sort"
	"strings"
	"time"
)

// statusChangePhrases are the note-text markers written when a lead moves
// status. Matching is case-insensitive substring with the status name
// appended.
var statusChangePhrases = []string{
	"status changed to ",
	"moved to ",
	"set to ",
}

// ResolveStatusStartDate infers when a lead entered its current status.
// Priority order: the most recent status-change note naming this status,
// then the lead's updatedAt, then the most recent note, then now.
//
// This is a heuristic over note text, not an audit trail; there is no
// status-history table, so a lead whose status-change note was edited or
// deleted falls back to coarser timestamps.
func ResolveStatusStartDate(status CanonicalStatus, notes []Note, updatedAt, now time.Time) time.Time {
	if len(notes) > 0 {
		descending := make([]Note, len(notes))
		copy(descending, notes)
		sort.SliceStable(descending, func(i, j int) bool {
			return descending[i].Timestamp.After(descending[j].Timestamp)
		})

		target := strings.ToLower(string(status))
		for _, n := range descending {
			text := strings.ToLower(n.Text)
			for _, phrase := range statusChangePhrases {
				if strings.Contains(text, phrase+target) {
					return n.Timestamp
				}
			}
		}
	}

	if !updatedAt.IsZero() {
		return updatedAt
	}
	if latest, ok := latestNote(notes); ok {
		return latest.Timestamp
	}
	return now
}

// StatusChangeNoteText builds the note text recorded when a lead moves to
// a new status, in the exact form ResolveStatusStartDate looks for.
func StatusChangeNoteText(to CanonicalStatus) string {
	return "Status changed to " + string(to)
}
