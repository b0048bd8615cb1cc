package cadence

import (
	"sort"
	"time"
)

// NoteType categorizes the interaction a note records.
type NoteType string

const (
	NoteCall   NoteType = "call"
	NoteEmail  NoteType = "email"
	NotePlain  NoteType = "note"
	NoteVideo  NoteType = "video"
	NoteSocial NoteType = "social"
	NoteText   NoteType = "text"
)

// Note is a single timestamped interaction record attached to a lead.
// Notes are the only evidence of outreach: the engine derives workflow
// progress from note types and text, never from stored progress state.
type Note struct {
	ID        string
	Type      NoteType
	Text      string
	Timestamp time.Time
}

// noteTimeLayouts are the timestamp formats accepted from imports and
// legacy data, tried in order.
var noteTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses an ISO 8601 timestamp string. Malformed input returns
// the zero time, which sorts as "very old" everywhere in the engine
// instead of propagating a parse error into comparisons.
func ParseTime(s string) time.Time {
	for _, layout := range noteTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// sortedAscending returns a copy of notes ordered by timestamp, oldest
// first. Insertion order is not trusted: note timestamps are not
// guaranteed monotonic with their position in the slice.
func sortedAscending(notes []Note) []Note {
	out := make([]Note, len(notes))
	copy(out, notes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// latestNote returns the most recent note by timestamp.
func latestNote(notes []Note) (Note, bool) {
	if len(notes) == 0 {
		return Note{}, false
	}
	latest := notes[0]
	for _, n := range notes[1:] {
		if n.Timestamp.After(latest.Timestamp) {
			latest = n
		}
	}
	return latest, true
}

// daysBetween returns the whole days elapsed from a to b, never negative.
func daysBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}
