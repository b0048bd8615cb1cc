package cadence

import (
	"strings"
	"time"
)

// StatusProgress is the derived position of a lead inside its status
// workflow. It is recomputed from the note log on every read and never
// persisted.
type StatusProgress struct {
	Status           CanonicalStatus `json:"status"`
	StatusStartDate  time.Time       `json:"status_start_date"`
	DaysInStatus     int             `json:"days_in_status"`
	CompletedActions []Action        `json:"completed_actions"`
	AvailableActions []Action        `json:"available_actions"`
	Terminal         bool            `json:"terminal"`
}

// NextAction returns the first outstanding action, if any. The UI surfaces
// this one; the full remainder stays in AvailableActions.
func (p StatusProgress) NextAction() (Action, bool) {
	if len(p.AvailableActions) == 0 {
		return Action{}, false
	}
	return p.AvailableActions[0], true
}

// voicemailMarkers: a call note only counts as a voicemail attempt when
// its text shows the call was not answered. An answered call recorded as
// a plain call note must not tick off a voicemail step.
var voicemailMarkers = []string{"voicemail", "left message", "no answer"}

func hasVoicemailMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range voicemailMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Progress walks the status workflow against the note log and reports
// which actions are complete. Semantics are strictly linear: actions
// complete in order, each satisfied by a distinct in-status note of the
// matching type, and the first unsatisfied action stops the walk. The
// completed set is therefore always a contiguous prefix of the workflow.
//
// rawStatus is normalized first; now is explicit so the computation is
// referentially transparent.
func Progress(rawStatus string, notes []Note, updatedAt, now time.Time) StatusProgress {
	status := Normalize(rawStatus)
	start := ResolveStatusStartDate(status, notes, updatedAt, now)

	steps := WorkflowFor(status)
	if len(steps) == 0 {
		return StatusProgress{
			Status:           status,
			StatusStartDate:  start,
			DaysInStatus:     daysBetween(start, now),
			CompletedActions: []Action{},
			AvailableActions: []Action{},
			Terminal:         true,
		}
	}

	// Only notes written since the lead entered this status are evidence.
	var inStatus []Note
	for _, n := range sortedAscending(notes) {
		if !n.Timestamp.Before(start) {
			inStatus = append(inStatus, n)
		}
	}

	used := make([]bool, len(inStatus))
	completed := 0
	for _, action := range steps {
		idx := matchingNote(action, status, inStatus, used)
		if idx < 0 {
			break
		}
		used[idx] = true
		completed++
	}

	return StatusProgress{
		Status:           status,
		StatusStartDate:  start,
		DaysInStatus:     daysBetween(start, now),
		CompletedActions: steps[:completed],
		AvailableActions: steps[completed:],
	}
}

// matchingNote finds the earliest unused in-status note satisfying the
// action. VOICEMAIL call steps additionally require voicemail-ish text.
func matchingNote(action Action, status CanonicalStatus, notes []Note, used []bool) int {
	for i, n := range notes {
		if used[i] || n.Type != action.Type {
			continue
		}
		if status == StatusVoicemail && action.Type == NoteCall && !hasVoicemailMarker(n.Text) {
			continue
		}
		return i
	}
	return -1
}
