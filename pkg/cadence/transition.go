package cadence

import (
	"fmt"
	"time"
)

// transitions is the total status-transition table keyed by current
// status then outcome. An absent entry means "stay put". Declined and
// closed outcomes apply from any non-terminal position; a declined lead
// may come back via an interested outcome.
var transitions = map[CanonicalStatus]map[Outcome]CanonicalStatus{
	StatusVoicemail: {
		OutcomeAnswered:   StatusContacted,
		OutcomeInterested: StatusInterested,
		OutcomeDeclined:   StatusNotInterested,
		OutcomeClosed:     StatusClosed,
	},
	StatusContacted: {
		OutcomeInterested: StatusInterested,
		OutcomeDeclined:   StatusNotInterested,
		OutcomeClosed:     StatusClosed,
	},
	StatusInterested: {
		OutcomeDeclined: StatusNotInterested,
		OutcomeClosed:   StatusClosed,
	},
	StatusClosed: {
		OutcomeDeclined: StatusNotInterested,
	},
	StatusNotInterested: {
		OutcomeInterested: StatusInterested,
	},
}

// Transition returns the status a lead moves to when an action completes
// with the given outcome, and whether a move happens at all.
func Transition(from CanonicalStatus, outcome Outcome) (CanonicalStatus, bool) {
	to, ok := transitions[from][outcome]
	if !ok {
		return from, false
	}
	return to, to != from
}

// QuickActionResult is the engine's intention after a quick action: a
// note to append and, possibly, a status to move to. The engine never
// writes either; the caller applies them through the store.
type QuickActionResult struct {
	Note         Note            `json:"note"`
	NewStatus    CanonicalStatus `json:"new_status"`
	Transitioned bool            `json:"transitioned"`
}

// ApplyQuickAction records a user completing a workflow action with a
// chosen quick-action outcome. The note text embeds the action label and
// the choice so the progress walk and the start-date resolver can read it
// back later; detail is optional free-text elaboration.
func ApplyQuickAction(status CanonicalStatus, action Action, choice QuickAction, detail string, now time.Time) QuickActionResult {
	text := fmt.Sprintf("%s: %s", action.Label, choice.Label)
	if detail != "" {
		text += ". " + detail
	}

	newStatus := status
	transitioned := false
	if action.AutoTransition != "" && action.AutoTransition != status {
		newStatus = action.AutoTransition
		transitioned = true
	} else {
		newStatus, transitioned = Transition(status, choice.Outcome)
	}

	return QuickActionResult{
		Note: Note{
			Type:      action.Type,
			Text:      text,
			Timestamp: now,
		},
		NewStatus:    newStatus,
		Transitioned: transitioned,
	}
}
