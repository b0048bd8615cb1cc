package cadence

// CanonicalStatus is one of the five normalized lead lifecycle states.
type CanonicalStatus string

const (
	StatusVoicemail     CanonicalStatus = "VOICEMAIL"
	StatusContacted     CanonicalStatus = "CONTACTED"
	StatusInterested    CanonicalStatus = "INTERESTED"
	StatusNotInterested CanonicalStatus = "NOT INTERESTED"
	StatusClosed        CanonicalStatus = "CLOSED"
)

// AllStatuses returns the canonical statuses in funnel order.
func AllStatuses() []CanonicalStatus {
	return []CanonicalStatus{
		StatusVoicemail,
		StatusContacted,
		StatusInterested,
		StatusClosed,
		StatusNotInterested,
	}
}

// ActionPriority is the urgency label on a workflow action.
type ActionPriority string

const (
	PriorityHigh   ActionPriority = "high"
	PriorityMedium ActionPriority = "medium"
	PriorityLow    ActionPriority = "low"
)

// Outcome is the structured result a user picks when completing an
// action. Transitions key off outcomes, never off label substrings.
type Outcome string

const (
	OutcomeNone       Outcome = "none"
	OutcomeAnswered   Outcome = "answered"
	OutcomeVoicemail  Outcome = "voicemail"
	OutcomeInterested Outcome = "interested"
	OutcomeDeclined   Outcome = "declined"
	OutcomeClosed     Outcome = "closed"
)

// QuickAction is a one-tap completion choice offered on an action.
type QuickAction struct {
	Label   string  `json:"label"`
	Outcome Outcome `json:"outcome"`
}

// Action is one step of a status workflow.
type Action struct {
	ID             string          `json:"id"`
	Label          string          `json:"action"`
	Description    string          `json:"description"`
	Type           NoteType        `json:"type"`
	Priority       ActionPriority  `json:"priority"`
	AutoTransition CanonicalStatus `json:"auto_transition,omitempty"`
	QuickActions   []QuickAction   `json:"quick_actions,omitempty"`
}

// Standard quick-action sets shared by call steps.
var (
	callOutcomes = []QuickAction{
		{Label: "Phone Answered", Outcome: OutcomeAnswered},
		{Label: "Left Voicemail", Outcome: OutcomeVoicemail},
		{Label: "No Answer", Outcome: OutcomeNone},
		{Label: "Not Interested", Outcome: OutcomeDeclined},
	}
	checkinOutcomes = []QuickAction{
		{Label: "Interested", Outcome: OutcomeInterested},
		{Label: "Closed Deal", Outcome: OutcomeClosed},
		{Label: "Not Interested", Outcome: OutcomeDeclined},
	}
	emailOutcomes = []QuickAction{
		{Label: "Email Sent", Outcome: OutcomeNone},
		{Label: "Replied Interested", Outcome: OutcomeInterested},
	}
)

// workflows maps each canonical status to its ordered outreach cadence.
// NOT INTERESTED is terminal and has no cadence. The table is immutable;
// WorkflowFor hands out copies.
var workflows = map[CanonicalStatus][]Action{
	StatusVoicemail: {
		{
			ID:          "vm-attempt-1",
			Label:       "First Voicemail",
			Description: "Initial call attempt; leave a short intro voicemail.",
			Type:        NoteCall, Priority: PriorityHigh,
			QuickActions: callOutcomes,
		},
		{
			ID:          "vm-attempt-2",
			Label:       "Second Voicemail",
			Description: "Second call attempt, 2 days after the first.",
			Type:        NoteCall, Priority: PriorityHigh,
			QuickActions: callOutcomes,
		},
		{
			ID:          "vm-attempt-3",
			Label:       "Third Voicemail",
			Description: "Third attempt; mention you will stop calling soon.",
			Type:        NoteCall, Priority: PriorityMedium,
			QuickActions: callOutcomes,
		},
		{
			ID:          "vm-attempt-4",
			Label:       "Final Voicemail",
			Description: "Last call attempt before the lead goes quiet.",
			Type:        NoteCall, Priority: PriorityLow,
			QuickActions: callOutcomes,
		},
	},
	StatusContacted: {
		{
			ID:          "ct-intro-call",
			Label:       "Intro Call",
			Description: "Qualify the lead: timeline, budget, neighborhoods.",
			Type:        NoteCall, Priority: PriorityHigh,
			QuickActions: checkinOutcomes,
		},
		{
			ID:          "ct-demo-email",
			Label:       "Demo Email",
			Description: "Send sample listings; ask them to check spam if unseen.",
			Type:        NoteEmail, Priority: PriorityHigh,
			QuickActions: emailOutcomes,
		},
		{
			ID:          "ct-followup-call",
			Label:       "Follow-up Call",
			Description: "Follow up on the listings email within a week.",
			Type:        NoteCall, Priority: PriorityMedium,
			QuickActions: checkinOutcomes,
		},
		{
			ID:          "ct-checkin-email",
			Label:       "Check-in Email",
			Description: "Soft check-in if the lead has gone quiet.",
			Type:        NoteEmail, Priority: PriorityLow,
			QuickActions: emailOutcomes,
		},
	},
	StatusInterested: {
		{
			ID:          "in-listings-email",
			Label:       "Curated Listings Email",
			Description: "Send listings matched to their stated criteria.",
			Type:        NoteEmail, Priority: PriorityHigh,
			QuickActions: emailOutcomes,
		},
		{
			ID:          "in-showing-call",
			Label:       "Showing Check-in Call",
			Description: "Schedule or debrief a showing.",
			Type:        NoteCall, Priority: PriorityHigh,
			QuickActions: checkinOutcomes,
		},
		{
			ID:          "in-market-email",
			Label:       "Market Update Email",
			Description: "Fresh comps and price movement for their area.",
			Type:        NoteEmail, Priority: PriorityMedium,
			QuickActions: emailOutcomes,
		},
		{
			ID:          "in-monthly-call",
			Label:       "Monthly Check-in Call",
			Description: "Keep momentum while they decide.",
			Type:        NoteCall, Priority: PriorityMedium,
			QuickActions: checkinOutcomes,
		},
	},
	StatusClosed: {
		{
			ID:          "cl-delivery-email",
			Label:       "Closing Delivery Email",
			Description: "Congratulations note with closing documents recap.",
			Type:        NoteEmail, Priority: PriorityHigh,
			QuickActions: emailOutcomes,
		},
		{
			ID:          "cl-checkin-email",
			Label:       "30-Day Check-in Email",
			Description: "How is the new place? Ask for referrals.",
			Type:        NoteEmail, Priority: PriorityMedium,
			QuickActions: emailOutcomes,
		},
		{
			ID:          "cl-market-email",
			Label:       "Quarterly Market Update",
			Description: "Neighborhood value update to stay top of mind.",
			Type:        NoteEmail, Priority: PriorityLow,
			QuickActions: emailOutcomes,
		},
		{
			ID:          "cl-anniversary-email",
			Label:       "Anniversary Email",
			Description: "One year in the home; ask for a review.",
			Type:        NoteEmail, Priority: PriorityLow,
			QuickActions: emailOutcomes,
		},
	},
	StatusNotInterested: {},
}

// WorkflowFor returns the ordered action list for a status. Unknown or
// terminal statuses yield an empty workflow, never a panic.
func WorkflowFor(status CanonicalStatus) []Action {
	actions, ok := workflows[status]
	if !ok || len(actions) == 0 {
		return nil
	}
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

// FindAction looks up an action by ID inside a status workflow.
func FindAction(status CanonicalStatus, actionID string) (Action, bool) {
	for _, a := range workflows[status] {
		if a.ID == actionID {
			return a, true
		}
	}
	return Action{}, false
}
