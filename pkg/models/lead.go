package models

import "time"

// Lead is the stored lead row.
type Lead struct {
	ID            int        `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Email         string     `db:"email" json:"email,omitempty"`
	Phone         string     `db:"phone" json:"phone,omitempty"`
	Company       string     `db:"company" json:"company,omitempty"`
	Address       string     `db:"address" json:"address,omitempty"`
	Status        string     `db:"status" json:"status"`
	OwnerID       *int       `db:"owner_id" json:"owner_id,omitempty"`
	PriorityScore int        `db:"priority_score" json:"priority_score"`
	ScoredAt      *time.Time `db:"scored_at" json:"scored_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// LeadNote is one stored interaction record. Notes are append-only: rows
// may be edited in place but never reordered, and the note log is the
// only evidence of outreach the cadence engine reads.
type LeadNote struct {
	ID        string    `db:"id" json:"id"`
	LeadID    int       `db:"lead_id" json:"lead_id"`
	UserID    *int      `db:"user_id" json:"user_id,omitempty"`
	Type      string    `db:"note_type" json:"type"`
	Body      string    `db:"body" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"timestamp"`
}

// CreateLeadRequest creates a new lead.
type CreateLeadRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=40"`
	Company string `json:"company" validate:"omitempty,max=200"`
	Address string `json:"address" validate:"omitempty,max=400"`
	Status  string `json:"status" validate:"omitempty,max=40"`
}

// UpdateLeadRequest patches lead contact fields. Status moves go through
// the dedicated status endpoint so a status-change note gets written.
type UpdateLeadRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=400"`
}

// UpdateStatusRequest moves a lead to a new status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,max=40"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// LeadSearchRequest filters the lead table.
type LeadSearchRequest struct {
	Status string `query:"status" validate:"omitempty,max=40"`
	Tier   string `query:"tier" validate:"omitempty,oneof=high medium low dormant"`
	Query  string `query:"q" validate:"omitempty,max=200"`
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// QuickActionRequest completes a workflow action with a chosen outcome.
// The label must be one of the quick actions the catalog defines for the
// action; outcomes stay server-defined.
type QuickActionRequest struct {
	ActionID string `json:"action_id" validate:"required"`
	Label    string `json:"label" validate:"required,max=100"`
	Detail   string `json:"detail,omitempty" validate:"omitempty,max=2000"`
}

// CreateNoteRequest appends a note to a lead.
type CreateNoteRequest struct {
	Type string `json:"type" validate:"required,oneof=call email note video social text"`
	Body string `json:"text" validate:"required,min=1,max=10000"`
	// Timestamp is optional ISO 8601; imports and backfills use it,
	// normal note creation defaults to the server clock.
	Timestamp string `json:"timestamp,omitempty"`
}

// UpdateNoteRequest edits a note in place.
type UpdateNoteRequest struct {
	Body *string `json:"text,omitempty" validate:"omitempty,min=1,max=10000"`
}

// LeadResponse is a lead with its derived priority attached.
type LeadResponse struct {
	Lead
	Score            int            `json:"score"`
	Tier             string         `json:"tier"`
	DaysSinceContact int            `json:"days_since_contact"`
	NoteCount        int            `json:"note_count"`
	Breakdown        map[string]int `json:"score_breakdown,omitempty"`
}

// LeadListResponse is a paginated lead table page.
type LeadListResponse struct {
	Data       []LeadResponse `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}
