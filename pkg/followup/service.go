package followup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/openhaus/realtycrm/pkg/cadence"
	"github.com/openhaus/realtycrm/pkg/leads"
	"github.com/openhaus/realtycrm/pkg/logger"
	"github.com/openhaus/realtycrm/pkg/models"
)

// ErrUnknownAction is returned when the action id is not in the lead's
// current workflow.
var ErrUnknownAction = errors.New("unknown action for current status")

// ErrUnknownChoice is returned when the quick-action label is not one of
// the action's defined outcomes.
var ErrUnknownChoice = errors.New("unknown quick action choice")

// QuickActionOutcome is what applying a quick action produced: the note
// that was written and the status the lead ended up in.
type QuickActionOutcome struct {
	Note         models.LeadNote        `json:"note"`
	Status       string                 `json:"status"`
	Transitioned bool                   `json:"transitioned"`
	Outcome      string                 `json:"outcome"`
	Progress     cadence.StatusProgress `json:"progress"`
}

// Service runs the cadence engine against stored leads. The engine stays
// pure; this service feeds it the note log and applies its intentions
// inside transactions.
type Service struct {
	db    *sqlx.DB
	leads *leads.Service
	log   logger.Logger
}

// New creates a new follow-up service.
func New(db *sqlx.DB, leadSvc *leads.Service, log logger.Logger) *Service {
	return &Service{db: db, leads: leadSvc, log: log}
}

// Progress computes where a lead stands in its status workflow.
func (s *Service) Progress(ctx context.Context, leadID int, now time.Time) (*cadence.StatusProgress, error) {
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	notes, err := s.leads.NotesFor(ctx, leadID)
	if err != nil {
		return nil, err
	}
	progress := cadence.Progress(lead.Status, notes, lead.UpdatedAt, now)
	return &progress, nil
}

// ApplyQuickAction completes a workflow action with a chosen outcome. The
// engine decides what note to write and whether the lead moves status;
// both writes land in one transaction, plus the status-change note when a
// move happens, so the log a later Progress call reads is consistent.
func (s *Service) ApplyQuickAction(ctx context.Context, leadID int, req models.QuickActionRequest, userID *int, now time.Time) (*QuickActionOutcome, error) {
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	status := cadence.Normalize(lead.Status)

	action, ok := cadence.FindAction(status, req.ActionID)
	if !ok {
		return nil, ErrUnknownAction
	}
	var choice cadence.QuickAction
	found := false
	for _, qa := range action.QuickActions {
		if qa.Label == req.Label {
			choice = qa
			found = true
			break
		}
	}
	if !found {
		return nil, ErrUnknownChoice
	}

	result := cadence.ApplyQuickAction(status, action, choice, req.Detail, now)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	note := models.LeadNote{
		ID:        uuid.NewString(),
		LeadID:    leadID,
		UserID:    userID,
		Type:      string(result.Note.Type),
		Body:      result.Note.Text,
		CreatedAt: result.Note.Timestamp,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO lead_notes (id, lead_id, user_id, note_type, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		note.ID, note.LeadID, note.UserID, note.Type, note.Body, note.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to write action note: %w", err)
	}

	finalStatus := status
	if result.Transitioned {
		finalStatus = result.NewStatus
		res, err := tx.ExecContext(ctx,
			"UPDATE leads SET status = $1, updated_at = $2 WHERE id = $3",
			string(result.NewStatus), now, leadID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to move lead status: %w", err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return nil, leads.ErrNotFound
		}

		// The start-date resolver anchors on this note, so it must carry a
		// timestamp at or after the action note's.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO lead_notes (id, lead_id, user_id, note_type, body, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.NewString(), leadID, userID, string(cadence.NotePlain),
			cadence.StatusChangeNoteText(result.NewStatus), now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to write status change note: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit quick action: %w", err)
	}

	s.log.Info("quick action applied",
		"lead_id", leadID, "action", action.ID, "choice", choice.Label,
		"status", string(finalStatus), "transitioned", result.Transitioned)

	// Recompute progress against the fresh log for the response.
	notes, err := s.leads.NotesFor(ctx, leadID)
	if err != nil {
		return nil, err
	}
	progress := cadence.Progress(string(finalStatus), notes, now, now)

	return &QuickActionOutcome{
		Note:         note,
		Status:       string(finalStatus),
		Transitioned: result.Transitioned,
		Outcome:      string(choice.Outcome),
		Progress:     progress,
	}, nil
}

// Ranked returns the priority follow-ups view: leads worth calling now,
// grouped by status tier.
func (s *Service) Ranked(ctx context.Context, now time.Time, opts cadence.RankOptions) ([]cadence.FollowUpGroup, error) {
	rows, notes, err := s.leads.AllFacts(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]cadence.FollowUpLead, 0, len(rows))
	for _, lead := range rows {
		candidates = append(candidates, cadence.FollowUpLead{
			ID:     lead.ID,
			Name:   lead.Name,
			Status: lead.Status,
			Notes:  notes[lead.ID],
		})
	}

	ranked := cadence.RankForFollowUp(candidates, now, opts)
	return cadence.GroupFollowUps(ranked), nil
}

// DormantCount counts leads with no contact inside the window. The weekly
// digest reports it.
func (s *Service) DormantCount(ctx context.Context, now time.Time, dormantAfterDays int) (int, error) {
	cutoff := now.AddDate(0, 0, -dormantAfterDays)
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM leads l
		WHERE l.status NOT IN ($2, $3)
		AND NOT EXISTS (
			SELECT 1 FROM lead_notes n
			WHERE n.lead_id = l.id AND n.created_at > $1
		)`,
		cutoff, string(cadence.StatusClosed), string(cadence.StatusNotInterested),
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to count dormant leads: %w", err)
	}
	return count, nil
}
