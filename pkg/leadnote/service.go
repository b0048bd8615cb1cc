package leadnote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/openhaus/realtycrm/pkg/cadence"
	"github.com/openhaus/realtycrm/pkg/models"
)

// ErrNotFound is returned when a note does not exist.
var ErrNotFound = errors.New("note not found")

const noteColumns = "id, lead_id, user_id, note_type, body, created_at"

// Service owns the append-only note log.
type Service struct {
	db *sqlx.DB
}

// New creates a new note service.
func New(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// Create appends a note to a lead. An explicit timestamp backfills
// historical interactions (imports, migrated CRMs); otherwise the server
// clock is used.
func (s *Service) Create(ctx context.Context, leadID int, req models.CreateNoteRequest, userID *int, now time.Time) (*models.LeadNote, error) {
	createdAt := now
	if req.Timestamp != "" {
		if parsed := cadence.ParseTime(req.Timestamp); !parsed.IsZero() {
			createdAt = parsed
		}
	}

	var note models.LeadNote
	err := s.db.GetContext(ctx, &note, `
		INSERT INTO lead_notes (id, lead_id, user_id, note_type, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+noteColumns,
		uuid.NewString(), leadID, userID, req.Type, req.Body, createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return &note, nil
}

// ListForLead returns a lead's notes, oldest first.
func (s *Service) ListForLead(ctx context.Context, leadID int) ([]models.LeadNote, error) {
	notes := []models.LeadNote{}
	err := s.db.SelectContext(ctx, &notes,
		"SELECT "+noteColumns+" FROM lead_notes WHERE lead_id = $1 ORDER BY created_at",
		leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// Update edits a note's body in place. Timestamps and types are
// immutable: the workflow engine has already read them as evidence.
func (s *Service) Update(ctx context.Context, leadID int, noteID string, req models.UpdateNoteRequest) (*models.LeadNote, error) {
	if req.Body == nil {
		return s.getByID(ctx, leadID, noteID)
	}

	var note models.LeadNote
	err := s.db.GetContext(ctx, &note, `
		UPDATE lead_notes SET body = $1
		WHERE id = $2 AND lead_id = $3
		RETURNING `+noteColumns,
		*req.Body, noteID, leadID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return &note, nil
}

// Delete removes a note.
func (s *Service) Delete(ctx context.Context, leadID int, noteID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM lead_notes WHERE id = $1 AND lead_id = $2", noteID, leadID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) getByID(ctx context.Context, leadID int, noteID string) (*models.LeadNote, error) {
	var note models.LeadNote
	err := s.db.GetContext(ctx, &note,
		"SELECT "+noteColumns+" FROM lead_notes WHERE id = $1 AND lead_id = $2",
		noteID, leadID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return &note, nil
}
