package leads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/openhaus/realtycrm/pkg/cadence"
	"github.com/openhaus/realtycrm/pkg/logger"
	"github.com/openhaus/realtycrm/pkg/models"
)

// ErrNotFound is returned when a lead does not exist.
var ErrNotFound = errors.New("lead not found")

const leadColumns = "id, name, email, phone, company, address, status, owner_id, priority_score, scored_at, created_at, updated_at"

// Service owns lead persistence and the derived priority attached to
// every lead read. Scores are always computed live from the note log;
// the priority_score column is a cache refreshed by the nightly job, not
// a source of truth.
type Service struct {
	db     *sqlx.DB
	scorer *cadence.Scorer
	log    logger.Logger
}

// New creates a new lead service.
func New(db *sqlx.DB, scorer *cadence.Scorer, log logger.Logger) *Service {
	return &Service{db: db, scorer: scorer, log: log}
}

// Scorer returns the scorer attached to lead reads.
func (s *Service) Scorer() *cadence.Scorer {
	return s.scorer
}

// Create inserts a new lead. The status is normalized to its canonical
// form before storage so the workflow engine never sees aliases.
func (s *Service) Create(ctx context.Context, req models.CreateLeadRequest, ownerID *int) (*models.Lead, error) {
	status := cadence.Normalize(req.Status)

	var lead models.Lead
	err := s.db.GetContext(ctx, &lead, `
		INSERT INTO leads (name, email, phone, company, address, status, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+leadColumns,
		req.Name, req.Email, req.Phone, req.Company, req.Address, string(status), ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	return &lead, nil
}

// GetByID fetches a single lead.
func (s *Service) GetByID(ctx context.Context, id int) (*models.Lead, error) {
	var lead models.Lead
	err := s.db.GetContext(ctx, &lead, "SELECT "+leadColumns+" FROM leads WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

// Update patches contact fields. Nil request fields are left untouched.
func (s *Service) Update(ctx context.Context, id int, req models.UpdateLeadRequest) (*models.Lead, error) {
	sets := []string{}
	args := []interface{}{}
	i := 1

	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, fmt.Sprintf("%s = $%d", col, i))
			args = append(args, *v)
			i++
		}
	}
	add("name", req.Name)
	add("email", req.Email)
	add("phone", req.Phone)
	add("company", req.Company)
	add("address", req.Address)

	if len(sets) == 0 {
		return s.GetByID(ctx, id)
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE leads SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), i, leadColumns)

	var lead models.Lead
	err := s.db.GetContext(ctx, &lead, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	return &lead, nil
}

// Delete removes a lead. Notes cascade at the database level.
func (s *Service) Delete(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM leads WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus moves a lead to a new status and writes the status-change
// note the start-date resolver looks for. Both happen in one transaction
// so the note log never disagrees with the stored status.
func (s *Service) UpdateStatus(ctx context.Context, id int, req models.UpdateStatusRequest, userID *int) (*models.Lead, error) {
	target := cadence.Normalize(req.Status)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lead models.Lead
	err = tx.GetContext(ctx, &lead, `
		UPDATE leads SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+leadColumns,
		string(target), id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	body := cadence.StatusChangeNoteText(target)
	if req.Reason != "" {
		body += ". " + req.Reason
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO lead_notes (id, lead_id, user_id, note_type, body)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), id, userID, string(cadence.NotePlain), body,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to write status change note: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	s.log.Info("lead status updated", "lead_id", id, "status", string(target))
	return &lead, nil
}

// Search filters leads by status, free text and priority tier, ordered
// by score descending. Scores are computed live for the matching set, so
// the tier filter and the ordering reflect the current clock rather than
// the nightly cache.
func (s *Service) Search(ctx context.Context, req models.LeadSearchRequest, now time.Time) (*models.LeadListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	where := []string{}
	args := []interface{}{}
	i := 1
	if req.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", i))
		args = append(args, string(cadence.Normalize(req.Status)))
		i++
	}
	if req.Query != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR company ILIKE $%d OR address ILIKE $%d)", i, i, i, i))
		args = append(args, "%"+req.Query+"%")
		i++
	}

	query := "SELECT " + leadColumns + " FROM leads"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	var rows []models.Lead
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search leads: %w", err)
	}

	responses, err := s.buildResponses(ctx, rows, now)
	if err != nil {
		return nil, err
	}

	if req.Tier != "" {
		filtered := responses[:0]
		for _, r := range responses {
			if r.Tier == req.Tier {
				filtered = append(filtered, r)
			}
		}
		responses = filtered
	}

	sort.SliceStable(responses, func(a, b int) bool {
		return responses[a].Score > responses[b].Score
	})

	total := len(responses)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &models.LeadListResponse{
		Data:       responses[start:end],
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}

// GetResponse fetches a lead with its live score attached.
func (s *Service) GetResponse(ctx context.Context, id int, now time.Time) (*models.LeadResponse, error) {
	lead, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	responses, err := s.buildResponses(ctx, []models.Lead{*lead}, now)
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// NotesFor loads the cadence view of a lead's note log, oldest first.
func (s *Service) NotesFor(ctx context.Context, leadID int) ([]cadence.Note, error) {
	byLead, err := s.notesByLead(ctx, []int{leadID})
	if err != nil {
		return nil, err
	}
	return byLead[leadID], nil
}

// Rescore recomputes every lead's priority score and refreshes the
// cached column. Run nightly so dashboards and exports that read the
// cache stay close to the live value.
func (s *Service) Rescore(ctx context.Context, now time.Time) (int, error) {
	var rows []models.Lead
	if err := s.db.SelectContext(ctx, &rows, "SELECT "+leadColumns+" FROM leads"); err != nil {
		return 0, fmt.Errorf("failed to load leads for rescore: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	ids := make([]int, len(rows))
	for idx, l := range rows {
		ids[idx] = l.ID
	}
	notes, err := s.notesByLead(ctx, ids)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, lead := range rows {
		result := s.scorer.Score(cadence.LeadFacts{
			Status:  lead.Status,
			Name:    lead.Name,
			Address: lead.Address,
			Company: lead.Company,
			Notes:   notes[lead.ID],
		}, now)

		_, err := s.db.ExecContext(ctx,
			"UPDATE leads SET priority_score = $1, scored_at = $2 WHERE id = $3",
			result.Score, now, lead.ID,
		)
		if err != nil {
			return updated, fmt.Errorf("failed to store score for lead %d: %w", lead.ID, err)
		}
		updated++
	}

	return updated, nil
}

// MigrateStatuses rewrites every stored status alias to its canonical
// form. Idempotent: a second sweep finds nothing to change.
func (s *Service) MigrateStatuses(ctx context.Context) (int, error) {
	type row struct {
		ID     int    `db:"id"`
		Status string `db:"status"`
	}
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, "SELECT id, status FROM leads"); err != nil {
		return 0, fmt.Errorf("failed to load statuses: %w", err)
	}

	// Group by target so each canonical form is one UPDATE.
	targets := map[cadence.CanonicalStatus][]int{}
	for _, r := range rows {
		canonical := cadence.Normalize(r.Status)
		if string(canonical) != r.Status {
			targets[canonical] = append(targets[canonical], r.ID)
		}
	}

	migrated := 0
	for canonical, ids := range targets {
		_, err := s.db.ExecContext(ctx,
			"UPDATE leads SET status = $1, updated_at = now() WHERE id = ANY($2)",
			string(canonical), pq.Array(ids),
		)
		if err != nil {
			return migrated, fmt.Errorf("failed to migrate statuses to %s: %w", canonical, err)
		}
		migrated += len(ids)
	}

	if migrated > 0 {
		s.log.Info("migrated lead statuses to canonical forms", "count", migrated)
	}
	return migrated, nil
}

// AllFacts loads every lead as scorer input. The follow-up ranker and the
// dashboard both start from this view.
func (s *Service) AllFacts(ctx context.Context) ([]models.Lead, map[int][]cadence.Note, error) {
	var rows []models.Lead
	if err := s.db.SelectContext(ctx, &rows, "SELECT "+leadColumns+" FROM leads ORDER BY id"); err != nil {
		return nil, nil, fmt.Errorf("failed to load leads: %w", err)
	}
	if len(rows) == 0 {
		return rows, map[int][]cadence.Note{}, nil
	}
	ids := make([]int, len(rows))
	for i, l := range rows {
		ids[i] = l.ID
	}
	notes, err := s.notesByLead(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return rows, notes, nil
}

func (s *Service) buildResponses(ctx context.Context, rows []models.Lead, now time.Time) ([]models.LeadResponse, error) {
	if len(rows) == 0 {
		return []models.LeadResponse{}, nil
	}
	ids := make([]int, len(rows))
	for i, l := range rows {
		ids[i] = l.ID
	}
	notes, err := s.notesByLead(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]models.LeadResponse, 0, len(rows))
	for _, lead := range rows {
		leadNotes := notes[lead.ID]
		result := s.scorer.Score(cadence.LeadFacts{
			Status:  lead.Status,
			Name:    lead.Name,
			Address: lead.Address,
			Company: lead.Company,
			Notes:   leadNotes,
		}, now)

		responses = append(responses, models.LeadResponse{
			Lead:             lead,
			Score:            result.Score,
			Tier:             string(result.Tier),
			DaysSinceContact: result.DaysSinceContact,
			NoteCount:        len(leadNotes),
			Breakdown:        result.Breakdown,
		})
	}
	return responses, nil
}

func (s *Service) notesByLead(ctx context.Context, leadIDs []int) (map[int][]cadence.Note, error) {
	var rows []models.LeadNote
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, lead_id, user_id, note_type, body, created_at
		FROM lead_notes
		WHERE lead_id = ANY($1)
		ORDER BY created_at`,
		pq.Array(leadIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}

	byLead := make(map[int][]cadence.Note, len(leadIDs))
	for _, n := range rows {
		byLead[n.LeadID] = append(byLead[n.LeadID], cadence.Note{
			ID:        n.ID,
			Type:      cadence.NoteType(n.Type),
			Text:      n.Body,
			Timestamp: n.CreatedAt,
		})
	}
	return byLead, nil
}
