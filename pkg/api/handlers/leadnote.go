package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openhaus/realtycrm/pkg/dashboard"
	"github.com/openhaus/realtycrm/pkg/leadnote"
	"github.com/openhaus/realtycrm/pkg/leads"
	"github.com/openhaus/realtycrm/pkg/metrics"
	"github.com/openhaus/realtycrm/pkg/models"
)

// LeadNoteHandler handles the note log under a lead.
type LeadNoteHandler struct {
	noteService *leadnote.Service
	leadService *leads.Service
	dashboard   *dashboard.Service
	metrics     *metrics.Metrics
}

// NewLeadNoteHandler creates a new lead note handler.
func NewLeadNoteHandler(noteService *leadnote.Service, leadService *leads.Service, dashboardService *dashboard.Service, m *metrics.Metrics) *LeadNoteHandler {
	return &LeadNoteHandler{
		noteService: noteService,
		leadService: leadService,
		dashboard:   dashboardService,
		metrics:     m,
	}
}

// CreateNote godoc
// @Summary Append a note to a lead
// @Description Record an interaction. An optional timestamp backfills historical notes
// @Tags Lead Notes
// @Accept json
// @Produce json
// @Param id path int true "Lead ID"
// @Param request body models.CreateNoteRequest true "Note details"
// @Success 201 {object} models.LeadNote
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/leads/{id}/notes [post]
func (h *LeadNoteHandler) CreateNote(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leadID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid lead ID",
		})
	}

	var req models.CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Type must be one of call, email, note, video, social, text and text is required",
		})
	}

	// The lead must exist; notes never dangle.
	if _, err := h.leadService.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Lead not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to create note",
		})
	}

	var userID *int
	if uid, ok := c.Get("user_id").(int); ok {
		userID = &uid
	}

	note, err := h.noteService.Create(ctx, leadID, req, userID, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to create note",
		})
	}

	if h.metrics != nil {
		h.metrics.NotesCreated.WithLabelValues(note.Type).Inc()
	}
	if h.dashboard != nil {
		h.dashboard.Invalidate(ctx)
	}
	return c.JSON(http.StatusCreated, note)
}

// ListNotes godoc
// @Summary List a lead's notes
// @Description All notes for a lead, oldest first
// @Tags Lead Notes
// @Produce json
// @Param id path int true "Lead ID"
// @Success 200 {array} models.LeadNote
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/leads/{id}/notes [get]
func (h *LeadNoteHandler) ListNotes(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leadID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid lead ID",
		})
	}

	notes, err := h.noteService.ListForLead(ctx, leadID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to list notes",
		})
	}
	return c.JSON(http.StatusOK, notes)
}

// UpdateNote godoc
// @Summary Edit a note
// @Description Update a note's text. Timestamps and types are immutable
// @Tags Lead Notes
// @Accept json
// @Produce json
// @Param id path int true "Lead ID"
// @Param note_id path string true "Note ID"
// @Param request body models.UpdateNoteRequest true "Update details"
// @Success 200 {object} models.LeadNote
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/leads/{id}/notes/{note_id} [patch]
func (h *LeadNoteHandler) UpdateNote(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leadID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid lead ID",
		})
	}
	noteID := c.Param("note_id")
	if noteID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid note ID",
		})
	}

	var req models.UpdateNoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Text cannot be empty",
		})
	}

	note, err := h.noteService.Update(ctx, leadID, noteID, req)
	if err != nil {
		if errors.Is(err, leadnote.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Note not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to update note",
		})
	}
	return c.JSON(http.StatusOK, note)
}

// DeleteNote godoc
// @Summary Delete a note
// @Description Remove a note from the log
// @Tags Lead Notes
// @Param id path int true "Lead ID"
// @Param note_id path string true "Note ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/leads/{id}/notes/{note_id} [delete]
func (h *LeadNoteHandler) DeleteNote(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leadID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid lead ID",
		})
	}
	noteID := c.Param("note_id")

	if err := h.noteService.Delete(ctx, leadID, noteID); err != nil {
		if errors.Is(err, leadnote.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Note not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to delete note",
		})
	}

	if h.dashboard != nil {
		h.dashboard.Invalidate(ctx)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Note deleted successfully",
	})
}
