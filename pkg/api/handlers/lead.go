package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openhaus/realtycrm/pkg/dashboard"
	"github.com/openhaus/realtycrm/pkg/leads"
	"github.com/openhaus/realtycrm/pkg/metrics"
	"github.com/openhaus/realtycrm/pkg/models"
)

// LeadHandler handles lead CRUD and status moves.
type LeadHandler struct {
	leadService *leads.Service
	dashboard   *dashboard.Service
	metrics     *metrics.Metrics
}

// NewLeadHandler creates a new lead handler.
func NewLeadHandler(leadService *leads.Service, dashboardService *dashboard.Service, m *metrics.Metrics) *LeadHandler {
	return &LeadHandler{leadService: leadService, dashboard: dashboardService, metrics: m}
}

func parseID(c echo.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *LeadHandler) invalidate(ctx context.Context) {
	if h.dashboard != nil {
		h.dashboard.Invalidate(ctx)
	}
}

// CreateLead godoc
// @Summary Create a new lead
// @Description Create a lead; the status is normalized to its canonical form
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body models.CreateLeadRequest true "Lead details"
// @Success 201 {object} models.Lead
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/leads [post]
func (h *LeadHandler) CreateLead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Name is required",
		})
	}

	var ownerID *int
	if userID, ok := c.Get("user_id").(int); ok {
		ownerID = &userID
	}

	lead, err := h.leadService.Create(ctx, req, ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to create lead",
		})
	}

	if h.metrics != nil {
		h.metrics.LeadsCreated.Inc()
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusCreated, lead)
}

// ListLeads godoc
// @Summary List leads
// @Description List leads filtered by status, tier and free text, ordered by live priority score
// @Tags Leads
// @Produce json
// @Param status query string false "Status filter (aliases accepted)"
// @Param tier query string false "Tier filter: high, medium, low, dormant"
// @Param q query string false "Free-text search over name, email, company, address"
// @Param page query int false "Page number"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} models.LeadListResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/leads [get]
func (h *LeadHandler) ListLeads(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	var req models.LeadSearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid query parameters",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid filter values",
		})
	}

	resp, err := h.leadService.Search(ctx, req, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to list leads",
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// GetLead godoc
// @Summary Get a lead
// @Description Get a lead with its live score, tier and score breakdown
// @Tags Leads
// @Produce json
// @Param id path int true "Lead ID"
// @Success 200 {object} models.LeadResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/leads/{id} [get]
func (h *LeadHandler) GetLead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid lead ID",
		})
	}

	resp, err := h.leadService.GetResponse(ctx, id, time.Now())
	if err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Lead not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to get lead",
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateLead godoc
// @Summary Update lead contact fields
// @Description Patch name, email, phone, company or address. Status moves use the status endpoint
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path int true "Lead ID"
// @Param request body models.UpdateLeadRequest true "Fields to update"
// @Success 200 {object} models.Lead
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/leads/{id} [patch]
func (h *LeadHandler) UpdateLead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid lead ID",
		})
	}

	var req models.UpdateLeadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid field values",
		})
	}

	lead, err := h.leadService.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Lead not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to update lead",
		})
	}

	h.invalidate(ctx)
	return c.JSON(http.StatusOK, lead)
}

// UpdateLeadStatus godoc
// @Summary Move a lead to a new status
// @Description Normalize the target status, update the lead and write a status-change note
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path int true "Lead ID"
// @Param request body models.UpdateStatusRequest true "Target status"
// @Success 200 {object} models.Lead
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/leads/{id}/status [put]
func (h *LeadHandler) UpdateLeadStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid lead ID",
		})
	}

	var req models.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Status is required",
		})
	}

	var userID *int
	if uid, ok := c.Get("user_id").(int); ok {
		userID = &uid
	}

	before, err := h.leadService.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Lead not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to update status",
		})
	}

	lead, err := h.leadService.UpdateStatus(ctx, id, req, userID)
	if err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Lead not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to update status",
		})
	}

	if h.metrics != nil {
		h.metrics.StatusTransitions.WithLabelValues(before.Status, lead.Status).Inc()
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusOK, lead)
}

// DeleteLead godoc
// @Summary Delete a lead
// @Description Delete a lead and its notes
// @Tags Leads
// @Param id path int true "Lead ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/leads/{id} [delete]
func (h *LeadHandler) DeleteLead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid lead ID",
		})
	}

	if err := h.leadService.Delete(ctx, id); err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Lead not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to delete lead",
		})
	}

	h.invalidate(ctx)
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Lead deleted successfully",
	})
}
