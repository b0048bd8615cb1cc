package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openhaus/realtycrm/pkg/cadence"
	"github.com/openhaus/realtycrm/pkg/dashboard"
	"github.com/openhaus/realtycrm/pkg/followup"
	"github.com/openhaus/realtycrm/pkg/leads"
	"github.com/openhaus/realtycrm/pkg/metrics"
	"github.com/openhaus/realtycrm/pkg/models"
)

// FollowUpHandler exposes the cadence engine: workflow catalog, per-lead
// progress, quick actions and the priority follow-ups board.
type FollowUpHandler struct {
	followupService *followup.Service
	dashboard       *dashboard.Service
	metrics         *metrics.Metrics
	rankOptions     cadence.RankOptions
}

// NewFollowUpHandler creates a new follow-up handler.
func NewFollowUpHandler(followupService *followup.Service, dashboardService *dashboard.Service, m *metrics.Metrics, rankOptions cadence.RankOptions) *FollowUpHandler {
	return &FollowUpHandler{
		followupService: followupService,
		dashboard:       dashboardService,
		metrics:         m,
		rankOptions:     rankOptions,
	}
}

// GetWorkflows godoc
// @Summary Workflow catalog
// @Description The full per-status action catalog the cadence engine runs
// @Tags Follow-ups
// @Produce json
// @Success 200 {object} map[string][]cadence.Action
// @Security BearerAuth
// @Router /api/v1/workflows [get]
func (h *FollowUpHandler) GetWorkflows(c echo.Context) error {
	catalog := make(map[string][]cadence.Action)
	for _, status := range cadence.AllStatuses() {
		actions := cadence.WorkflowFor(status)
		if actions == nil {
			actions = []cadence.Action{}
		}
		catalog[string(status)] = actions
	}
	return c.JSON(http.StatusOK, catalog)
}

// GetProgress godoc
// @Summary Lead workflow progress
// @Description Where a lead stands in its status cadence, derived from the note log
// @Tags Follow-ups
// @Produce json
// @Param id path int true "Lead ID"
// @Success 200 {object} cadence.StatusProgress
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/leads/{id}/progress [get]
func (h *FollowUpHandler) GetProgress(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leadID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid lead ID",
		})
	}

	progress, err := h.followupService.Progress(ctx, leadID, time.Now())
	if err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Lead not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to compute progress",
		})
	}
	return c.JSON(http.StatusOK, progress)
}

// ApplyQuickAction godoc
// @Summary Complete a workflow action
// @Description Record a quick-action outcome; writes the note and moves the lead when the outcome transitions it
// @Tags Follow-ups
// @Accept json
// @Produce json
// @Param id path int true "Lead ID"
// @Param request body models.QuickActionRequest true "Action and chosen outcome"
// @Success 200 {object} followup.QuickActionOutcome
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/leads/{id}/actions [post]
func (h *FollowUpHandler) ApplyQuickAction(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leadID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid lead ID",
		})
	}

	var req models.QuickActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Action ID and outcome label are required",
		})
	}

	var userID *int
	if uid, ok := c.Get("user_id").(int); ok {
		userID = &uid
	}

	outcome, err := h.followupService.ApplyQuickAction(ctx, leadID, req, userID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, leads.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Lead not found",
			})
		case errors.Is(err, followup.ErrUnknownAction):
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "unknown_action",
				Message: "Action does not belong to the lead's current status",
			})
		case errors.Is(err, followup.ErrUnknownChoice):
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "unknown_choice",
				Message: "Outcome label is not offered for this action",
			})
		default:
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "server_error",
				Message: "Failed to apply action",
			})
		}
	}

	if h.metrics != nil {
		h.metrics.QuickActions.WithLabelValues(req.ActionID, outcome.Outcome).Inc()
	}
	if h.dashboard != nil {
		h.dashboard.Invalidate(ctx)
	}
	return c.JSON(http.StatusOK, outcome)
}

// ListFollowUps godoc
// @Summary Priority follow-ups board
// @Description Leads worth contacting now, ranked and grouped by status tier
// @Tags Follow-ups
// @Produce json
// @Success 200 {array} cadence.FollowUpGroup
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/followups [get]
func (h *FollowUpHandler) ListFollowUps(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	groups, err := h.followupService.Ranked(ctx, time.Now(), h.rankOptions)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to rank follow-ups",
		})
	}
	return c.JSON(http.StatusOK, groups)
}
