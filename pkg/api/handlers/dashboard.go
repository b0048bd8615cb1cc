package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openhaus/realtycrm/pkg/dashboard"
	"github.com/openhaus/realtycrm/pkg/models"
)

// DashboardHandler serves the pipeline overview.
type DashboardHandler struct {
	dashboardService *dashboard.Service
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboardService *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats godoc
// @Summary Dashboard statistics
// @Description Status counts, tier distribution, dormant count and recent activity
// @Tags Dashboard
// @Produce json
// @Success 200 {object} dashboard.Stats
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/dashboard/stats [get]
func (h *DashboardHandler) GetStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	stats, err := h.dashboardService.Stats(ctx, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to compute statistics",
		})
	}
	return c.JSON(http.StatusOK, stats)
}
