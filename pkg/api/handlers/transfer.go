package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openhaus/realtycrm/pkg/dashboard"
	"github.com/openhaus/realtycrm/pkg/export"
	"github.com/openhaus/realtycrm/pkg/importer"
	"github.com/openhaus/realtycrm/pkg/metrics"
	"github.com/openhaus/realtycrm/pkg/models"
)

// TransferHandler handles CSV import and CSV/XLSX export.
type TransferHandler struct {
	importService *importer.Service
	exportService *export.Service
	dashboard     *dashboard.Service
	metrics       *metrics.Metrics
}

// NewTransferHandler creates a new import/export handler.
func NewTransferHandler(importService *importer.Service, exportService *export.Service, dashboardService *dashboard.Service, m *metrics.Metrics) *TransferHandler {
	return &TransferHandler{
		importService: importService,
		exportService: exportService,
		dashboard:     dashboardService,
		metrics:       m,
	}
}

// ImportLeads godoc
// @Summary Import leads from CSV
// @Description Upload a CSV with a header row; bad rows are skipped and reported
// @Tags Transfer
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} importer.Result
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/leads/import [post]
func (h *TransferHandler) ImportLeads(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Minute)
	defer cancel()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "A CSV file is required in the 'file' field",
		})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to read uploaded file",
		})
	}
	defer file.Close()

	var ownerID *int
	if uid, ok := c.Get("user_id").(int); ok {
		ownerID = &uid
	}

	result, err := h.importService.ImportCSV(ctx, file, ownerID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "import_failed",
			Message: err.Error(),
		})
	}

	if h.metrics != nil {
		h.metrics.LeadsImported.Add(float64(result.Imported))
	}
	if h.dashboard != nil {
		h.dashboard.Invalidate(ctx)
	}
	return c.JSON(http.StatusOK, result)
}

// ExportCSV godoc
// @Summary Export leads as CSV
// @Description Stream the lead table with live score and tier columns
// @Tags Transfer
// @Produce text/csv
// @Success 200 {string} string
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/leads/export/csv [get]
func (h *TransferHandler) ExportCSV(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Minute)
	defer cancel()

	now := time.Now()
	filename := fmt.Sprintf("leads_%s.csv", now.Format("20060102_150405"))
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().WriteHeader(http.StatusOK)

	if _, err := h.exportService.WriteCSV(ctx, c.Response(), now); err != nil {
		return err
	}
	if h.metrics != nil {
		h.metrics.ExportsCreated.Inc()
	}
	return nil
}

// ExportXLSX godoc
// @Summary Export leads as a spreadsheet
// @Description Download the lead table as XLSX with live score and tier columns
// @Tags Transfer
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {string} string
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/leads/export/xlsx [get]
func (h *TransferHandler) ExportXLSX(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Minute)
	defer cancel()

	now := time.Now()
	f, _, err := h.exportService.BuildXLSX(ctx, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to build export",
		})
	}
	defer f.Close()

	filename := fmt.Sprintf("leads_%s.xlsx", now.Format("20060102_150405"))
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().WriteHeader(http.StatusOK)

	if err := f.Write(c.Response()); err != nil {
		return err
	}
	if h.metrics != nil {
		h.metrics.ExportsCreated.Inc()
	}
	return nil
}
