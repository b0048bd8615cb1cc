package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/openhaus/realtycrm/pkg/cadence"
	"github.com/openhaus/realtycrm/pkg/leads"
	"github.com/openhaus/realtycrm/pkg/logger"
	"github.com/openhaus/realtycrm/pkg/models"
)

var exportHeader = []string{
	"ID", "Name", "Email", "Phone", "Company", "Address",
	"Status", "Score", "Tier", "Days Since Contact", "Notes", "Created At",
}

// Service exports the lead table with derived priority columns attached,
// so a spreadsheet shows the same scores the app does.
type Service struct {
	leads     *leads.Service
	scorer    *cadence.Scorer
	localPath string
	log       logger.Logger
}

// New creates a new export service. localPath is where saved XLSX files
// land.
func New(leadSvc *leads.Service, scorer *cadence.Scorer, localPath string, log logger.Logger) *Service {
	return &Service{leads: leadSvc, scorer: scorer, localPath: localPath, log: log}
}

type exportRow struct {
	lead   models.Lead
	result cadence.ScoreResult
	notes  int
}

func (s *Service) rows(ctx context.Context, now time.Time) ([]exportRow, error) {
	all, notes, err := s.leads.AllFacts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]exportRow, 0, len(all))
	for _, lead := range all {
		leadNotes := notes[lead.ID]
		result := s.scorer.Score(cadence.LeadFacts{
			Status:  lead.Status,
			Name:    lead.Name,
			Address: lead.Address,
			Company: lead.Company,
			Notes:   leadNotes,
		}, now)
		out = append(out, exportRow{lead: lead, result: result, notes: len(leadNotes)})
	}
	return out, nil
}

func (r exportRow) values() []string {
	return []string{
		strconv.Itoa(r.lead.ID),
		r.lead.Name,
		r.lead.Email,
		r.lead.Phone,
		r.lead.Company,
		r.lead.Address,
		r.lead.Status,
		strconv.Itoa(r.result.Score),
		string(r.result.Tier),
		strconv.Itoa(r.result.DaysSinceContact),
		strconv.Itoa(r.notes),
		r.lead.CreatedAt.Format(time.RFC3339),
	}
}

// WriteCSV streams the full lead table as CSV and returns the row count.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, now time.Time) (int, error) {
	rows, err := s.rows(ctx, now)
	if err != nil {
		return 0, err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range rows {
		if err := writer.Write(r.values()); err != nil {
			return 0, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return len(rows), nil
}

// BuildXLSX builds the lead table as a spreadsheet.
func (s *Service) BuildXLSX(ctx context.Context, now time.Time) (*excelize.File, int, error) {
	rows, err := s.rows(ctx, now)
	if err != nil {
		return nil, 0, err
	}

	f := excelize.NewFile()
	sheet := "Leads"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for i, r := range rows {
		for col, value := range r.values() {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	return f, len(rows), nil
}

// SaveXLSX builds the spreadsheet and writes it under the configured
// local path with a timestamped name, returning the full path.
func (s *Service) SaveXLSX(ctx context.Context, now time.Time) (string, error) {
	f, count, err := s.BuildXLSX(ctx, now)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := os.MkdirAll(s.localPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(s.localPath, fmt.Sprintf("leads_%s.xlsx", now.Format("20060102_150405")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save export: %w", err)
	}

	s.log.Info("export saved", "path", path, "leads", count)
	return path, nil
}
