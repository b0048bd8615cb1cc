package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/openhaus/realtycrm/pkg/leads"
	"github.com/openhaus/realtycrm/pkg/logger"
	"github.com/openhaus/realtycrm/pkg/models"
	"github.com/openhaus/realtycrm/pkg/phone"
)

// columnAliases maps header spellings seen in exported CRMs onto lead
// fields. Matching is case-insensitive after trimming.
var columnAliases = map[string]string{
	"name":             "name",
	"full name":        "name",
	"contact":          "name",
	"email":            "email",
	"e-mail":           "email",
	"email address":    "email",
	"phone":            "phone",
	"phone number":     "phone",
	"mobile":           "phone",
	"company":          "company",
	"brokerage":        "company",
	"address":          "address",
	"property address": "address",
	"status":           "status",
	"stage":            "status",
}

// RowError records why one CSV row was skipped.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Result summarizes an import run.
type Result struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors,omitempty"`
}

// Service imports leads from CSV files.
type Service struct {
	leads       *leads.Service
	phoneRegion string
	log         logger.Logger
}

// New creates a new importer. phoneRegion is the default country for
// numbers without a country code.
func New(leadSvc *leads.Service, phoneRegion string, log logger.Logger) *Service {
	return &Service{leads: leadSvc, phoneRegion: phoneRegion, log: log}
}

// ImportCSV reads a CSV with a header row and creates a lead per data
// row. Bad rows are skipped and reported, never fatal: a 500-row file
// with 3 broken rows imports 497 leads.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader, ownerID *int) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	fields := make(map[int]string, len(header))
	for i, col := range header {
		if field, ok := columnAliases[strings.ToLower(strings.TrimSpace(col))]; ok {
			fields[i] = field
		}
	}
	if !hasField(fields, "name") {
		return nil, fmt.Errorf("CSV has no recognizable name column")
	}

	result := &Result{}
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}

		req := models.CreateLeadRequest{}
		for i, value := range record {
			value = strings.TrimSpace(value)
			switch fields[i] {
			case "name":
				req.Name = value
			case "email":
				req.Email = value
			case "phone":
				req.Phone = phone.NormalizeOrKeep(value, s.phoneRegion)
			case "company":
				req.Company = value
			case "address":
				req.Address = value
			case "status":
				req.Status = value
			}
		}

		if req.Name == "" {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: "missing name"})
			continue
		}

		if _, err := s.leads.Create(ctx, req, ownerID); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		result.Imported++
	}

	s.log.Info("CSV import finished", "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

func hasField(fields map[int]string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
