package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhaus/realtycrm/pkg/cadence"
	"github.com/openhaus/realtycrm/pkg/leads"
	"github.com/openhaus/realtycrm/pkg/logger"
)

var testNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.Default()
	leadSvc := leads.New(sqlx.NewDb(db, "sqlmock"), cadence.NewScorer(cadence.DefaultWeights()), log)
	return New(leadSvc, "US", log), mock
}

func expectInsert(mock sqlmock.Sqlmock, name, email, phoneNum, company, address, status string) {
	mock.ExpectQuery(`INSERT INTO leads`).
		WithArgs(name, email, phoneNum, company, address, status, nil).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "phone", "company", "address", "status",
			"owner_id", "priority_score", "scored_at", "created_at", "updated_at",
		}).AddRow(1, name, email, phoneNum, company, address, status, nil, 0, nil, testNow, testNow))
}

func TestImportCSV(t *testing.T) {
	svc, mock := newTestService(t)

	csvData := strings.Join([]string{
		"Full Name,E-Mail,Phone Number,Company,Address,Stage",
		"Ada Mayfield,ada@example.com,(415) 555-2671,Mayfield Realty,12 Oak St,left voicemail",
		"Ben Okoro,ben@example.com,,,,hot",
	}, "\n")

	expectInsert(mock, "Ada Mayfield", "ada@example.com", "+14155552671", "Mayfield Realty", "12 Oak St", "VOICEMAIL")
	expectInsert(mock, "Ben Okoro", "ben@example.com", "", "", "", "INTERESTED")

	result, err := svc.ImportCSV(context.Background(), strings.NewReader(csvData), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Zero(t, result.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportCSV_SkipsBadRowsAndContinues(t *testing.T) {
	svc, mock := newTestService(t)

	csvData := strings.Join([]string{
		"Name,Email",
		",missing-name@example.com",
		"Valid Lead,valid@example.com",
	}, "\n")

	expectInsert(mock, "Valid Lead", "valid@example.com", "", "", "", "CONTACTED")

	result, err := svc.ImportCSV(context.Background(), strings.NewReader(csvData), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportCSV_NoNameColumn(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ImportCSV(context.Background(), strings.NewReader("Email\nx@example.com\n"), nil)
	assert.Error(t, err)
}

func TestImportCSV_KeepsUnparseablePhones(t *testing.T) {
	svc, mock := newTestService(t)

	csvData := "Name,Phone\nAda,ext. 42\n"
	expectInsert(mock, "Ada", "", "ext. 42", "", "", "CONTACTED")

	result, err := svc.ImportCSV(context.Background(), strings.NewReader(csvData), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.NoError(t, mock.ExpectationsWereMet())
}
