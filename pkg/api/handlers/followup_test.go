package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhaus/realtycrm/pkg/api"
	"github.com/openhaus/realtycrm/pkg/cadence"
	"github.com/openhaus/realtycrm/pkg/followup"
	"github.com/openhaus/realtycrm/pkg/leads"
	"github.com/openhaus/realtycrm/pkg/logger"
)

var testNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func newFollowUpHandler(t *testing.T) (*FollowUpHandler, sqlmock.Sqlmock, *echo.Echo) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	log := logger.Default()
	leadSvc := leads.New(sqlxDB, cadence.NewScorer(cadence.DefaultWeights()), log)
	followupSvc := followup.New(sqlxDB, leadSvc, log)

	e := echo.New()
	e.Validator = api.NewRequestValidator()
	return NewFollowUpHandler(followupSvc, nil, nil, cadence.DefaultRankOptions()), mock, e
}

func TestGetWorkflows(t *testing.T) {
	handler, _, e := newFollowUpHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/workflows", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.GetWorkflows(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var catalog map[string][]cadence.Action
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalog))

	assert.Len(t, catalog["VOICEMAIL"], 4)
	assert.Len(t, catalog["CONTACTED"], 4)
	assert.Empty(t, catalog["NOT INTERESTED"])
	assert.Equal(t, "vm-attempt-1", catalog["VOICEMAIL"][0].ID)
}

func TestGetProgress_InvalidID(t *testing.T) {
	handler, _, e := newFollowUpHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, handler.GetProgress(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProgress_NotFound(t *testing.T) {
	handler, mock, e := newFollowUpHandler(t)

	mock.ExpectQuery(`SELECT .+ FROM leads WHERE id`).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "phone", "company", "address", "status",
			"owner_id", "priority_score", "scored_at", "created_at", "updated_at",
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("42")

	require.NoError(t, handler.GetProgress(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplyQuickAction_UnknownActionIsBadRequest(t *testing.T) {
	handler, mock, e := newFollowUpHandler(t)

	mock.ExpectQuery(`SELECT .+ FROM leads WHERE id`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "phone", "company", "address", "status",
			"owner_id", "priority_score", "scored_at", "created_at", "updated_at",
		}).AddRow(1, "Ada", "", "", "", "", "CONTACTED", nil, 0, nil, testNow, testNow))

	body := `{"action_id":"vm-attempt-1","label":"Left Voicemail"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, handler.ApplyQuickAction(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown_action")
}

func TestApplyQuickAction_MissingFieldsRejected(t *testing.T) {
	handler, _, e := newFollowUpHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, handler.ApplyQuickAction(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}
