package jobs

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhaus/realtycrm/config"
	"github.com/openhaus/realtycrm/pkg/cadence"
	"github.com/openhaus/realtycrm/pkg/leads"
	"github.com/openhaus/realtycrm/pkg/logger"
)

func TestDormantWindowFollowsScorerWeights(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	w := cadence.DefaultWeights()
	w.DormantAfterDays = 45
	leadSvc := leads.New(sqlx.NewDb(db, "sqlmock"), cadence.NewScorer(w), logger.Default())

	// The digest window comes from the scorer weights, not the config.
	cfg := &config.Config{DormantAfterDays: 30}
	r := New(cfg, leadSvc, nil, nil, nil, logger.Default())

	assert.Equal(t, 45, r.dormantWindow())
}
