package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/openhaus/realtycrm/pkg/cache"
	"github.com/openhaus/realtycrm/pkg/cadence"
	"github.com/openhaus/realtycrm/pkg/leads"
	"github.com/openhaus/realtycrm/pkg/logger"
	"github.com/openhaus/realtycrm/pkg/metrics"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = 5 * time.Minute
)

// Stats is the pipeline overview the dashboard renders.
type Stats struct {
	TotalLeads   int            `json:"total_leads"`
	StatusCounts map[string]int `json:"status_counts"`
	TierCounts   map[string]int `json:"tier_counts"`
	DormantLeads int            `json:"dormant_leads"`
	AverageScore int            `json:"average_score"`
	NotesLast7d  int            `json:"notes_last_7_days"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

// Service computes dashboard statistics. Results are cached in Redis for
// a few minutes; stats tolerate slight staleness and the tier breakdown
// scores every lead.
type Service struct {
	db      *sqlx.DB
	leads   *leads.Service
	scorer  *cadence.Scorer
	cache   *cache.Client
	metrics *metrics.Metrics
	log     logger.Logger
}

// New creates a new dashboard service. cache may be nil; stats are then
// computed on every call.
func New(db *sqlx.DB, leadSvc *leads.Service, scorer *cadence.Scorer, cacheClient *cache.Client, m *metrics.Metrics, log logger.Logger) *Service {
	return &Service{db: db, leads: leadSvc, scorer: scorer, cache: cacheClient, metrics: m, log: log}
}

// Stats returns the dashboard overview, from cache when fresh.
func (s *Service) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, statsCacheKey)
		if err == nil {
			var stats Stats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				if s.metrics != nil {
					s.metrics.CacheHits.WithLabelValues("dashboard").Inc()
				}
				return &stats, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			// Redis being down degrades to a live computation.
			s.log.Warn("dashboard cache read failed", "error", err)
		}
		if s.metrics != nil {
			s.metrics.CacheMisses.WithLabelValues("dashboard").Inc()
		}
	}

	stats, err := s.compute(ctx, now)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, payload, statsCacheTTL); err != nil {
				s.log.Warn("dashboard cache write failed", "error", err)
			}
		}
	}
	return stats, nil
}

// Invalidate drops the cached stats. Write paths call this so the
// dashboard reflects mutations within one request.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.log.Warn("dashboard cache invalidation failed", "error", err)
	}
}

func (s *Service) compute(ctx context.Context, now time.Time) (*Stats, error) {
	rows, notes, err := s.leads.AllFacts(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalLeads:   len(rows),
		StatusCounts: map[string]int{},
		TierCounts:   map[string]int{},
		GeneratedAt:  now,
	}
	for _, status := range cadence.AllStatuses() {
		stats.StatusCounts[string(status)] = 0
	}

	scoreSum := 0
	for _, lead := range rows {
		stats.StatusCounts[string(cadence.Normalize(lead.Status))]++

		result := s.scorer.Score(cadence.LeadFacts{
			Status:  lead.Status,
			Name:    lead.Name,
			Address: lead.Address,
			Company: lead.Company,
			Notes:   notes[lead.ID],
		}, now)
		stats.TierCounts[string(result.Tier)]++
		scoreSum += result.Score
		if result.Tier == cadence.TierDormant {
			stats.DormantLeads++
		}
	}
	if len(rows) > 0 {
		stats.AverageScore = scoreSum / len(rows)
	}

	weekAgo := now.AddDate(0, 0, -7)
	var recent int
	err = s.db.GetContext(ctx, &recent,
		"SELECT COUNT(*) FROM lead_notes WHERE created_at > $1", weekAgo)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent notes: %w", err)
	}
	stats.NotesLast7d = recent

	return stats, nil
}
