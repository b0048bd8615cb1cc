package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/openhaus/realtycrm/config"
	"github.com/openhaus/realtycrm/pkg/cadence"
	"github.com/openhaus/realtycrm/pkg/dashboard"
	"github.com/openhaus/realtycrm/pkg/email"
	"github.com/openhaus/realtycrm/pkg/followup"
	"github.com/openhaus/realtycrm/pkg/leads"
	"github.com/openhaus/realtycrm/pkg/logger"
)

// Runner owns the scheduled background work: the nightly rescore sweep
// and the weekly follow-up digest.
type Runner struct {
	cron      *cron.Cron
	cfg       *config.Config
	leads     *leads.Service
	followups *followup.Service
	email     *email.Service
	dashboard *dashboard.Service
	log       logger.Logger
}

// New creates the job runner.
func New(cfg *config.Config, leadSvc *leads.Service, followupSvc *followup.Service, emailSvc *email.Service, dashboardSvc *dashboard.Service, log logger.Logger) *Runner {
	return &Runner{
		cron:      cron.New(),
		cfg:       cfg,
		leads:     leadSvc,
		followups: followupSvc,
		email:     emailSvc,
		dashboard: dashboardSvc,
		log:       log,
	}
}

// Start registers the schedules and starts the cron loop.
func (r *Runner) Start() error {
	if _, err := r.cron.AddFunc(r.cfg.RescoreCronSpec, r.runRescore); err != nil {
		return fmt.Errorf("failed to schedule rescore job: %w", err)
	}
	if _, err := r.cron.AddFunc(r.cfg.DigestCronSpec, r.runDigest); err != nil {
		return fmt.Errorf("failed to schedule digest job: %w", err)
	}

	r.cron.Start()
	r.log.Info("background jobs scheduled",
		"rescore", r.cfg.RescoreCronSpec, "digest", r.cfg.DigestCronSpec)
	return nil
}

// Stop halts the scheduler and waits for running jobs.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// runRescore refreshes every lead's cached priority score, then drops
// the dashboard cache so the next read reflects the new numbers.
func (r *Runner) runRescore() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	updated, err := r.leads.Rescore(ctx, start)
	if err != nil {
		r.log.Error("rescore job failed", "error", err, "updated", updated)
		return
	}
	r.dashboard.Invalidate(ctx)
	r.log.Info("rescore job finished", "leads", updated, "took", time.Since(start).String())
}

// runDigest mails the weekly follow-up summary.
func (r *Runner) runDigest() {
	if r.cfg.DigestTo == "" {
		r.log.Info("digest job skipped: no recipient configured")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	now := time.Now()

	groups, err := r.followups.Ranked(ctx, now, r.rankOptions())
	if err != nil {
		r.log.Error("digest job failed loading follow-ups", "error", err)
		return
	}
	dormant, err := r.followups.DormantCount(ctx, now, r.dormantWindow())
	if err != nil {
		r.log.Error("digest job failed counting dormant leads", "error", err)
		return
	}
	stats, err := r.dashboard.Stats(ctx, now)
	if err != nil {
		r.log.Error("digest job failed loading stats", "error", err)
		return
	}

	err = r.email.SendDigest(r.cfg.DigestTo, email.DigestData{
		Groups:       groups,
		DormantCount: dormant,
		TotalLeads:   stats.TotalLeads,
	})
	if err != nil {
		r.log.Error("digest job failed sending email", "error", err)
		return
	}
	r.log.Info("digest job finished", "to", r.cfg.DigestTo)
}

// dormantWindow reads the dormancy cutoff from the scorer weights, the
// same threshold the tier labels use.
func (r *Runner) dormantWindow() int {
	return r.leads.Scorer().Weights().DormantAfterDays
}

func (r *Runner) rankOptions() cadence.RankOptions {
	return cadence.RankOptions{
		WindowDays: r.cfg.FollowUpWindowDays,
		Cap:        r.cfg.FollowUpListCap,
	}
}
