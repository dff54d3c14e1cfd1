package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/buyerdesk/backend/repository"
)

// JanitorConfig controls how often import reports are pruned and how long
// they are kept.
type JanitorConfig struct {
	Interval  time.Duration
	Retention time.Duration
}

// ReportJanitor periodically prunes import reports past their retention
// window so the report store stays bounded.
type ReportJanitor struct {
	reports repository.ImportReportRepository
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     JanitorConfig
}

func NewReportJanitor(reports repository.ImportReportRepository, logger *zap.Logger, cfg JanitorConfig) *ReportJanitor {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rj := &ReportJanitor{
		reports: reports,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = rj.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := rj.Sweep(ctx); err != nil {
			rj.logger.Error("import report sweep failed", zap.Error(err))
		}
	})

	return rj
}

// Start launches the cron scheduler.
func (rj *ReportJanitor) Start() {
	if rj == nil || rj.cron == nil {
		return
	}
	rj.cron.Start()
	rj.logger.Info("report janitor started")
}

// Stop gracefully stops the scheduler.
func (rj *ReportJanitor) Stop(ctx context.Context) {
	if rj == nil || rj.cron == nil {
		return
	}
	stopCtx := rj.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	rj.logger.Info("report janitor stopped")
}

// Sweep deletes reports older than the retention window.
func (rj *ReportJanitor) Sweep(ctx context.Context) error {
	if rj == nil || rj.reports == nil {
		return nil
	}
	cutoff := time.Now().Add(-rj.cfg.Retention)
	removed, err := rj.reports.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		rj.logger.Info("pruned import reports", zap.Int("removed", removed))
	}
	return nil
}
