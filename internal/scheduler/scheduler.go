package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/agrotrack/feedengine/internal/config"
	"github.com/agrotrack/feedengine/internal/service/consumption"
	"github.com/agrotrack/feedengine/internal/service/reporting"
	"github.com/agrotrack/feedengine/pkg/clients/alerts"
)

// actorScheduler identifies cron-triggered runs in the activity log.
const actorScheduler = "scheduler"

// Scheduler manages scheduled tasks: the nightly catch-up execution and the
// periodic ledger export.
type Scheduler struct {
	cron           *cron.Cron
	consumptionSvc *consumption.Service
	reportingSvc   *reporting.Service
	alertsClient   alerts.Client
	cfg            config.Config
	logger         *zap.Logger
}

// NewScheduler creates a new scheduler instance. alertsClient and the
// reporting exporter are optional features; pass nil to disable them.
func NewScheduler(cfg config.Config, consumptionSvc *consumption.Service, reportingSvc *reporting.Service, alertsClient alerts.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to UTC", zap.String("timezone", cfg.Scheduler.Timezone))
		loc = time.UTC
	}

	return &Scheduler{
		cron:           cron.New(cron.WithLocation(loc)),
		consumptionSvc: consumptionSvc,
		reportingSvc:   reportingSvc,
		alertsClient:   alertsClient,
		cfg:            cfg,
		logger:         logger,
	}
}

// Start registers the cron entries and starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler",
		zap.String("catchup", s.cfg.Scheduler.CatchUpCron),
		zap.String("export", s.cfg.Scheduler.ExportCron))

	if _, err := s.cron.AddFunc(s.cfg.Scheduler.CatchUpCron, s.runCatchUp); err != nil {
		s.logger.Error("failed to schedule catch-up execution", zap.Error(err))
	}

	if s.cfg.Scheduler.ExportCron != "" && s.cfg.Sheets.SpreadsheetID != "" {
		if _, err := s.cron.AddFunc(s.cfg.Scheduler.ExportCron, s.runExport); err != nil {
			s.logger.Error("failed to schedule ledger export", zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runCatchUp() {
	s.logger.Info("running scheduled catch-up execution")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	report, err := s.consumptionSvc.ExecuteAuto(ctx, actorScheduler)
	if err != nil {
		s.logger.Error("scheduled catch-up failed", zap.Error(err))
		return
	}

	s.logger.Info("scheduled catch-up finished",
		zap.Int("executed", len(report.ExecutedDates)),
		zap.Int("skipped", len(report.SkippedDates)),
		zap.Float64("total_kg", report.TotalConsumed))

	if len(report.SkippedDates) == 0 || s.alertsClient == nil {
		return
	}

	alert := alerts.ShortageAlert{
		RunID:        report.RunID,
		Actor:        actorScheduler,
		SkippedDates: report.SkippedDates,
		OccurredAt:   time.Now().UTC(),
	}
	if err := s.alertsClient.SendShortageAlert(ctx, alert); err != nil {
		s.logger.Error("failed to send shortage alert", zap.Error(err))
	}
}

func (s *Scheduler) runExport() {
	if s.reportingSvc == nil {
		return
	}

	s.logger.Info("running scheduled ledger export")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -7)

	rows, err := s.reportingSvc.ExportLedger(ctx, start, end)
	if err != nil {
		s.logger.Error("scheduled ledger export failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled ledger export finished", zap.Int("rows", rows))
}
