package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/agrotrack/feedengine/internal/config"
	"github.com/agrotrack/feedengine/internal/repository/mongodb"
	"github.com/agrotrack/feedengine/internal/repository/sheets"
	"github.com/agrotrack/feedengine/internal/scheduler"
	"github.com/agrotrack/feedengine/internal/server/handlers"
	"github.com/agrotrack/feedengine/internal/server/router"
	consumptionsvc "github.com/agrotrack/feedengine/internal/service/consumption"
	reportingsvc "github.com/agrotrack/feedengine/internal/service/reporting"
	"github.com/agrotrack/feedengine/pkg/clients/alerts"
	"github.com/agrotrack/feedengine/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var exporter sheets.Repository
	if cfg.Sheets.SpreadsheetID != "" {
		exporter, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		baseLogger.Info("consumption ledger export enabled")
	} else {
		baseLogger.Warn("sheets export not configured, ledger export disabled")
	}

	consumptionSvc := consumptionsvc.NewService(mongoRepo, cfg.Engine.LookbackDays, baseLogger.Named("svc.consumption"))
	reportingSvc := reportingsvc.NewService(mongoRepo, exporter, baseLogger.Named("svc.reporting"))

	var alertsClient alerts.Client
	if cfg.Alerts.WebhookURL != "" {
		alertsClient = alerts.NewClient(cfg.Alerts)
		baseLogger.Info("shortage alert webhook enabled")
	} else {
		baseLogger.Warn("shortage alert webhook not configured, alerts disabled")
	}

	handler := handlers.NewConsumptionHandler(consumptionSvc, reportingSvc, baseLogger.Named("handlers.consumption"))
	engine := router.New(handler, baseLogger.Named("router"))

	// Initialize Scheduler
	sched := scheduler.NewScheduler(*cfg, consumptionSvc, reportingSvc, alertsClient, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
