// Package main provides a standalone entry point for the feedback worker,
// for deployments that run background scans separately from the API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/outreach-engine/internal/config"
	"github.com/outreach-engine/internal/logging"
	"github.com/outreach-engine/internal/storage"
	"github.com/outreach-engine/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.InitGlobalLogger(
		logging.ParseLogLevel(cfg.Logging.Level),
		logging.ParseLogFormat(cfg.Logging.Format),
	)
	logger := logging.GetGlobalLogger()

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	outreachRepo := storage.NewOutreachRepository(postgres)

	feedbackWorker := worker.NewFeedbackWorker(outreachRepo, cfg.Feedback.PollInterval, logger)
	if err := feedbackWorker.Start(context.Background()); err != nil {
		logger.WithError(err).Fatal("Failed to start feedback worker")
	}

	logger.Info("Feedback worker running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := feedbackWorker.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Feedback worker shutdown failed")
	}
}
