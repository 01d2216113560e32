// Package cmd provides command-line interface functionality for the swiftscope application.
/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swiftscope/internal/adapter/inbound/messaging"
	outboundmessaging "swiftscope/internal/adapter/outbound/messaging"
	"swiftscope/internal/adapter/outbound/repository"
	"swiftscope/internal/adapter/outbound/treesitter"
	swiftparser "swiftscope/internal/adapter/outbound/treesitter/parsers/swift"
	"swiftscope/internal/application/common/slogger"
	"swiftscope/internal/application/service"
	"swiftscope/internal/application/worker"
	"swiftscope/internal/config"
	"swiftscope/internal/port/inbound"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// newWorkerCmd creates and returns the worker command.
func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Start the background worker service",
		Long: `Start the background worker service that processes file analysis jobs
from NATS JetStream.

The worker service:
- Connects to NATS JetStream to consume per-file analysis jobs
- Parses each file, extracts its outline and diagnostics
- Stores the results in PostgreSQL for whole-project queries
- Parks poisoned jobs on a dead letter stream after retries

Configuration is loaded from config files and environment variables.`,
		Run: func(_ *cobra.Command, _ []string) {
			runWorkerService()
		},
	}
}

// runWorkerService starts and runs the worker service.
func runWorkerService() {
	configureLogging("stdout")
	cfg := GetConfig()

	slogger.InfoNoCtx("Starting worker service", slogger.Fields{
		"concurrency": cfg.Worker.Concurrency,
		"queue_group": cfg.Worker.QueueGroup,
	})

	dbPool, err := setupDatabaseConnection(cfg)
	if err != nil {
		slogger.ErrorNoCtx("Failed to create database connection pool", slogger.Fields{"error": err.Error()})
		return
	}
	defer dbPool.Close()

	if err := repository.Migrate(context.Background(), dbPool); err != nil {
		slogger.ErrorNoCtx("Failed to apply database schema", slogger.Fields{"error": err.Error()})
		return
	}

	workerService, publisher, err := createWorkerService(cfg, dbPool)
	if err != nil {
		slogger.ErrorNoCtx("Failed to create worker service", slogger.Fields{"error": err.Error()})
		return
	}
	defer func() {
		if err := publisher.Disconnect(); err != nil {
			slogger.ErrorNoCtx("Failed to disconnect publisher", slogger.Fields{"error": err.Error()})
		}
	}()

	if err := startWorkerService(workerService); err != nil {
		slogger.ErrorNoCtx("Failed to start worker service", slogger.Fields{"error": err.Error()})
		return
	}

	waitForShutdownAndStop(workerService)
}

// createWorkerService creates and configures the worker service with all dependencies.
func createWorkerService(
	cfg *config.Config,
	dbPool *pgxpool.Pool,
) (inbound.WorkerService, *outboundmessaging.NATSMessagePublisher, error) {
	outlineRepository := repository.NewPostgreSQLOutlineRepository(dbPool)

	parser, err := treesitter.NewSwiftParser()
	if err != nil {
		slogger.ErrorNoCtx("Failed to create Swift parser", slogger.Fields{"error": err.Error()})
		return nil, nil, err
	}

	jobProcessor := worker.NewAnalysisJobProcessor(
		worker.JobProcessorConfig{
			MaxConcurrentJobs: cfg.Worker.Concurrency,
			MaxMemoryMB:       cfg.Worker.MaxMemoryMB,
		},
		parser,
		swiftparser.NewSwiftOutlineExtractor(),
		treesitter.NewDiagnosticsExtractor(),
		outlineRepository,
	)

	// The publisher doubles as the DLQ sink for poisoned jobs.
	publisher, err := outboundmessaging.NewNATSMessagePublisher(cfg.NATS)
	if err != nil {
		return nil, nil, err
	}
	if err := publisher.Connect(); err != nil {
		return nil, nil, err
	}
	if err := publisher.EnsureStream(); err != nil {
		_ = publisher.Disconnect()
		return nil, nil, err
	}

	consumerConfig := messaging.ConsumerConfig{
		Subject:       outboundmessaging.AnalysisJobSubject,
		QueueGroup:    cfg.Worker.QueueGroup,
		DurableName:   "analysis-consumer",
		AckWait:       30 * time.Second,
		MaxDeliver:    3,
		MaxAckPending: 100,
	}

	consumer, err := messaging.NewNATSConsumer(consumerConfig, cfg.NATS, jobProcessor, publisher)
	if err != nil {
		_ = publisher.Disconnect()
		return nil, nil, err
	}

	workerServiceConfig := service.WorkerServiceConfig{
		Concurrency:         cfg.Worker.Concurrency,
		QueueGroup:          cfg.Worker.QueueGroup,
		JobTimeout:          cfg.Worker.JobTimeout,
		HealthCheckInterval: 30 * time.Second,
		ShutdownTimeout:     30 * time.Second,
	}

	workerService := service.NewDefaultWorkerService(workerServiceConfig, cfg.NATS, jobProcessor)

	if err := workerService.AddConsumer(consumer); err != nil {
		_ = publisher.Disconnect()
		return nil, nil, err
	}

	return workerService, publisher, nil
}

// startWorkerService starts the worker service.
func startWorkerService(workerService inbound.WorkerService) error {
	ctx := context.Background()
	if err := workerService.Start(ctx); err != nil {
		return err
	}

	slogger.InfoNoCtx("Worker service started successfully", nil)
	return nil
}

// waitForShutdownAndStop waits for shutdown signal and stops the service gracefully.
func waitForShutdownAndStop(workerService inbound.WorkerService) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	slogger.InfoNoCtx("Received shutdown signal, initiating graceful shutdown", slogger.Fields{
		"signal": sig.String(),
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := workerService.Stop(shutdownCtx); err != nil {
		slogger.ErrorNoCtx("Error during worker service shutdown", slogger.Fields{"error": err.Error()})
	} else {
		slogger.InfoNoCtx("Worker service shutdown completed successfully", nil)
	}
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newWorkerCmd())
}
