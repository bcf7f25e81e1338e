package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver

	"remotework.service/internal/caldav"
	"remotework.service/internal/config"
	"remotework.service/internal/core"
	"remotework.service/internal/ports/repository"
	"remotework.service/internal/ports/workcalendar"
	"remotework.service/internal/worker"
	"remotework.service/internal/worker/sync"
	"remotework.service/pkg/aws"
	"remotework.service/pkg/database"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Could not load configuration: %v", err)
	}

	// DB connection
	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()
	log.Println("Successfully connected to the database.")

	// AWS SDK Config
	awsCfg, err := aws.NewAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Fatalf("unable to load SDK config: %v", err)
	}

	// Initialize Dependencies
	sqsClient := sqs.NewFromConfig(awsCfg)

	repo := repository.NewRemoteWorkRepository(db)
	calendarClient := caldav.NewClient(caldav.NewConfig(cfg))
	workdays := core.NewWorkingDayExpander(workcalendar.New(nil))

	// The resync path only reads entries and pushes them to the calendar
	// server, so no producer is needed here.
	service := core.NewRemoteWorkService(repo, calendarClient, workdays, nil, cfg.ApprovalRequired, cfg.ApproverEmail)
	processor := sync.NewProcessor(service)

	// Start Worker
	ctx, cancel := context.WithCancel(context.Background())
	app := worker.NewWorker(sqsClient, cfg.SyncSQSQueueURL, processor)

	go func() {
		app.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down worker...")

	// Cancel the context to signal the worker to stop polling.
	cancel()

	log.Println("Worker exited gracefully")
}
