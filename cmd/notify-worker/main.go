package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"shiftpay.service/internal/config"
	"shiftpay.service/internal/core"
	"shiftpay.service/internal/worker"
	"shiftpay.service/internal/worker/notify"
	"shiftpay.service/pkg/aws"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Could not load configuration: %v", err)
	}

	// AWS SDK Config
	awsCfg, err := aws.NewAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Fatalf("unable to load SDK config: %v", err)
	}

	// Initialize Dependencies
	sqsClient := sqs.NewFromConfig(awsCfg)
	sesClient := ses.NewFromConfig(awsCfg)
	notifier := core.NewSESNotifier(sesClient, cfg.NotificationSender, cfg.NotificationDomain)
	processor := notify.NewProcessor(notifier)

	// Start Worker
	ctx, cancel := context.WithCancel(context.Background())
	app := worker.NewWorker(sqsClient, cfg.NotificationSQSQueueURL, processor)

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
