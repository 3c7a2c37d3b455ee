package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/example/ecolife-shop/internal/email"
	"github.com/example/ecolife-shop/internal/infrastructure/kinesis"
	"github.com/example/ecolife-shop/internal/notification"
	"go.uber.org/zap"
)

var (
	logger              *zap.Logger
	notificationHandler *notification.Handler
)

func init() {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		log.Fatalf("[Lambda Notifier] failed to build logger: %v", err)
	}
	logger = logger.Named("lambda-notifier")

	smtpHost := getEnv("SMTP_HOST", "localhost")
	smtpPort := getEnv("SMTP_PORT", "1025")
	smtpFrom := getEnv("SMTP_FROM", "noreply@ecolife.example")

	notificationHandler = notification.NewHandler(email.NewService(smtpHost, smtpPort, smtpFrom), logger)
	logger.Info("initialized", zap.String("smtp", smtpHost+":"+smtpPort))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func handler(ctx context.Context, kinesisEvent events.KinesisEvent) (events.KinesisEventResponse, error) {
	return kinesis.ProcessBatch(ctx, kinesisEvent, notificationHandler.HandleEvent, logger), nil
}

func main() {
	lambda.Start(handler)
}
