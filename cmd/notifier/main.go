package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/example/ecolife-shop/internal/email"
	"github.com/example/ecolife-shop/internal/infrastructure/kafka"
	"github.com/example/ecolife-shop/internal/notification"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("[Notifier] failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("notifier")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kafkaBrokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	kafkaTopic := getEnv("KAFKA_TOPIC", "ecolife-orders")
	consumerGroup := getEnv("KAFKA_GROUP", "email-notifier")

	smtpHost := getEnv("SMTP_HOST", "localhost")
	smtpPort := getEnv("SMTP_PORT", "1025")
	smtpFrom := getEnv("SMTP_FROM", "noreply@ecolife.example")

	logger.Info("starting",
		zap.Strings("brokers", kafkaBrokers),
		zap.String("topic", kafkaTopic),
		zap.String("group", consumerGroup),
		zap.String("smtp", smtpHost+":"+smtpPort),
	)

	handler := notification.NewHandler(email.NewService(smtpHost, smtpPort, smtpFrom), logger)

	consumer := kafka.NewConsumer(kafkaBrokers, kafkaTopic, consumerGroup, logger)
	defer consumer.Close()

	if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
		logger.Error("consumer stopped", zap.Error(err))
	}
	logger.Info("shutting down")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
