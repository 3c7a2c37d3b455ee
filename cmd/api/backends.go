package main

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/example/ecolife-shop/internal/config"
	"github.com/example/ecolife-shop/internal/event"
	"github.com/example/ecolife-shop/internal/infrastructure/kafka"
	"github.com/example/ecolife-shop/internal/infrastructure/store"
	"go.uber.org/zap"
)

// backends holds the selected storage and event publisher. publisher is nil
// when no event backend is configured.
type backends struct {
	kv        store.KeyValueStore
	publisher event.Publisher
	closers   []func() error
	logger    *zap.Logger
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			b.logger.Warn("close failed", zap.Error(err))
		}
	}
}

func openBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backends, error) {
	b := &backends{logger: logger}

	var dynamo *dynamodb.Client
	needDynamo := cfg.StoreBackend == config.BackendDynamoDB || cfg.EventBackend == config.BackendDynamoDB
	if needDynamo {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		dynamo = dynamodb.NewFromConfig(awsCfg)
	}

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, db.Close)
		pg := store.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			b.Close()
			return nil, err
		}
		b.kv = pg
		logger.Info("connected to PostgreSQL")
	case config.BackendDynamoDB:
		b.kv = store.NewDynamoStore(dynamo, cfg.DynamoDBTable)
		logger.Info("using DynamoDB store", zap.String("table", cfg.DynamoDBTable))
	default:
		b.kv = store.NewMemoryStore()
		logger.Warn("using in-memory store, carts and counter are lost on restart")
	}

	switch cfg.EventBackend {
	case config.BackendKafka:
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		b.closers = append(b.closers, producer.Close)
		b.publisher = producer
		logger.Info("publishing to Kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	case config.BackendDynamoDB:
		b.publisher = store.NewDynamoEventLog(dynamo, cfg.DynamoDBEventsTable)
		logger.Info("publishing to DynamoDB event log", zap.String("table", cfg.DynamoDBEventsTable))
	default:
		logger.Warn("no event backend, order confirmations are not sent")
	}

	return b, nil
}
