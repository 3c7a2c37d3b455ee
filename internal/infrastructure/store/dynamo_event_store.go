package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/example/ecolife-shop/internal/event"
)

// DynamoEventLog writes events to a DynamoDB table. The table's Kinesis
// Data Streams integration carries each INSERT to the Lambda notifier.
type DynamoEventLog struct {
	client    DynamoAPI
	tableName string
}

// dynamoEvent is the item layout the Kinesis adapter decodes
type dynamoEvent struct {
	ID            string `dynamodbav:"id"`
	AggregateID   string `dynamodbav:"aggregate_id"`
	AggregateType string `dynamodbav:"aggregate_type"`
	EventType     string `dynamodbav:"event_type"`
	Data          string `dynamodbav:"data"`
	CreatedAt     string `dynamodbav:"created_at"`
}

func NewDynamoEventLog(client DynamoAPI, tableName string) *DynamoEventLog {
	return &DynamoEventLog{client: client, tableName: tableName}
}

// Publish stores e once. Re-publishing the same event id is a no-op.
func (l *DynamoEventLog) Publish(ctx context.Context, e event.Event) error {
	item := dynamoEvent{
		ID:            e.ID,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		EventType:     e.EventType,
		Data:          string(e.Data),
		CreatedAt:     e.Timestamp.Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(l.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil
		}
		return fmt.Errorf("failed to put event: %w", err)
	}
	return nil
}
