package kinesis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/example/ecolife-shop/internal/event"
	"go.uber.org/zap"
)

// ConvertFromKinesisRecord decodes a Kinesis record carrying a DynamoDB
// Streams change of the event log table. Non-INSERT changes yield nil.
func ConvertFromKinesisRecord(record events.KinesisEventRecord) (*event.Event, error) {
	var dynamoDBRecord events.DynamoDBEventRecord
	if err := json.Unmarshal(record.Kinesis.Data, &dynamoDBRecord); err != nil {
		return nil, fmt.Errorf("failed to unmarshal DynamoDB record: %w", err)
	}

	if dynamoDBRecord.EventName != "INSERT" {
		return nil, nil
	}

	return convertDynamoDBImage(dynamoDBRecord.Change.NewImage)
}

func convertDynamoDBImage(image map[string]events.DynamoDBAttributeValue) (*event.Event, error) {
	if image == nil {
		return nil, fmt.Errorf("DynamoDB image is nil")
	}

	e := &event.Event{}
	if v, ok := image["id"]; ok {
		e.ID = v.String()
	}
	if v, ok := image["aggregate_id"]; ok {
		e.AggregateID = v.String()
	}
	if v, ok := image["aggregate_type"]; ok {
		e.AggregateType = v.String()
	}
	if v, ok := image["event_type"]; ok {
		e.EventType = v.String()
	}
	if v, ok := image["data"]; ok {
		e.Data = json.RawMessage(v.String())
	}
	if v, ok := image["created_at"]; ok {
		t, err := time.Parse(time.RFC3339Nano, v.String())
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		e.Timestamp = t
	}

	if e.ID == "" || e.AggregateID == "" || e.EventType == "" {
		return nil, fmt.Errorf("missing required fields: id=%s, aggregate_id=%s, event_type=%s",
			e.ID, e.AggregateID, e.EventType)
	}

	return e, nil
}

// EventHandler receives one event in its bus encoding, keyed by aggregate id
type EventHandler func(ctx context.Context, key, value []byte) error

// ProcessBatch feeds every INSERT record to handle and reports the records
// that failed, so Lambda retries only those.
func ProcessBatch(ctx context.Context, batch events.KinesisEvent, handle EventHandler, logger *zap.Logger) events.KinesisEventResponse {
	var failures []events.KinesisBatchItemFailure
	fail := func(record events.KinesisEventRecord, msg string, err error) {
		logger.Warn(msg, zap.String("record", record.EventID), zap.Error(err))
		failures = append(failures, events.KinesisBatchItemFailure{
			ItemIdentifier: record.Kinesis.SequenceNumber,
		})
	}

	for _, record := range batch.Records {
		e, err := ConvertFromKinesisRecord(record)
		if err != nil {
			fail(record, "failed to convert record", err)
			continue
		}
		if e == nil {
			continue
		}

		payload, err := json.Marshal(e)
		if err != nil {
			fail(record, "failed to marshal event", err)
			continue
		}

		if err := handle(ctx, []byte(e.AggregateID), payload); err != nil {
			fail(record, "failed to process event", err)
			continue
		}
	}

	logger.Info("batch processed",
		zap.Int("records", len(batch.Records)),
		zap.Int("failed", len(failures)),
	)
	return events.KinesisEventResponse{BatchItemFailures: failures}
}
