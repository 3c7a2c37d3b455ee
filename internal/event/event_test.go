package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	OrderID string `json:"order_id"`
	Total   string `json:"total"`
}

func TestNew(t *testing.T) {
	e, err := New("ECO-12345", "Order", "OrderSubmitted", payload{OrderID: "ECO-12345", Total: "135"})
	require.NoError(t, err)

	_, err = uuid.Parse(e.ID)
	assert.NoError(t, err)
	assert.Equal(t, "ECO-12345", e.AggregateID)
	assert.False(t, e.Timestamp.IsZero())

	var p payload
	require.NoError(t, e.Decode(&p))
	assert.Equal(t, "135", p.Total)
}

func TestNew_UnmarshalableData(t *testing.T) {
	_, err := New("x", "Order", "OrderSubmitted", make(chan int))
	assert.Error(t, err)
}

func TestEvent_JSONRoundTrip(t *testing.T) {
	e, err := New("ECO-12345", "Order", "OrderSubmitted", payload{OrderID: "ECO-12345"})
	require.NoError(t, err)

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, e.EventType, decoded.EventType)
	assert.JSONEq(t, string(e.Data), string(decoded.Data))
}

func TestMemoryPublisher(t *testing.T) {
	p := NewMemoryPublisher()
	e, _ := New("a", "Order", "OrderSubmitted", payload{})

	require.NoError(t, p.Publish(context.Background(), e))
	assert.Len(t, p.Events(), 1)

	p.Err = errors.New("broker down")
	assert.Error(t, p.Publish(context.Background(), e))
	assert.Len(t, p.Events(), 1)
}
