package broker

import (
	"context"
	"encoding/json"
	"testing"

	"cafehub/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBusRoutesOrderPaid(t *testing.T) {
	handler := NewEventHandler()
	var got *models.OrderPaidEvent
	handler.OnOrderPaid(func(_ context.Context, e *models.OrderPaidEvent) error {
		got = e
		return nil
	})

	pub := NewEventPublisher(NewLocalBus(handler.HandleMessage))
	event := &models.OrderPaidEvent{
		BaseEvent: NewBaseEvent(models.EventTypeOrderPaid, "sess-1"),
		UserID:    "user-1",
		PastOrder: models.PastOrder{ID: "4821", Total: 200, Status: models.PastOrderCompleted},
	}
	require.NoError(t, pub.PublishOrderPaid(context.Background(), event))

	require.NotNil(t, got)
	assert.Equal(t, event.EventID, got.EventID)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, int64(200), got.PastOrder.Total)
}

func TestLocalBusKeysBySession(t *testing.T) {
	var key string
	bus := NewLocalBus(func(_ context.Context, msg kafka.Message) error {
		key = string(msg.Key)
		return nil
	})

	pub := NewEventPublisher(bus)
	require.NoError(t, pub.PublishOrderPlaced(context.Background(), &models.OrderPlacedEvent{
		BaseEvent: NewBaseEvent(models.EventTypeOrderPlaced, "abc"),
		OrderID:   "1234",
	}))
	assert.Equal(t, "session-abc", key)
}

func TestHandleMessageIgnoresAuditEvents(t *testing.T) {
	handler := NewEventHandler()
	called := false
	handler.OnOrderPaid(func(context.Context, *models.OrderPaidEvent) error {
		called = true
		return nil
	})

	for _, typ := range []string{models.EventTypeOrderPlaced, models.EventTypeOrderCancelled, "SOMETHING_ELSE"} {
		body, err := json.Marshal(NewBaseEvent(typ, "s"))
		require.NoError(t, err)
		assert.NoError(t, handler.HandleMessage(context.Background(), kafka.Message{Value: body}))
	}
	assert.False(t, called)

	assert.Error(t, handler.HandleMessage(context.Background(), kafka.Message{Value: []byte("{")}))
}
