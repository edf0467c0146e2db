package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cafehub/internal/models"
	"cafehub/internal/util"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Sink delivers an encoded event somewhere: Kafka or the in-process bus
type Sink interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// EventPublisher handles publishing domain events
type EventPublisher struct {
	sink Sink
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(sink Sink) *EventPublisher {
	return &EventPublisher{sink: sink}
}

// NewBaseEvent stamps a fresh event id and time
func NewBaseEvent(eventType, sessionID string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	}
}

func sessionKey(sessionID string) string {
	return "session-" + sessionID
}

// PublishReservationConfirmed publishes ReservationConfirmed event
func (ep *EventPublisher) PublishReservationConfirmed(ctx context.Context, event *models.ReservationConfirmedEvent) error {
	return ep.sink.PublishEvent(ctx, sessionKey(event.SessionID), event)
}

// PublishOrderPlaced publishes OrderPlaced event
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return ep.sink.PublishEvent(ctx, sessionKey(event.SessionID), event)
}

// PublishOrderStatusChanged publishes OrderStatusChanged event
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return ep.sink.PublishEvent(ctx, sessionKey(event.SessionID), event)
}

// PublishOrderCancelled publishes OrderCancelled event
func (ep *EventPublisher) PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error {
	return ep.sink.PublishEvent(ctx, sessionKey(event.SessionID), event)
}

// PublishOrderPaid publishes OrderPaid event
func (ep *EventPublisher) PublishOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error {
	return ep.sink.PublishEvent(ctx, sessionKey(event.SessionID), event)
}

// LocalBus hands events straight to a handler on the publishing goroutine.
// It replaces Kafka on single node runs.
type LocalBus struct {
	handler MessageHandler
}

// NewLocalBus creates a bus delivering to handler
func NewLocalBus(handler MessageHandler) *LocalBus {
	return &LocalBus{handler: handler}
}

// PublishEvent encodes event like the Kafka producer does and delivers it
func (b *LocalBus) PublishEvent(ctx context.Context, key string, event interface{}) error {
	msg, err := encodeMessage(key, event)
	if err != nil {
		return err
	}
	if b.handler == nil {
		return nil
	}
	return b.handler(ctx, msg)
}

// EventHandler handles incoming events
type EventHandler struct {
	onOrderPaid func(context.Context, *models.OrderPaidEvent) error
	logger      *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnOrderPaid registers a handler for OrderPaid events
func (eh *EventHandler) OnOrderPaid(handler func(context.Context, *models.OrderPaidEvent) error) {
	eh.onOrderPaid = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("event_type", baseEvent.EventType),
		zap.String("event_id", baseEvent.EventID),
		zap.String("session_id", baseEvent.SessionID))

	switch baseEvent.EventType {
	case models.EventTypeOrderPaid:
		if eh.onOrderPaid != nil {
			var event models.OrderPaidEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderPaid event: %w", err)
			}
			return eh.onOrderPaid(ctx, &event)
		}

	case models.EventTypeReservationConfirmed,
		models.EventTypeOrderPlaced,
		models.EventTypeOrderStatusChanged,
		models.EventTypeOrderCancelled:
		// audit only

	default:
		eh.logger.Warn("Unhandled event type", zap.String("event_type", baseEvent.EventType))
	}

	return nil
}
