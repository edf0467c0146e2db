package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cafehub/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventTypeHeader names the message header carrying the event type
const EventTypeHeader = "event_type"

const unknownEventType = "unknown"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// encodeMessage is the wire form shared by Kafka and the local bus. The key
// is the session so one session's events stay ordered on one partition.
func encodeMessage(key string, event interface{}) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}
	if typed, ok := event.(interface{ Type() string }); ok {
		msg.Headers = []kafka.Header{{Key: EventTypeHeader, Value: []byte(typed.Type())}}
	}
	return msg, nil
}

// MessageEventType reads the event type header, "unknown" when absent
func MessageEventType(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == EventTypeHeader && len(h.Value) > 0 {
			return string(h.Value)
		}
	}
	return unknownEventType
}

// Producer writes session events to the events topic
type Producer struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewProducer creates a producer that waits for every in-sync replica
func NewProducer(brokers []string, topic string) *Producer {
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}, topic)
}

func newProducer(w messageWriter, topic string) *Producer {
	return &Producer{writer: w, topic: topic, logger: util.GetLogger()}
}

// PublishEvent implements Sink
func (p *Producer) PublishEvent(ctx context.Context, key string, event interface{}) error {
	msg, err := encodeMessage(key, event)
	if err != nil {
		return err
	}
	eventType := MessageEventType(msg)

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		util.EventsPublishedTotal.WithLabelValues(eventType, "error").Inc()
		return fmt.Errorf("failed to write %s event to %s: %w", eventType, p.topic, err)
	}

	util.EventsPublishedTotal.WithLabelValues(eventType, "ok").Inc()
	p.logger.Debug("Event published",
		zap.String("topic", p.topic),
		zap.String("key", key),
		zap.String("event_type", eventType))
	return nil
}

// Close flushes pending writes
func (p *Producer) Close() error {
	return p.writer.Close()
}

// DefaultFetchBackoff is the pause after a failed fetch
const DefaultFetchBackoff = time.Second

// Consumer reads session events as a member of a consumer group
type Consumer struct {
	reader  messageReader
	topic   string
	backoff time.Duration
	logger  *zap.Logger
}

// NewConsumer creates a group consumer that starts from the oldest offset
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return newConsumer(kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	}), topic, DefaultFetchBackoff)
}

func newConsumer(r messageReader, topic string, backoff time.Duration) *Consumer {
	return &Consumer{reader: r, topic: topic, backoff: backoff, logger: util.GetLogger()}
}

// Close leaves the consumer group
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// MessageHandler handles one encoded event
type MessageHandler func(ctx context.Context, msg kafka.Message) error

// StartConsuming feeds every message to handler and commits the ones it
// handled. Failed messages are logged and skipped. It returns ctx.Err()
// once ctx ends.
func (c *Consumer) StartConsuming(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("Consuming events", zap.String("topic", c.topic))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Event consumer stopped", zap.String("topic", c.topic))
				return ctx.Err()
			}
			c.logger.Warn("Failed to fetch event", zap.String("topic", c.topic), zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
			continue
		}

		eventType := MessageEventType(msg)
		fields := []zap.Field{
			zap.String("event_type", eventType),
			zap.String("key", string(msg.Key)),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		}

		if err := handler(ctx, msg); err != nil {
			util.EventsConsumedTotal.WithLabelValues(eventType, "error").Inc()
			c.logger.Error("Failed to handle event", append(fields, zap.Error(err))...)
			continue
		}
		util.EventsConsumedTotal.WithLabelValues(eventType, "ok").Inc()

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Warn("Failed to commit event", append(fields, zap.Error(err))...)
		}
	}
}
