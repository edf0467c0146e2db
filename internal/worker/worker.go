package worker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"cafehub/internal/broker"
	"cafehub/internal/models"
	"cafehub/internal/session"
	"cafehub/internal/util"

	"go.uber.org/zap"
)

// Ledger remembers which events were applied so redelivered messages are
// skipped. The redis client and the SQL store both satisfy it.
type Ledger interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// MemoryLedger is the Ledger of single node runs
type MemoryLedger struct {
	mu   sync.Mutex
	seen map[string]string
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{seen: make(map[string]string)}
}

func (l *MemoryLedger) IsEventProcessed(_ context.Context, eventID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[eventID]
	return ok, nil
}

func (l *MemoryLedger) MarkEventProcessed(_ context.Context, eventID, eventType string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[eventID] = eventType
	return nil
}

// HistoryWorker copies paid orders into the account history of the paying
// session
type HistoryWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	registry     *session.Registry
	ledger       Ledger
	logger       *zap.Logger
}

// NewHistoryWorker creates a history worker. consumer may be nil when events
// arrive over a LocalBus.
func NewHistoryWorker(consumer *broker.Consumer, registry *session.Registry, ledger Ledger) *HistoryWorker {
	if ledger == nil {
		ledger = NewMemoryLedger()
	}
	w := &HistoryWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		registry:     registry,
		ledger:       ledger,
		logger:       util.GetLogger(),
	}
	w.eventHandler.OnOrderPaid(w.HandleOrderPaid)
	return w
}

// EventHandler returns the router to hand to a LocalBus
func (w *HistoryWorker) EventHandler() *broker.EventHandler {
	return w.eventHandler
}

// HandleOrderPaid appends the paid order to the signed-in account. Guests
// and sessions that are gone are acknowledged without effect.
func (w *HistoryWorker) HandleOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error {
	ctx, span := util.StartSpan(ctx, "HistoryWorker.HandleOrderPaid", util.SessionIDKey.String(event.SessionID))
	defer span.End()

	processed, err := w.ledger.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		w.logger.Debug("Event already processed, skipping", zap.String("event_id", event.EventID))
		return nil
	}

	if event.UserID != "" {
		if err := w.appendOrder(event); err != nil {
			return err
		}
	}

	return w.ledger.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *HistoryWorker) appendOrder(event *models.OrderPaidEvent) error {
	sess, err := w.registry.Get(event.SessionID)
	if errors.Is(err, session.ErrSessionNotFound) {
		w.logger.Warn("Paid order for unknown session",
			zap.String("session_id", event.SessionID),
			zap.String("order_id", event.PastOrder.ID))
		return nil
	}
	if err != nil {
		return err
	}

	u, ok := sess.Auth.User()
	if !ok || u.ID != event.UserID {
		w.logger.Info("Account changed before history update",
			zap.String("session_id", event.SessionID),
			zap.String("user_id", event.UserID))
		return nil
	}
	if err := sess.Auth.AppendOrder(event.PastOrder); err != nil {
		return err
	}

	w.logger.Info("Order added to history",
		zap.String("session_id", event.SessionID),
		zap.String("user_id", event.UserID),
		zap.String("order_id", event.PastOrder.ID))
	return nil
}

// Start consumes the event topic until ctx ends
func (w *HistoryWorker) Start(ctx context.Context) error {
	if w.consumer == nil {
		return nil
	}
	log.Println("Starting history worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *HistoryWorker) Stop() error {
	if w.consumer == nil {
		return nil
	}
	log.Println("Stopping history worker...")
	return w.consumer.Close()
}

// SessionJanitor drops sessions idle for longer than the session TTL
type SessionJanitor struct {
	registry *session.Registry
	ttl      time.Duration
	interval time.Duration
	logger   *zap.Logger
}

func NewSessionJanitor(registry *session.Registry, ttl, interval time.Duration) *SessionJanitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionJanitor{
		registry: registry,
		ttl:      ttl,
		interval: interval,
		logger:   util.GetLogger(),
	}
}

// Start sweeps every interval until ctx ends
func (j *SessionJanitor) Start(ctx context.Context) {
	log.Println("Starting session janitor...")
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Stopping session janitor...")
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep evicts idle sessions once and reports how many went
func (j *SessionJanitor) Sweep() int {
	n := j.registry.EvictIdle(j.ttl)
	if n > 0 {
		j.logger.Info("Evicted idle sessions", zap.Int("count", n), zap.Int("remaining", j.registry.Len()))
	}
	return n
}
