package order

import (
	"context"
	"sync"
	"time"

	"cafehub/internal/models"
	"cafehub/internal/util"

	"go.uber.org/zap"
)

// DefaultTrackingInterval is the pause between simulated kitchen steps
const DefaultTrackingInterval = 10 * time.Second

// StatusFunc observes every status the tracker moves an order to
type StatusFunc func(ctx context.Context, orderID string, status models.OrderStatus)

// Tracker advances a placed order one step per interval until it is
// delivered, and fans each change out to subscribers. It stops early when
// the order is cancelled or reset, or when its context ends.
type Tracker struct {
	machine  *Machine
	interval time.Duration
	onChange StatusFunc
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    int
	subs   map[int]chan models.OrderStatus
	nextID int
}

// NewTracker creates a stopped tracker for machine. onChange may be nil.
func NewTracker(machine *Machine, interval time.Duration, onChange StatusFunc) *Tracker {
	if interval <= 0 {
		interval = DefaultTrackingInterval
	}
	return &Tracker{
		machine:  machine,
		interval: interval,
		onChange: onChange,
		logger:   util.GetLogger(),
		subs:     make(map[int]chan models.OrderStatus),
	}
}

// Start arms the tracker. It does nothing when already running or when
// there is no order left to advance.
func (t *Tracker) Start(ctx context.Context) bool {
	state := t.machine.State()
	if state.PlacedOrder == nil || IsTerminal(state.OrderStatus) {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.gen++
	go t.run(runCtx, t.gen, state.PlacedOrder.OrderID)
	return true
}

// Stop halts the tracker if it is running
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Running reports whether the ticker goroutine is live
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

func (t *Tracker) run(ctx context.Context, gen int, orderID string) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	defer t.finish(gen)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := t.machine.State()
			if current.OrderID == nil || *current.OrderID != orderID {
				return
			}
			status, ok := t.machine.Advance()
			if !ok {
				return
			}

			util.OrderStatusTransitionsTotal.WithLabelValues(string(status)).Inc()
			t.logger.Debug("Order status advanced",
				zap.String("order_id", orderID),
				zap.String("status", string(status)))

			t.Publish(status)
			if t.onChange != nil {
				t.onChange(ctx, orderID, status)
			}
			if IsTerminal(status) {
				return
			}
		}
	}
}

func (t *Tracker) finish(gen int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen == gen && t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Subscribe returns a channel of status changes and a function that ends
// the subscription. Slow readers miss updates rather than block the
// tracker.
func (t *Tracker) Subscribe() (<-chan models.OrderStatus, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	ch := make(chan models.OrderStatus, 8)
	t.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			if sub, ok := t.subs[id]; ok {
				delete(t.subs, id)
				close(sub)
			}
		})
	}
}

// Publish sends status to every subscriber
func (t *Tracker) Publish(status models.OrderStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.subs {
		select {
		case ch <- status:
		default:
		}
	}
}

// Close stops the tracker and ends every subscription
func (t *Tracker) Close() {
	t.Stop()

	t.mu.Lock()
	defer t.mu.Unlock()
	for id, ch := range t.subs {
		delete(t.subs, id)
		close(ch)
	}
}
