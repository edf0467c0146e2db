package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"cafehub/internal/auth"
	"cafehub/internal/localstore"
	"cafehub/internal/order"
	"cafehub/internal/reservation"
)

// Session bundles the state machines of one client. Sessions never share
// state with each other.
type Session struct {
	ID          string
	CreatedAt   time.Time
	Storage     localstore.Storage
	Reservation *reservation.Machine
	Order       *order.Machine
	Tracker     *order.Tracker
	Auth        *auth.Store
	Prefs       *Preferences

	// ReservationPayment and OrderPayment reject double submissions
	ReservationPayment InFlight
	OrderPayment       InFlight

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	lastSeen time.Time
}

// Context lives as long as the session and parents its trackers
func (s *Session) Context() context.Context {
	return s.ctx
}

// LastSeen is the time of the latest request of the session
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// storageKeys lists every key a session writes to its local storage
var storageKeys = []string{reservation.StorageKey, LanguageKey, ThemeKey}

// purge drops the persisted state of the session from its storage
func (s *Session) purge(ctx context.Context) error {
	var errs []error
	for _, key := range storageKeys {
		if err := s.Storage.RemoveItem(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Session) close() {
	s.Tracker.Close()
	s.cancel()
}

// InFlight marks a simulated call in progress
type InFlight struct {
	busy atomic.Bool
}

// TryStart claims the flag, false when already claimed
func (f *InFlight) TryStart() bool {
	return f.busy.CompareAndSwap(false, true)
}

// Done releases the flag
func (f *InFlight) Done() {
	f.busy.Store(false)
}
