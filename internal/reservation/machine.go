package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"cafehub/internal/localstore"
	"cafehub/internal/models"
	"cafehub/internal/util"

	"go.uber.org/zap"
)

// StorageKey is the local storage key of the reservation snapshot
const StorageKey = "cafehub-reservation"

var ErrInvalidPatch = errors.New("invalid reservation patch")

// Machine holds the in-progress reservation of one session and mirrors
// every change into local storage. It does not validate: callers gate
// navigation with the pure checks in this package.
type Machine struct {
	mu      sync.Mutex
	state   models.ReservationState
	storage localstore.Storage
	logger  *zap.Logger
}

// Defaults returns the empty reservation
func Defaults() models.ReservationState {
	return models.ReservationState{Notes: ""}
}

// NewMachine restores the stored snapshot merged over defaults. Unreadable
// snapshots are dropped silently.
func NewMachine(ctx context.Context, storage localstore.Storage) *Machine {
	m := &Machine{
		state:   Defaults(),
		storage: storage,
		logger:  util.GetLogger(),
	}

	raw, ok, err := storage.GetItem(ctx, StorageKey)
	if err != nil {
		util.StorageErrorsTotal.WithLabelValues("get").Inc()
		m.logger.Debug("Reservation snapshot unavailable", zap.Error(err))
		return m
	}
	if !ok {
		return m
	}

	restored, err := Merge(Defaults(), []byte(raw))
	if err != nil {
		m.logger.Debug("Discarding unreadable reservation snapshot", zap.Error(err))
		return m
	}
	m.state = restored
	return m
}

// State returns a copy of the current reservation
func (m *Machine) State() models.ReservationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.state)
}

// Apply runs fn against a copy of the state and stores the result
func (m *Machine) Apply(ctx context.Context, fn func(*models.ReservationState)) models.ReservationState {
	m.mu.Lock()
	next := clone(m.state)
	fn(&next)
	m.state = next
	m.mu.Unlock()

	m.persist(ctx, next)
	return clone(next)
}

// SetDetails shallow merges a JSON object over the state: present keys
// overwrite, explicit nulls clear, absent keys stay.
func (m *Machine) SetDetails(ctx context.Context, partial []byte) (models.ReservationState, error) {
	m.mu.Lock()
	next, err := Merge(m.state, partial)
	if err != nil {
		m.mu.Unlock()
		return models.ReservationState{}, err
	}
	m.state = next
	m.mu.Unlock()

	m.persist(ctx, next)
	return clone(next), nil
}

// Reset replaces the state with defaults seeded with cafeID, which may be
// empty.
func (m *Machine) Reset(ctx context.Context, cafeID string) models.ReservationState {
	next := Defaults()
	if cafeID != "" {
		next.CafeID = &cafeID
	}

	m.mu.Lock()
	m.state = next
	m.mu.Unlock()

	m.persist(ctx, next)
	return clone(next)
}

func (m *Machine) persist(ctx context.Context, state models.ReservationState) {
	data, err := json.Marshal(state)
	if err != nil {
		m.logger.Error("Failed to encode reservation snapshot", zap.Error(err))
		return
	}
	if err := m.storage.SetItem(ctx, StorageKey, string(data)); err != nil {
		util.StorageErrorsTotal.WithLabelValues("set").Inc()
		m.logger.Debug("Ignoring reservation storage error", zap.Error(err))
	}
}

// Merge decodes the JSON object raw over base without touching base
func Merge(base models.ReservationState, raw []byte) (models.ReservationState, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.ReservationState{}, fmt.Errorf("%w: not a JSON object: %v", ErrInvalidPatch, err)
	}

	next := clone(base)
	if err := json.Unmarshal(raw, &next); err != nil {
		return models.ReservationState{}, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return next, nil
}

func clone(s models.ReservationState) models.ReservationState {
	out := s
	out.CafeID = clonePtr(s.CafeID)
	out.PartySize = clonePtr(s.PartySize)
	out.DurationMinutes = clonePtr(s.DurationMinutes)
	out.TableID = clonePtr(s.TableID)
	out.TableLabel = clonePtr(s.TableLabel)
	out.TableArea = clonePtr(s.TableArea)
	out.TotalPrice = clonePtr(s.TotalPrice)
	out.PaymentMethod = clonePtr(s.PaymentMethod)
	out.CardLast4 = clonePtr(s.CardLast4)
	out.ReservationCode = clonePtr(s.ReservationCode)
	out.TransactionID = clonePtr(s.TransactionID)
	out.CreatedAt = clonePtr(s.CreatedAt)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ptr returns a pointer to a copy of v
func ptr[T any](v T) *T {
	return &v
}
