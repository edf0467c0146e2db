package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"cafehub/internal/auth"
	"cafehub/internal/localstore"
	"cafehub/internal/models"
	"cafehub/internal/order"
	"cafehub/internal/reservation"
	"cafehub/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

// StatusHook observes tracker driven status changes of any session
type StatusHook func(ctx context.Context, sessionID, orderID string, status models.OrderStatus)

// Options configure every session a registry creates
type Options struct {
	Backend          localstore.Storage
	AuthService      auth.AuthService
	SeedDemoUser     bool
	ServiceFeeRate   float64
	TrackingInterval time.Duration
	OnStatusChange   StatusHook
}

// Registry owns the live sessions
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options
	now      func() time.Time
	logger   *zap.Logger
}

func NewRegistry(opts Options) *Registry {
	if opts.Backend == nil {
		opts.Backend = localstore.NewMemory()
	}
	if opts.AuthService == nil {
		opts.AuthService = auth.NewMockService(auth.DefaultDelay)
	}
	return &Registry{
		sessions: make(map[string]*Session),
		opts:     opts,
		now:      time.Now,
		logger:   util.GetLogger(),
	}
}

// Create starts a session with a fresh id
func (r *Registry) Create(ctx context.Context) *Session {
	return r.Open(ctx, uuid.New().String())
}

// Open returns the live session id, rebuilding it from local storage when
// it was evicted or the process restarted.
func (r *Registry) Open(ctx context.Context, id string) *Session {
	if s, err := r.Get(id); err == nil {
		return s
	}

	s := r.build(ctx, id)

	r.mu.Lock()
	if existing, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		s.close()
		existing.touch(r.now())
		return existing
	}
	r.sessions[id] = s
	count := len(r.sessions)
	r.mu.Unlock()

	util.ActiveSessions.Set(float64(count))
	r.logger.Info("Session opened", zap.String("session_id", id))
	return s
}

func (r *Registry) build(ctx context.Context, id string) *Session {
	storage := localstore.ForSession(r.opts.Backend, id)
	now := r.now()

	sctx, cancel := context.WithCancel(context.Background())
	orders := order.NewMachine(r.opts.ServiceFeeRate)

	var onChange order.StatusFunc
	if hook := r.opts.OnStatusChange; hook != nil {
		onChange = func(ctx context.Context, orderID string, status models.OrderStatus) {
			hook(ctx, id, orderID, status)
		}
	}

	return &Session{
		ID:          id,
		CreatedAt:   now,
		Storage:     storage,
		Reservation: reservation.NewMachine(ctx, storage),
		Order:       orders,
		Tracker:     order.NewTracker(orders, r.opts.TrackingInterval, onChange),
		Auth:        auth.NewStore(r.opts.AuthService, r.opts.SeedDemoUser),
		Prefs:       NewPreferences(storage),
		ctx:         sctx,
		cancel:      cancel,
		lastSeen:    now,
	}
}

// Get returns a live session and marks it as seen
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(r.now())
	return s, nil
}

// Remove ends a session, stops its tracker and deletes its stored state.
// Evicted sessions keep their storage so a valid token can restore them.
func (r *Registry) Remove(ctx context.Context, id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	count := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return false
	}
	s.close()
	if err := s.purge(ctx); err != nil {
		util.StorageErrorsTotal.WithLabelValues("remove").Inc()
		r.logger.Warn("Failed to purge session storage",
			zap.String("session_id", id),
			zap.Error(err))
	}
	util.ActiveSessions.Set(float64(count))
	return true
}

// EvictIdle ends every session not seen for ttl and returns how many
func (r *Registry) EvictIdle(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	count := len(r.sessions)
	r.mu.Unlock()

	for _, s := range idle {
		s.close()
		r.logger.Info("Session evicted", zap.String("session_id", s.ID))
	}
	util.ActiveSessions.Set(float64(count))
	return len(idle)
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close ends every session
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		s.close()
	}
	util.ActiveSessions.Set(0)
}
