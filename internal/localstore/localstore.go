// Package localstore is the key-value storage each session persists its
// client side state into, standing in for browser local storage.
package localstore

import (
	"context"
	"fmt"
	"io"
	"sync"

	"cafehub/config"
	"cafehub/internal/redisclient"
	"cafehub/internal/store"
)

// Storage is a string key-value store
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Memory keeps items in process
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemory creates an empty in-memory storage
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *Memory) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Scoped namespaces every key of a backend under one session
type Scoped struct {
	backend Storage
	prefix  string
}

// ForSession returns the storage view of a single session
func ForSession(backend Storage, sessionID string) *Scoped {
	return &Scoped{backend: backend, prefix: "session:" + sessionID + ":"}
}

func (s *Scoped) GetItem(ctx context.Context, key string) (string, bool, error) {
	return s.backend.GetItem(ctx, s.prefix+key)
}

func (s *Scoped) SetItem(ctx context.Context, key, value string) error {
	return s.backend.SetItem(ctx, s.prefix+key, value)
}

func (s *Scoped) RemoveItem(ctx context.Context, key string) error {
	return s.backend.RemoveItem(ctx, s.prefix+key)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open connects the backend selected by cfg.Storage.Backend. The returned
// closer releases its connection.
func Open(ctx context.Context, cfg *config.Config) (Storage, io.Closer, error) {
	switch cfg.Storage.Backend {
	case "", "memory":
		return NewMemory(), nopCloser{}, nil
	case "redis":
		c, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Storage.TTL)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	case "postgres", "sqlite":
		dsn := cfg.Database.URL
		if cfg.Storage.Backend == "sqlite" {
			dsn = cfg.Database.SQLitePath
		}
		s, err := store.NewStore(cfg.Storage.Backend, dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := s.EnsureSchema(ctx); err != nil {
			_ = s.Close()
			return nil, nil, err
		}
		return s, s, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
