package localstore

import (
	"context"
	"testing"

	"cafehub/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopedIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	a := ForSession(backend, "a")
	b := ForSession(backend, "b")

	require.NoError(t, a.SetItem(ctx, "cafehub-theme", "dark"))

	_, ok, err := b.GetItem(ctx, "cafehub-theme")
	require.NoError(t, err)
	assert.False(t, ok)

	raw, ok, err := backend.GetItem(ctx, "session:a:cafehub-theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", raw)

	require.NoError(t, a.RemoveItem(ctx, "cafehub-theme"))
	_, ok, _ = a.GetItem(ctx, "cafehub-theme")
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, closer, err := Open(ctx, &config.Config{Storage: config.StorageConfig{Backend: "memory"}})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)
	assert.NoError(t, closer.Close())

	cfg := &config.Config{
		Storage:  config.StorageConfig{Backend: "sqlite"},
		Database: config.DatabaseConfig{SQLitePath: t.TempDir() + "/ls.db"},
	}
	s, closer, err = Open(ctx, cfg)
	require.NoError(t, err)
	defer closer.Close()
	require.NoError(t, s.SetItem(ctx, "k", "v"))
	v, ok, err := s.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	_, _, err = Open(ctx, &config.Config{Storage: config.StorageConfig{Backend: "floppy"}})
	assert.Error(t, err)
}
