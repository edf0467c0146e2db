package session

import (
	"context"
	"testing"

	"cafehub/internal/localstore"
	"cafehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	storage := localstore.NewMemory()
	p := NewPreferences(storage)

	assert.Equal(t, models.Preferences{Language: "tr", Theme: "light"}, p.Get(ctx))

	require.NoError(t, p.SetLanguage(ctx, "en"))
	require.NoError(t, p.SetTheme(ctx, "dark"))
	assert.Equal(t, models.Preferences{Language: "en", Theme: "dark"}, p.Get(ctx))

	v, ok, err := storage.GetItem(ctx, LanguageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "en", v)

	assert.ErrorIs(t, p.SetLanguage(ctx, "de"), ErrInvalidPreference)
	assert.ErrorIs(t, p.SetTheme(ctx, "sepia"), ErrInvalidPreference)
}

func TestPreferencesIgnoreGarbage(t *testing.T) {
	ctx := context.Background()
	storage := localstore.NewMemory()
	require.NoError(t, storage.SetItem(ctx, ThemeKey, "neon"))

	assert.Equal(t, "light", NewPreferences(storage).Get(ctx).Theme)
}
