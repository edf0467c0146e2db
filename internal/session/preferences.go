package session

import (
	"context"
	"errors"

	"cafehub/internal/localstore"
	"cafehub/internal/models"
	"cafehub/internal/util"
)

// Local storage keys of the display preferences
const (
	LanguageKey = "cafehub-language"
	ThemeKey    = "cafehub-theme"
)

var ErrInvalidPreference = errors.New("invalid preference value")

// Preferences reads and writes language and theme straight from local
// storage. Unreadable values fall back to Turkish and light.
type Preferences struct {
	storage localstore.Storage
}

func NewPreferences(storage localstore.Storage) *Preferences {
	return &Preferences{storage: storage}
}

// Get returns the stored preferences with defaults for missing values
func (p *Preferences) Get(ctx context.Context) models.Preferences {
	out := models.Preferences{Language: models.LanguageTurkish, Theme: models.ThemeLight}
	if v, ok := p.read(ctx, LanguageKey); ok && validLanguage(v) {
		out.Language = v
	}
	if v, ok := p.read(ctx, ThemeKey); ok && validTheme(v) {
		out.Theme = v
	}
	return out
}

func (p *Preferences) SetLanguage(ctx context.Context, lang string) error {
	if !validLanguage(lang) {
		return ErrInvalidPreference
	}
	p.write(ctx, LanguageKey, lang)
	return nil
}

func (p *Preferences) SetTheme(ctx context.Context, theme string) error {
	if !validTheme(theme) {
		return ErrInvalidPreference
	}
	p.write(ctx, ThemeKey, theme)
	return nil
}

func (p *Preferences) read(ctx context.Context, key string) (string, bool) {
	v, ok, err := p.storage.GetItem(ctx, key)
	if err != nil {
		util.StorageErrorsTotal.WithLabelValues("get").Inc()
		return "", false
	}
	return v, ok
}

// write ignores storage failures like the reservation snapshot does
func (p *Preferences) write(ctx context.Context, key, value string) {
	if err := p.storage.SetItem(ctx, key, value); err != nil {
		util.StorageErrorsTotal.WithLabelValues("set").Inc()
		util.GetLogger().Debug("Ignoring preference storage error")
	}
}

func validLanguage(v string) bool {
	return v == models.LanguageTurkish || v == models.LanguageEnglish
}

func validTheme(v string) bool {
	return v == models.ThemeLight || v == models.ThemeDark
}
