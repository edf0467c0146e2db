package service

import (
	"context"
	"testing"

	"cafehub/internal/auth"
	"cafehub/internal/catalog"
	"cafehub/internal/models"
	"cafehub/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func TestFavorites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.registry.Create(ctx)

	favs, err := f.account.Favorites(ctx, sess)
	require.NoError(t, err)
	require.Len(t, favs, 3)
	assert.Equal(t, "Brew & Bloom", favs[0].Cafe.Name)

	err = f.account.AddFavorite(ctx, sess, "nowhere")
	assert.ErrorIs(t, err, catalog.ErrCafeNotFound)

	on, err := f.account.ToggleFavorite(ctx, sess, "corner-espresso-bar")
	require.NoError(t, err)
	assert.True(t, on)

	on, err = f.account.ToggleFavorite(ctx, sess, "brew-and-bloom")
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, f.account.RemoveFavorite(ctx, sess, "midnight-bakery"))

	favs, err = f.account.Favorites(ctx, sess)
	require.NoError(t, err)
	var ids []string
	for _, fv := range favs {
		ids = append(ids, fv.CafeID)
	}
	assert.Equal(t, []string{"third-wave-stories", "corner-espresso-bar"}, ids)
}

func TestSignedOutAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.registry.Create(ctx)
	f.account.Logout(ctx, sess)

	_, err := f.account.Profile(ctx, sess)
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
	_, err = f.account.Favorites(ctx, sess)
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
	_, err = f.account.ExportOrders(ctx, sess)
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)

	u, err := f.account.Login(ctx, sess, LoginRequest{Email: "guest@email.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "guest@email.com", u.Email)

	name := "Ayşe"
	u, err = f.account.UpdateProfile(ctx, sess, auth.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ayşe", u.Name)
}

func TestOrdersAndExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.registry.Create(ctx)

	orders, err := f.account.Orders(ctx, sess)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "ord-001", orders[0].ID)
	assert.Equal(t, int64(220), orders[0].Bill.Subtotal)
	assert.Equal(t, int64(15), orders[0].Bill.ServiceFee)

	data, err := f.account.ExportOrders(ctx, sess)
	require.NoError(t, err)

	book, err := xlsx.OpenBinary(data)
	require.NoError(t, err)
	require.Len(t, book.Sheets, 1)
	rows := book.Sheets[0].Rows
	require.Len(t, rows, 4)
	assert.Equal(t, "Order", rows[0].Cells[0].String())
	assert.Equal(t, "ord-001", rows[1].Cells[0].String())
	assert.Equal(t, "2x Turkish Coffee, 1x Baklava, 2x Water", rows[1].Cells[4].String())
	assert.Equal(t, "4242", rows[1].Cells[6].String())
	assert.Equal(t, "", rows[3].Cells[6].String())
}

func TestOrdersBillMatchesSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.registry.Create(ctx)

	orders, err := f.account.Orders(ctx, sess)
	require.NoError(t, err)
	require.Len(t, orders, 3)

	want := map[string]models.Bill{
		"ord-001": {Subtotal: 220, ServiceFee: 15, VAT: 10, Total: 245},
		"ord-002": {Subtotal: 175, ServiceFee: 3, VAT: 2, Total: 180},
		"ord-003": {Subtotal: 110, ServiceFee: 5, VAT: 5, Total: 120},
	}
	for _, o := range orders {
		assert.Equal(t, want[o.ID], o.Bill, o.ID)
		assert.Equal(t, o.Total, o.Bill.Total, o.ID)
		assert.Equal(t, o.VAT, o.Bill.VAT, o.ID)
	}
}

func TestPreferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.registry.Create(ctx)

	assert.Equal(t, models.Preferences{Language: models.LanguageTurkish, Theme: models.ThemeLight}, f.account.Preferences(ctx, sess))

	p, err := f.account.UpdatePreferences(ctx, sess, models.Preferences{Theme: models.ThemeDark})
	require.NoError(t, err)
	assert.Equal(t, models.Preferences{Language: models.LanguageTurkish, Theme: models.ThemeDark}, p)

	_, err = f.account.UpdatePreferences(ctx, sess, models.Preferences{Language: "de"})
	assert.ErrorIs(t, err, session.ErrInvalidPreference)
	assert.Equal(t, models.LanguageTurkish, f.account.Preferences(ctx, sess).Language)
}
