package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"cafehub/internal/localstore"
	"cafehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStorage struct{}

func (failingStorage) GetItem(context.Context, string) (string, bool, error) {
	return "", false, errors.New("quota exceeded")
}

func (failingStorage) SetItem(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

func (failingStorage) RemoveItem(context.Context, string) error { return nil }

func TestNewMachineDefaults(t *testing.T) {
	m := NewMachine(context.Background(), localstore.NewMemory())

	s := m.State()
	assert.Nil(t, s.CafeID)
	assert.Nil(t, s.PartySize)
	assert.Equal(t, "", s.Notes)
}

func TestNewMachineRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	storage := localstore.NewMemory()
	require.NoError(t, storage.SetItem(ctx, StorageKey, `{"cafeId":"brew-and-bloom","partySize":4}`))

	s := NewMachine(ctx, storage).State()
	require.NotNil(t, s.CafeID)
	assert.Equal(t, "brew-and-bloom", *s.CafeID)
	assert.Equal(t, 4, *s.PartySize)
	assert.Nil(t, s.TableID)
	assert.Equal(t, "", s.Notes)
}

func TestNewMachineDropsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	storage := localstore.NewMemory()
	require.NoError(t, storage.SetItem(ctx, StorageKey, `{not json`))

	s := NewMachine(ctx, storage).State()
	assert.Equal(t, Defaults(), s)
}

func TestSetDetailsShallowMerge(t *testing.T) {
	ctx := context.Background()
	storage := localstore.NewMemory()
	m := NewMachine(ctx, storage)

	_, err := m.SetDetails(ctx, []byte(`{"cafeId":"c1","partySize":2,"notes":"window please"}`))
	require.NoError(t, err)

	s, err := m.SetDetails(ctx, []byte(`{"partySize":null,"durationMinutes":35}`))
	require.NoError(t, err)
	assert.Equal(t, "c1", *s.CafeID)
	assert.Nil(t, s.PartySize)
	assert.Equal(t, 35, *s.DurationMinutes)
	assert.Equal(t, "window please", s.Notes)

	raw, ok, err := storage.GetItem(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Nil(t, stored["partySize"])
	assert.Equal(t, float64(35), stored["durationMinutes"])
}

func TestSetDetailsRejectsNonObject(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(ctx, localstore.NewMemory())

	_, err := m.SetDetails(ctx, []byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrInvalidPatch)
	assert.Equal(t, Defaults(), m.State())
}

func TestResetKeepsOnlyCafe(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(ctx, localstore.NewMemory())
	m.SelectPartySize(ctx, 3)
	m.SetNotes(ctx, "birthday")

	s := m.Reset(ctx, "midnight-bakery")
	assert.Equal(t, "midnight-bakery", *s.CafeID)
	assert.Nil(t, s.PartySize)
	assert.Equal(t, "", s.Notes)
}

func TestStorageErrorsAreIgnored(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(ctx, failingStorage{})

	assert.True(t, m.SelectPartySize(ctx, 2))
	assert.Equal(t, 2, *m.State().PartySize)
}

func TestStateIsACopy(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(ctx, localstore.NewMemory())
	m.SelectPartySize(ctx, 2)

	s := m.State()
	*s.PartySize = 9
	assert.Equal(t, 2, *m.State().PartySize)
}

func TestPersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := localstore.NewMemory()
	m := NewMachine(ctx, storage)
	m.Reset(ctx, "brew-and-bloom")
	m.SelectPartySize(ctx, 4)
	m.SelectDuration(ctx, 55)
	m.SelectTable(ctx, models.Table{ID: "t6", Label: "6", Capacity: 6, Area: models.AreaGarden, Status: models.TableAvailable})

	restored := NewMachine(ctx, storage).State()
	assert.Equal(t, m.State(), restored)
}
