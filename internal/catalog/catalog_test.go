package catalog

import (
	"testing"

	"cafehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeed(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Len(t, c.Cafes(), 5)
	assert.Equal(t, []string{"Ankara", "Istanbul", "Izmir"}, c.Cities())

	plan, err := c.FloorPlan("brew-and-bloom")
	require.NoError(t, err)
	assert.Len(t, plan.Tables, 13)
	assert.Equal(t, "brew-and-bloom", plan.CafeID)
}

func TestSearch(t *testing.T) {
	c := MustLoad()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"brew-and-bloom", "third-wave-stories", "early-bird-roasters", "corner-espresso-bar", "midnight-bakery"}},
		{"tag match is case insensitive", Filter{Query: "BAKERY"}, []string{"midnight-bakery"}},
		{"city", Filter{City: "Istanbul", MinRating: 4.7}, []string{"brew-and-bloom", "midnight-bakery"}},
		{"open now", Filter{OnlyOpenNow: true, MinRating: 4.8}, []string{"brew-and-bloom"}},
		{"nothing", Filter{Query: "tea house"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, cafe := range c.Search(tt.filter) {
				ids = append(ids, cafe.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestLookups(t *testing.T) {
	c := MustLoad()

	_, err := c.Cafe("nope")
	assert.ErrorIs(t, err, ErrCafeNotFound)

	table, err := c.TableByLabel("brew-and-bloom", "6")
	require.NoError(t, err)
	assert.Equal(t, "t6", table.ID)
	assert.Equal(t, 6, table.Capacity)

	_, err = c.Table("brew-and-bloom", "t99")
	assert.ErrorIs(t, err, ErrTableNotFound)

	item, err := c.MenuItem("brew-and-bloom", "desserts-baklava")
	require.NoError(t, err)
	assert.Equal(t, int64(75), item.Price)

	menu, err := c.Menu("brew-and-bloom")
	require.NoError(t, err)
	for _, cat := range MenuCategories {
		assert.NotEmpty(t, menu[cat], cat)
	}
}

func TestFloorPlanOverride(t *testing.T) {
	c := MustLoad()
	c.SetFloorPlan("corner-espresso-bar", []models.Table{
		{ID: "b1", Label: "B1", Capacity: 1, Area: models.AreaBar, Status: models.TableAvailable},
	})

	plan, err := c.FloorPlan("corner-espresso-bar")
	require.NoError(t, err)
	assert.Len(t, plan.Tables, 1)

	other, err := c.FloorPlan("brew-and-bloom")
	require.NoError(t, err)
	assert.Len(t, other.Tables, 13)
}

func TestParseRejectsBadTables(t *testing.T) {
	_, err := Parse([]byte(`{"tables":[{"id":"x","label":"1","capacity":0,"area":"indoor","status":"available"}]}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"tables":[{"id":"x","label":"1","capacity":2,"area":"roof","status":"available"}]}`))
	assert.Error(t, err)
}
