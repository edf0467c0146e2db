package floorplan

import (
	"testing"

	"cafehub/internal/models"

	"github.com/stretchr/testify/assert"
)

func table(capacity int, status models.TableStatus) models.Table {
	return models.Table{ID: "t", Label: "1", Capacity: capacity, Area: models.AreaWindow, Status: status}
}

func TestSelectableByCapacity(t *testing.T) {
	twoTop := table(2, models.TableAvailable)

	assert.True(t, Selectable(twoTop, 1))
	assert.True(t, Selectable(twoTop, 2))
	assert.False(t, Selectable(twoTop, 3))
	assert.False(t, Selectable(twoTop, 10))
	assert.Equal(t, BlockCapacity, Blocked(twoTop, 3))
}

func TestOccupiedNeverSelectable(t *testing.T) {
	for _, capacity := range []int{1, 2, 6, 10} {
		occupied := table(capacity, models.TableOccupied)
		for size := 0; size <= 10; size++ {
			assert.False(t, Selectable(occupied, size))
			assert.Equal(t, BlockOccupied, Blocked(occupied, size))
		}
	}
}

func TestUnsetPartySizeCountsAsOne(t *testing.T) {
	single := table(1, models.TableAvailable)
	assert.True(t, Selectable(single, 0))
	assert.True(t, Selectable(single, -1))
}

func TestAnnotate(t *testing.T) {
	plan := models.FloorPlan{CafeID: "c", Tables: []models.Table{
		{ID: "a", Capacity: 2, Status: models.TableAvailable},
		{ID: "b", Capacity: 6, Status: models.TableOccupied},
		{ID: "c", Capacity: 6, Status: models.TableAvailable},
	}}

	views := Annotate(plan, 4, "c")

	assert.Len(t, views, 3)
	assert.Equal(t, BlockCapacity, views[0].Blocked)
	assert.Equal(t, BlockOccupied, views[1].Blocked)
	assert.True(t, views[2].Selectable)
	assert.True(t, views[2].Selected)
	assert.False(t, views[0].Selected)

	found, ok := Find(plan, "b")
	assert.True(t, ok)
	assert.Equal(t, 6, found.Capacity)
	_, ok = Find(plan, "z")
	assert.False(t, ok)
}
