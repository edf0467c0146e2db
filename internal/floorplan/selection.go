// Package floorplan holds the table selection rules of the reservation flow.
// Tables are read-only here; capacity is checked against the party size at
// the moment of selection only.
package floorplan

import "cafehub/internal/models"

// BlockReason explains why a table cannot be picked
type BlockReason string

const (
	BlockNone     BlockReason = "none"
	BlockOccupied BlockReason = "occupied"
	BlockCapacity BlockReason = "capacity"
)

// effectivePartySize treats an unset party size as a single guest, for
// display purposes.
func effectivePartySize(partySize int) int {
	if partySize < 1 {
		return 1
	}
	return partySize
}

// Selectable reports whether t is available and seats partySize guests.
func Selectable(t models.Table, partySize int) bool {
	return Blocked(t, partySize) == BlockNone
}

// Blocked returns the reason t cannot be selected. Occupancy wins over
// capacity so occupied tables render the same regardless of party size.
func Blocked(t models.Table, partySize int) BlockReason {
	if t.Status == models.TableOccupied {
		return BlockOccupied
	}
	if t.Capacity < effectivePartySize(partySize) {
		return BlockCapacity
	}
	return BlockNone
}

// TableView is a table annotated for rendering
type TableView struct {
	models.Table
	Selectable bool        `json:"selectable"`
	Blocked    BlockReason `json:"blocked"`
	Selected   bool        `json:"selected"`
}

// Annotate marks every table of plan for the given party size and the
// currently selected table ID (empty for none).
func Annotate(plan models.FloorPlan, partySize int, selectedID string) []TableView {
	out := make([]TableView, 0, len(plan.Tables))
	for _, t := range plan.Tables {
		reason := Blocked(t, partySize)
		out = append(out, TableView{
			Table:      t,
			Selectable: reason == BlockNone,
			Blocked:    reason,
			Selected:   selectedID != "" && t.ID == selectedID,
		})
	}
	return out
}

// Find returns the table with the given ID
func Find(plan models.FloorPlan, tableID string) (models.Table, bool) {
	for _, t := range plan.Tables {
		if t.ID == tableID {
			return t, true
		}
	}
	return models.Table{}, false
}
