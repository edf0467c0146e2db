package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cafehub/internal/models"
)

//go:embed data/catalog.json
var seedData []byte

var (
	ErrCafeNotFound     = errors.New("cafe not found")
	ErrTableNotFound    = errors.New("table not found")
	ErrMenuItemNotFound = errors.New("menu item not found")
)

// MenuCategories lists menu sections in display order
var MenuCategories = []string{"coffees", "brews", "breakfast", "desserts", "coldDrinks", "food"}

type seed struct {
	Cafes  []models.Cafe     `json:"cafes"`
	Menu   []models.MenuItem `json:"menu"`
	Tables []models.Table    `json:"tables"`
}

// Catalog is the read-only venue data the state machines consult: cafes,
// menus and floor plans. Every cafe shares the base floor plan and menu
// unless an override is registered.
type Catalog struct {
	cafes      []models.Cafe
	byID       map[string]models.Cafe
	menu       []models.MenuItem
	baseTables []models.Table
	floorPlans map[string][]models.Table
}

// Load builds the catalog from the embedded seed
func Load() (*Catalog, error) {
	return Parse(seedData)
}

// MustLoad is Load for wiring code and tests
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a catalog from a JSON seed document
func Parse(data []byte) (*Catalog, error) {
	var s seed
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		cafes:      s.Cafes,
		byID:       make(map[string]models.Cafe, len(s.Cafes)),
		menu:       s.Menu,
		baseTables: s.Tables,
		floorPlans: make(map[string][]models.Table),
	}
	for _, cafe := range s.Cafes {
		c.byID[cafe.ID] = cafe
	}
	for _, t := range s.Tables {
		if t.Capacity < 1 {
			return nil, fmt.Errorf("table %s has capacity %d", t.ID, t.Capacity)
		}
		if !t.Area.Valid() {
			return nil, fmt.Errorf("table %s has unknown area %q", t.ID, t.Area)
		}
	}
	return c, nil
}

// SetFloorPlan registers a cafe specific table layout
func (c *Catalog) SetFloorPlan(cafeID string, tables []models.Table) {
	c.floorPlans[cafeID] = tables
}

// Cafes returns every cafe
func (c *Catalog) Cafes() []models.Cafe {
	out := make([]models.Cafe, len(c.cafes))
	copy(out, c.cafes)
	return out
}

// Cafe returns a cafe by ID
func (c *Catalog) Cafe(id string) (models.Cafe, error) {
	cafe, ok := c.byID[id]
	if !ok {
		return models.Cafe{}, fmt.Errorf("%w: %s", ErrCafeNotFound, id)
	}
	return cafe, nil
}

// Filter narrows the cafe list on the home page
type Filter struct {
	Query       string  `form:"q"`
	City        string  `form:"city"`
	MinRating   float64 `form:"minRating"`
	OnlyOpenNow bool    `form:"openNow"`
}

// Search returns cafes matching every set field of f. Query matches the
// name or any tag, case insensitive.
func (c *Catalog) Search(f Filter) []models.Cafe {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.Cafe, 0, len(c.cafes))
	for _, cafe := range c.cafes {
		if q != "" && !matchesQuery(cafe, q) {
			continue
		}
		if f.City != "" && cafe.City != f.City {
			continue
		}
		if cafe.Rating < f.MinRating {
			continue
		}
		if f.OnlyOpenNow && !cafe.IsOpenNow {
			continue
		}
		out = append(out, cafe)
	}
	return out
}

func matchesQuery(cafe models.Cafe, q string) bool {
	if strings.Contains(strings.ToLower(cafe.Name), q) {
		return true
	}
	for _, tag := range cafe.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Cities lists distinct cities, sorted
func (c *Catalog) Cities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, cafe := range c.cafes {
		if !seen[cafe.City] {
			seen[cafe.City] = true
			out = append(out, cafe.City)
		}
	}
	sort.Strings(out)
	return out
}

// FloorPlan returns the table layout of a cafe
func (c *Catalog) FloorPlan(cafeID string) (models.FloorPlan, error) {
	if _, err := c.Cafe(cafeID); err != nil {
		return models.FloorPlan{}, err
	}
	tables, ok := c.floorPlans[cafeID]
	if !ok {
		tables = c.baseTables
	}
	out := make([]models.Table, len(tables))
	copy(out, tables)
	return models.FloorPlan{CafeID: cafeID, Tables: out}, nil
}

// Table returns a table of a cafe by ID
func (c *Catalog) Table(cafeID, tableID string) (models.Table, error) {
	plan, err := c.FloorPlan(cafeID)
	if err != nil {
		return models.Table{}, err
	}
	for _, t := range plan.Tables {
		if t.ID == tableID {
			return t, nil
		}
	}
	return models.Table{}, fmt.Errorf("%w: %s/%s", ErrTableNotFound, cafeID, tableID)
}

// TableByLabel returns a table of a cafe by its printed number
func (c *Catalog) TableByLabel(cafeID, label string) (models.Table, error) {
	plan, err := c.FloorPlan(cafeID)
	if err != nil {
		return models.Table{}, err
	}
	for _, t := range plan.Tables {
		if t.Label == label {
			return t, nil
		}
	}
	return models.Table{}, fmt.Errorf("%w: %s label %s", ErrTableNotFound, cafeID, label)
}

// Menu returns the menu of a cafe grouped by category
func (c *Catalog) Menu(cafeID string) (map[string][]models.MenuItem, error) {
	if _, err := c.Cafe(cafeID); err != nil {
		return nil, err
	}
	out := make(map[string][]models.MenuItem, len(MenuCategories))
	for _, item := range c.menu {
		out[item.Category] = append(out[item.Category], item)
	}
	return out, nil
}

// MenuItem returns one menu offering of a cafe
func (c *Catalog) MenuItem(cafeID, itemID string) (models.MenuItem, error) {
	if _, err := c.Cafe(cafeID); err != nil {
		return models.MenuItem{}, err
	}
	for _, item := range c.menu {
		if item.ID == itemID {
			return item, nil
		}
	}
	return models.MenuItem{}, fmt.Errorf("%w: %s", ErrMenuItemNotFound, itemID)
}
