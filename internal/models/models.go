package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PartRecord is one line of a set's part list as returned by the catalog
type PartRecord struct {
	Quantity  int    `json:"quantity"`
	PartName  string `json:"part_name"`
	Category  string `json:"category"`
	ColorName string `json:"color_name"`
}

// Key returns the part-variant key, e.g. "Slope 30 1x2 (Dark Bluish Gray)"
func (r PartRecord) Key() string {
	return fmt.Sprintf("%s (%s)", r.PartName, r.ColorName)
}

// UnknownCategory is used when the catalog omits a part category
const UnknownCategory = "Unknown"

// Counts is an insertion-ordered string -> quantity tally
type Counts struct {
	keys []string
	qty  map[string]int
}

// NewCounts creates an empty tally
func NewCounts() *Counts {
	return &Counts{qty: make(map[string]int)}
}

// Add increments key by n, recording key on first sight
func (c *Counts) Add(key string, n int) {
	if c.qty == nil {
		c.qty = make(map[string]int)
	}
	if _, ok := c.qty[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.qty[key] += n
}

// Get returns the quantity for key, 0 if absent
func (c *Counts) Get(key string) int {
	if c == nil {
		return 0
	}
	return c.qty[key]
}

// Keys returns keys in first-insertion order
func (c *Counts) Keys() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of distinct keys
func (c *Counts) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Sum returns the total over all keys
func (c *Counts) Sum() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, k := range c.keys {
		total += c.qty[k]
	}
	return total
}

// Entries returns key/quantity pairs in insertion order
func (c *Counts) Entries() []Entry {
	if c == nil {
		return []Entry{}
	}
	out := make([]Entry, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, Entry{Name: k, Quantity: c.qty[k]})
	}
	return out
}

// Map returns a copy of the tally as a plain map
func (c *Counts) Map() map[string]int {
	out := make(map[string]int, c.Len())
	if c == nil {
		return out
	}
	for k, v := range c.qty {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the tally as an ordered list of entries
func (c *Counts) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Entries())
}

// Entry is a single named quantity
type Entry struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Inventory is the consolidated part list of one set
type Inventory struct {
	TotalParts int     `json:"total_parts"`
	Parts      *Counts `json:"parts"` // keyed by PartRecord.Key()
	ByCategory *Counts `json:"by_category"`
	ByColor    *Counts `json:"by_color"`
}

// NewInventory returns an empty inventory
func NewInventory() *Inventory {
	return &Inventory{
		Parts:      NewCounts(),
		ByCategory: NewCounts(),
		ByColor:    NewCounts(),
	}
}

// Constraints is the advisory view of an inventory handed to generation
type Constraints struct {
	TotalParts   int            `json:"total_parts"`
	Categories   map[string]int `json:"categories"`
	Colors       map[string]int `json:"colors"`
	SpecialParts []string       `json:"special_parts"`
}

// Archetype is a build family the scorer knows about
type Archetype string

const (
	ArchetypeStructure Archetype = "structure"
	ArchetypeVehicle   Archetype = "vehicle"
	ArchetypeRobot     Archetype = "robot"
)

// Archetypes lists archetypes in declared order. Ties resolve to the earliest.
var Archetypes = []Archetype{ArchetypeStructure, ArchetypeVehicle, ArchetypeRobot}

// ArchetypeScore pairs an archetype with its affinity score
type ArchetypeScore struct {
	Archetype Archetype `json:"archetype"`
	Score     int       `json:"score"`
}

// Scores holds one entry per archetype in declared order
type Scores []ArchetypeScore

// Get returns the score for a, 0 if absent
func (s Scores) Get(a Archetype) int {
	for _, as := range s {
		if as.Archetype == a {
			return as.Score
		}
	}
	return 0
}

// Size is the requested build size tier
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Sizes lists tiers from smallest to largest
var Sizes = []Size{SizeSmall, SizeMedium, SizeLarge}

// ParseSize normalizes user input into a Size
func ParseSize(s string) (Size, bool) {
	switch Size(strings.ToLower(strings.TrimSpace(s))) {
	case SizeSmall:
		return SizeSmall, true
	case SizeMedium:
		return SizeMedium, true
	case SizeLarge:
		return SizeLarge, true
	}
	return "", false
}

// Selection is the subset of parts chosen for one build, keyed by part variant
type Selection = Counts

// Guidance is generated advice, one display line per element
type Guidance []string
