// Package selection picks the bounded subset of an inventory used for a build.
package selection

import "github.com/Vincent-alt-spec/lego-builder-generator/internal/models"

// tier describes one size: the minimum set size it needs and its part cap
type tier struct {
	MinParts int
	MaxParts int
}

var tiers = map[models.Size]tier{
	models.SizeSmall:  {MinParts: 0, MaxParts: 120},
	models.SizeMedium: {MinParts: 200, MaxParts: 350},
	models.SizeLarge:  {MinParts: 500, MaxParts: 700},
}

// Target returns how many parts a build of the given size should use.
// ok is false when the set is too small for the size or the size is unknown.
func Target(size models.Size, totalParts int) (target int, ok bool) {
	t, known := tiers[size]
	if !known || totalParts < t.MinParts {
		return 0, false
	}
	return min(t.MaxParts, totalParts), true
}

// SelectBuildParts takes parts one unit at a time in inventory order until
// the size target is reached. The result is empty when the set is too small.
func SelectBuildParts(inv *models.Inventory, size models.Size) *models.Selection {
	selected := models.NewCounts()
	if inv == nil {
		return selected
	}
	target, ok := Target(size, inv.TotalParts)
	if !ok {
		return selected
	}

	count := 0
	for _, e := range inv.Parts.Entries() {
		for i := 0; i < e.Quantity; i++ {
			if count >= target {
				return selected
			}
			selected.Add(e.Name, 1)
			count++
		}
	}
	return selected
}

// AvailableSizes lists the sizes a set of totalParts can support
func AvailableSizes(totalParts int) []models.Size {
	var out []models.Size
	for _, s := range models.Sizes {
		if _, ok := Target(s, totalParts); ok {
			out = append(out, s)
		}
	}
	return out
}

// Downgrade records a size request that had to be changed
type Downgrade struct {
	From models.Size `json:"from"`
	To   models.Size `json:"to"`
}

// ResolveSize turns raw user input into a size the set can support.
// Unrecognized input falls back to medium for sets of 500+ parts and small
// otherwise. A medium or large request the set cannot support becomes small
// and is reported as a downgrade.
func ResolveSize(input string, totalParts int) (models.Size, *Downgrade) {
	size, ok := models.ParseSize(input)
	if !ok {
		if _, fits := Target(models.SizeLarge, totalParts); fits {
			return models.SizeMedium, nil
		}
		return models.SizeSmall, nil
	}
	if _, fits := Target(size, totalParts); !fits {
		return models.SizeSmall, &Downgrade{From: size, To: models.SizeSmall}
	}
	return size, nil
}
