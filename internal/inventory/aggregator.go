package inventory

import (
	"context"

	"github.com/Vincent-alt-spec/lego-builder-generator/internal/catalog"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/metrics"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/models"
)

// PartSource walks a set's part list page by page
type PartSource interface {
	Walk(ctx context.Context, setNumber string, fn func(catalog.Page) error) error
}

// Aggregator accumulates part records into an inventory. Not safe for
// concurrent use; each build run owns its own aggregator.
type Aggregator struct {
	inv *models.Inventory
}

// NewAggregator creates an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{inv: models.NewInventory()}
}

// Add folds records into the running totals
func (a *Aggregator) Add(records ...models.PartRecord) {
	for _, r := range records {
		if r.Quantity <= 0 {
			continue
		}
		category := r.Category
		if category == "" {
			category = models.UnknownCategory
		}
		a.inv.TotalParts += r.Quantity
		a.inv.Parts.Add(r.Key(), r.Quantity)
		a.inv.ByCategory.Add(category, r.Quantity)
		a.inv.ByColor.Add(r.ColorName, r.Quantity)
	}
}

// Inventory returns the accumulated inventory. Callers must not Add afterwards.
func (a *Aggregator) Inventory() *models.Inventory {
	return a.inv
}

// Build fetches every page of a set and aggregates it. On any failure it
// returns nil; no partial inventory escapes.
func Build(ctx context.Context, source PartSource, setNumber string) (*models.Inventory, error) {
	agg := NewAggregator()
	err := source.Walk(ctx, setNumber, func(p catalog.Page) error {
		agg.Add(p.Records...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	inv := agg.Inventory()
	metrics.CatalogParts.Observe(float64(inv.TotalParts))
	return inv, nil
}

// ExtractConstraints derives the advisory constraint view of an inventory
func ExtractConstraints(inv *models.Inventory) models.Constraints {
	if inv == nil {
		return models.Constraints{SpecialParts: []string{}}
	}
	return models.Constraints{
		TotalParts:   inv.TotalParts,
		Categories:   inv.ByCategory.Map(),
		Colors:       inv.ByColor.Map(),
		SpecialParts: []string{},
	}
}

// Sample returns up to n part variants in catalog order
func Sample(inv *models.Inventory, n int) []models.Entry {
	entries := inv.Parts.Entries()
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
