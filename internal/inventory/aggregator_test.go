package inventory

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/Vincent-alt-spec/lego-builder-generator/internal/catalog"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	pages [][]models.PartRecord
	err   error
}

func (f *fakeSource) Walk(ctx context.Context, setNumber string, fn func(catalog.Page) error) error {
	for i, recs := range f.pages {
		if err := fn(catalog.Page{Number: i + 1, Records: recs}); err != nil {
			return err
		}
	}
	return f.err
}

func rec(qty int, part, cat, color string) models.PartRecord {
	return models.PartRecord{Quantity: qty, PartName: part, Category: cat, ColorName: color}
}

func TestAggregator_Add(t *testing.T) {
	agg := NewAggregator()
	agg.Add(
		rec(4, "Brick 2 x 4", "Bricks", "Red"),
		rec(2, "Plate 1 x 2", "", "Black"),
		rec(3, "Brick 2 x 4", "Bricks", "Red"),
	)
	inv := agg.Inventory()

	assert.Equal(t, 9, inv.TotalParts)
	assert.Equal(t, 7, inv.Parts.Get("Brick 2 x 4 (Red)"))
	assert.Equal(t, 2, inv.ByCategory.Get(models.UnknownCategory))
	assert.Equal(t, []string{"Brick 2 x 4 (Red)", "Plate 1 x 2 (Black)"}, inv.Parts.Keys())
}

func TestAggregator_QuantityConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	parts := []string{"Brick 1 x 1", "Brick 2 x 2", "Slope 45 2 x 1", "Tile 1 x 2", "Technic Pin"}
	cats := []string{"Bricks", "Slopes", "Tiles", "Technic", ""}
	colors := []string{"Red", "Black", "Light Bluish Gray", "Blue", "White"}

	agg := NewAggregator()
	want := 0
	for i := 0; i < 500; i++ {
		q := rng.Intn(12) + 1
		want += q
		agg.Add(rec(q, parts[rng.Intn(len(parts))], cats[rng.Intn(len(cats))], colors[rng.Intn(len(colors))]))
	}
	inv := agg.Inventory()

	assert.Equal(t, want, inv.TotalParts)
	assert.Equal(t, want, inv.Parts.Sum())
	assert.Equal(t, want, inv.ByCategory.Sum())
	assert.Equal(t, want, inv.ByColor.Sum())
	for _, e := range inv.Parts.Entries() {
		assert.GreaterOrEqual(t, e.Quantity, 1)
	}
}

func TestBuild_TwoPagesEqualOneConcatenatedPage(t *testing.T) {
	first := []models.PartRecord{rec(4, "Brick 2 x 4", "Bricks", "Red"), rec(2, "Plate 1 x 2", "Plates", "Black")}
	second := []models.PartRecord{rec(5, "Brick 2 x 4", "Bricks", "Red"), rec(1, "Slope 30", "Slopes", "Blue")}

	paged, err := Build(context.Background(), &fakeSource{pages: [][]models.PartRecord{first, second}}, "1-1")
	require.NoError(t, err)

	single, err := Build(context.Background(), &fakeSource{pages: [][]models.PartRecord{append(append([]models.PartRecord{}, first...), second...)}}, "1-1")
	require.NoError(t, err)

	assert.Equal(t, single.TotalParts, paged.TotalParts)
	assert.Equal(t, single.Parts.Entries(), paged.Parts.Entries())
	assert.Equal(t, single.ByCategory.Entries(), paged.ByCategory.Entries())
	assert.Equal(t, single.ByColor.Entries(), paged.ByColor.Entries())
	assert.Equal(t, 12, paged.TotalParts)
}

func TestBuild_FailureReturnsNoInventory(t *testing.T) {
	src := &fakeSource{
		pages: [][]models.PartRecord{{rec(4, "Brick", "Bricks", "Red")}},
		err:   catalog.ErrFetchFailed,
	}
	inv, err := Build(context.Background(), src, "1-1")
	assert.Nil(t, inv)
	assert.True(t, errors.Is(err, catalog.ErrFetchFailed))
}

func TestExtractConstraints(t *testing.T) {
	agg := NewAggregator()
	agg.Add(rec(3, "Brick", "Bricks", "Red"))
	c := ExtractConstraints(agg.Inventory())

	assert.Equal(t, 3, c.TotalParts)
	assert.Equal(t, map[string]int{"Bricks": 3}, c.Categories)
	assert.Equal(t, map[string]int{"Red": 3}, c.Colors)
	assert.Empty(t, c.SpecialParts)
	assert.NotNil(t, c.SpecialParts)
}

func TestSample(t *testing.T) {
	agg := NewAggregator()
	for _, name := range []string{"a", "b", "c"} {
		agg.Add(rec(1, name, "X", "Red"))
	}
	inv := agg.Inventory()

	assert.Len(t, Sample(inv, 2), 2)
	assert.Equal(t, "a (Red)", Sample(inv, 2)[0].Name)
	assert.Len(t, Sample(inv, 10), 3)
}
