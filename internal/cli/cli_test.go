package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Vincent-alt-spec/lego-builder-generator/internal/builder"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/catalog"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/generation"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	records []models.PartRecord
	err     error
}

func (f *fakeSource) Walk(ctx context.Context, setNumber string, fn func(catalog.Page) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(catalog.Page{Number: 1, Records: f.records})
}

type fakeGenerator struct {
	buildErr    error
	guidanceErr error
	gotTheme    string
	gotSize     models.Size
}

func (f *fakeGenerator) GenerateBuild(ctx context.Context, theme string, sel *models.Selection, size models.Size) (string, error) {
	f.gotTheme, f.gotSize = theme, size
	if f.buildErr != nil {
		return "", f.buildErr
	}
	return "# " + theme + " build", nil
}

func (f *fakeGenerator) GenerateGuidance(ctx context.Context, build string, inv *models.Inventory) (models.Guidance, error) {
	if f.guidanceErr != nil {
		return nil, f.guidanceErr
	}
	return models.Guidance{"Time: 15 minutes", "Difficulty: Easy"}, nil
}

// bricks gives each color one record of qty bricks
func bricks(qty int, colors ...string) []models.PartRecord {
	out := make([]models.PartRecord, 0, len(colors))
	for _, c := range colors {
		out = append(out, models.PartRecord{Quantity: qty, PartName: "Brick 2 x 4", Category: "Bricks", ColorName: c})
	}
	return out
}

func run(t *testing.T, src *fakeSource, gen *fakeGenerator, input string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := New(builder.NewService(src, gen, nil), strings.NewReader(input), &out, nil)
	err := app.Run(context.Background())
	return out.String(), err
}

func TestRun_FullBuildWithDowngrade(t *testing.T) {
	src := &fakeSource{records: bricks(50, "Black", "Red", "White", "Blue", "Gray")}
	gen := &fakeGenerator{}

	out, err := run(t, src, gen, "6020\nlarge\n\nquit\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Total parts: 250")
	assert.Contains(t, out, "- Brick 2 x 4 (Black): 50")
	assert.Contains(t, out, "- structure")
	assert.Contains(t, out, "Options: SMALL, MEDIUM")
	assert.Contains(t, out, "This set is too small for a LARGE build.")
	assert.Contains(t, out, "Switching to SMALL build instead.")

	// small target is 120: 50 + 50 + 20
	assert.Contains(t, out, "- Brick 2 x 4 (White): 20")
	assert.NotContains(t, out, "- Brick 2 x 4 (Blue): ")

	assert.Contains(t, out, "- structure: 10")
	assert.Contains(t, out, "- vehicle: 6")
	assert.Contains(t, out, "- robot: 6")

	assert.Equal(t, "structure", gen.gotTheme)
	assert.Equal(t, models.SizeSmall, gen.gotSize)
	assert.Contains(t, out, "# structure build")
	assert.Contains(t, out, "- Time: 15 minutes")
	assert.Contains(t, out, "Generating build design and guidance...")
	assert.Less(t, strings.Index(out, "Generating build design and guidance..."), strings.Index(out, "BUILD DESIGN:"))
	assert.NotContains(t, out, "Generating AI build guidance")
	assert.Contains(t, out, "BrickLink")
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))
}

func TestRun_CustomThemeSmallOnly(t *testing.T) {
	src := &fakeSource{records: bricks(25, "Red", "Blue")}
	gen := &fakeGenerator{guidanceErr: fmt.Errorf("%w: empty", generation.ErrGenerationFailed)}

	out, err := run(t, src, gen, "10030\n  Dragon \n")
	require.NoError(t, err)

	assert.Contains(t, out, "Only SMALL builds available")
	assert.Equal(t, "dragon", gen.gotTheme)
	assert.Contains(t, out, "# dragon build")
	assert.Contains(t, out, "AI guidance failed.")
	assert.NotContains(t, out, "AI BUILD GUIDANCE:")
}

func TestRun_LoadFailureReturnsToPrompt(t *testing.T) {
	src := &fakeSource{err: fmt.Errorf("%w: status 404", catalog.ErrSetNotFound)}

	out, err := run(t, src, &fakeGenerator{}, "99999\nquit\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Could not load set data.")
	assert.Equal(t, 2, strings.Count(out, "Enter LEGO set number"))
	assert.Contains(t, out, "Goodbye!")
}

func TestRun_GenerationFailure(t *testing.T) {
	src := &fakeSource{records: bricks(30, "Black")}
	gen := &fakeGenerator{buildErr: fmt.Errorf("%w: status 500", generation.ErrGenerationFailed)}

	out, err := run(t, src, gen, "1\nvehicle\nquit\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Build description generation failed.")
	assert.NotContains(t, out, "BUILD DESIGN:")
	assert.Contains(t, out, "Goodbye!")
}

func TestRun_EmptySet(t *testing.T) {
	out, err := run(t, &fakeSource{}, &fakeGenerator{}, "1\n\nquit\n")
	require.NoError(t, err)
	assert.Contains(t, out, "This set is too small for the selected build size.")
}

func TestRun_TiedScoresAreShown(t *testing.T) {
	// structure 2/50+2 = 2, vehicle 1+2 = 3, robot 1+2 = 3
	src := &fakeSource{records: []models.PartRecord{
		{Quantity: 1, PartName: "Tile 1 x 1", Category: "Tiles", ColorName: "Black"},
		{Quantity: 1, PartName: "Tile 1 x 1", Category: "Tiles", ColorName: "Red"},
	}}
	gen := &fakeGenerator{}

	out, err := run(t, src, gen, "1\n\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Tied for best: vehicle, robot (Enter picks vehicle)")
	assert.Equal(t, "vehicle", gen.gotTheme)
}

func TestRun_EndOfInput(t *testing.T) {
	src := &fakeSource{records: bricks(600, "Black")}
	out, err := run(t, src, &fakeGenerator{}, "1\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Choose size (small / medium / large): ")
	assert.NotContains(t, out, "Goodbye!")
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	app := New(builder.NewService(&fakeSource{}, &fakeGenerator{}, nil), strings.NewReader("1\n"), &bytes.Buffer{}, nil)
	err := app.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}
