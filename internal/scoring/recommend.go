package scoring

import "github.com/Vincent-alt-spec/lego-builder-generator/internal/models"

// Catalog category names the recommender reads
const (
	CategoryBricks   = "Bricks"
	CategoryPlates   = "Plates"
	CategorySlopes   = "Slopes"
	CategoryTechnic  = "Technic"
	CategoryMinifigs = "Minifig Parts"
)

// FallbackRecommendation is returned when no rule matches
const FallbackRecommendation = "small prop / decoration"

// threshold passes when the summed count of its categories exceeds Min
type threshold struct {
	Categories []string
	Min        int
}

// Rule recommends Build when any of its thresholds passes
type Rule struct {
	Build      string
	thresholds []threshold
}

// Rules are evaluated in order; every matching rule contributes.
var Rules = []Rule{
	{Build: "structure", thresholds: []threshold{
		{Categories: []string{CategoryBricks, CategoryPlates}, Min: 150},
	}},
	{Build: "vehicle", thresholds: []threshold{
		{Categories: []string{CategorySlopes}, Min: 50},
		{Categories: []string{CategoryTechnic}, Min: 40},
	}},
	{Build: "creature", thresholds: []threshold{
		{Categories: []string{CategoryMinifigs}, Min: 10},
	}},
}

// Matches reports whether the rule fires for the given category counts
func (r Rule) Matches(byCategory *models.Counts) bool {
	for _, t := range r.thresholds {
		sum := 0
		for _, c := range t.Categories {
			sum += byCategory.Get(c)
		}
		if sum > t.Min {
			return true
		}
	}
	return false
}

// RecommendBuildTypes suggests build families from category counts alone,
// independent of ScoreBuilds.
func RecommendBuildTypes(inv *models.Inventory) []string {
	var byCategory *models.Counts
	if inv != nil {
		byCategory = inv.ByCategory
	}

	var out []string
	for _, r := range Rules {
		if r.Matches(byCategory) {
			out = append(out, r.Build)
		}
	}
	if len(out) == 0 {
		out = append(out, FallbackRecommendation)
	}
	return out
}
