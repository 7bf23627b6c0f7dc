package scoring

import (
	"strings"

	"github.com/Vincent-alt-spec/lego-builder-generator/internal/models"
)

// colorBonus awards points to an archetype when a color name contains any of
// the listed substrings (case-sensitive). Rules are independent.
type colorBonus struct {
	archetype models.Archetype
	contains  []string
	points    int
}

var colorBonuses = []colorBonus{
	{archetype: models.ArchetypeVehicle, contains: []string{"Black", "Gray"}, points: 2},
	{archetype: models.ArchetypeRobot, contains: []string{"Red", "Blue"}, points: 2},
}

// partsPerStructurePoint is how many parts earn structure one point
const partsPerStructurePoint = 50

// ScoreBuilds computes archetype affinity from the inventory's size and color spread
func ScoreBuilds(inv *models.Inventory) models.Scores {
	score := map[models.Archetype]int{}
	if inv != nil {
		colors := inv.ByColor.Keys()
		distinct := len(colors)

		score[models.ArchetypeStructure] += inv.TotalParts/partsPerStructurePoint + distinct
		score[models.ArchetypeVehicle] += distinct / 2
		score[models.ArchetypeRobot] += distinct / 2

		for _, color := range colors {
			for _, b := range colorBonuses {
				if containsAny(color, b.contains) {
					score[b.archetype] += b.points
				}
			}
		}
	}

	out := make(models.Scores, 0, len(models.Archetypes))
	for _, a := range models.Archetypes {
		out = append(out, models.ArchetypeScore{Archetype: a, Score: score[a]})
	}
	return out
}

// ChooseBestBuild returns the highest-scoring archetype and every archetype
// sharing that score. The first in declared order wins a tie; more than one
// leader means the caller may want to ask the user.
func ChooseBestBuild(scores models.Scores) (models.Archetype, []models.Archetype) {
	if len(scores) == 0 {
		return models.ArchetypeStructure, nil
	}
	best := scores[0].Score
	for _, s := range scores[1:] {
		if s.Score > best {
			best = s.Score
		}
	}
	var leaders []models.Archetype
	for _, s := range scores {
		if s.Score == best {
			leaders = append(leaders, s.Archetype)
		}
	}
	return leaders[0], leaders
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
