package generation

import (
	"fmt"
	"strings"

	"github.com/Vincent-alt-spec/lego-builder-generator/internal/models"
)

// sizeTargets is the approximate part usage quoted to the model per size
var sizeTargets = []struct {
	Size  models.Size
	Range string
}{
	{models.SizeSmall, "~30–200 parts"},
	{models.SizeMedium, "~250–400 parts"},
	{models.SizeLarge, "~500–800+ parts"},
}

// PartList renders a selection as "- <part variant> x<qty>" lines
func PartList(sel *models.Selection) string {
	var b strings.Builder
	for i, e := range sel.Entries() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s x%d", e.Name, e.Quantity)
	}
	return b.String()
}

// BuildPrompt asks for a themed, sectioned build restricted to the selected parts
func BuildPrompt(theme string, sel *models.Selection, size models.Size) string {
	var b strings.Builder
	b.WriteString("You are a professional LEGO instruction designer.\n\n")
	b.WriteString("AVAILABLE PARTS (YOU MAY ONLY USE THESE):\n\n")
	b.WriteString(PartList(sel))
	b.WriteString("\n\nRULES:\n")
	b.WriteString("- Use ONLY the parts listed above\n")
	b.WriteString("- Do NOT invent new parts\n")
	b.WriteString("- Do NOT change colors\n")
	b.WriteString("- Do NOT exceed the quantities\n")
	fmt.Fprintf(&b, "- The build must match this theme: %s\n", theme)
	fmt.Fprintf(&b, "- Build size: %s\n\n", strings.ToUpper(string(size)))

	b.WriteString("PART NAMING RULE:\n")
	b.WriteString("Write every part exactly as it appears in the AVAILABLE PARTS list, color included.\n")
	b.WriteString("Do NOT reword, resize, rename, or generalize parts.\n")
	b.WriteString("If the list says \"Slope 30 1x2 (Dark Bluish Gray)\", write exactly \"Slope 30 1x2 (Dark Bluish Gray)\".\n\n")

	b.WriteString("TARGET PART USAGE:\n")
	for _, t := range sizeTargets {
		fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(string(t.Size)), t.Range)
	}
	b.WriteString("\nIf the parts cannot support this size, explain why and suggest a better build type.\n\n")

	b.WriteString("Create a realistic LEGO build using ONLY these parts and explain how to build it step by step.\n\n")
	b.WriteString("FORMAT:\n")
	b.WriteString("- Title\n")
	b.WriteString("- Sections (Base, Body, Details, etc.)\n")
	b.WriteString("- Each section:\n")
	b.WriteString("  - Parts Required\n")
	b.WriteString("  - Instructions\n\n")
	b.WriteString("Start now.\n")
	return b.String()
}

// Summary is the inventory context passed along with a guidance request
type Summary struct {
	TotalParts int
	Colors     []string
}

// Summarize reduces an inventory to guidance context
func Summarize(inv *models.Inventory) Summary {
	if inv == nil {
		return Summary{}
	}
	return Summary{TotalParts: inv.TotalParts, Colors: inv.ByColor.Keys()}
}

// GuidancePrompt asks for time, difficulty and stability notes without touching the build
func GuidancePrompt(build string, summary Summary) string {
	var b strings.Builder
	b.WriteString("You are a LEGO building assistant.\n\n")
	b.WriteString("Based on the build design below, provide:\n\n")
	b.WriteString("- Estimated build time\n")
	b.WriteString("- Difficulty level\n")
	b.WriteString("- Stability tips\n\n")
	b.WriteString("Do NOT change the build.\n")
	b.WriteString("Do NOT add instructions.\n")
	b.WriteString("Do NOT suggest new parts.\n\n")
	if summary.TotalParts > 0 {
		fmt.Fprintf(&b, "Source set: %d parts in %s.\n\n", summary.TotalParts, strings.Join(summary.Colors, ", "))
	}
	b.WriteString("Build Design:\n")
	b.WriteString(build)
	b.WriteString("\n")
	return b.String()
}

// SplitLines turns generated text into display lines
func SplitLines(text string) models.Guidance {
	return models.Guidance(strings.Split(text, "\n"))
}
