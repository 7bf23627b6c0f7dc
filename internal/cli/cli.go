// Package cli is the interactive terminal front end: it asks for a set, shows
// what the set is good for, then asks for a size and theme and prints the build.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Vincent-alt-spec/lego-builder-generator/internal/builder"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/generation"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/models"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/selection"
	"go.uber.org/zap"
)

// Service is the part of builder.Service the CLI drives
type Service interface {
	LoadInventory(ctx context.Context, setNumber string) (*builder.Overview, error)
	GenerateFromOverview(ctx context.Context, overview *builder.Overview, req builder.Request) (*builder.Result, error)
}

// App runs the prompt loop over an injected reader and writer
type App struct {
	service Service
	in      *bufio.Scanner
	out     io.Writer
	style   styles
	logger  *zap.Logger
}

// New creates an App reading answers from in and printing to out
func New(service Service, in io.Reader, out io.Writer, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		service: service,
		in:      bufio.NewScanner(in),
		out:     out,
		style:   newStyles(out),
		logger:  logger,
	}
}

// Run loops until the user types quit, input ends, or ctx is cancelled.
// Failed runs print a message and return to the set prompt.
func (a *App) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		a.println()
		a.println(a.style.Title.Render("LEGO Builder"))
		setNumber, ok := a.ask("Enter LEGO set number (or type quit): ")
		if !ok {
			return a.in.Err()
		}
		if strings.EqualFold(setNumber, "quit") {
			a.println()
			a.println("Goodbye!")
			return nil
		}
		if setNumber == "" {
			continue
		}

		if err := a.runSet(ctx, setNumber); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return err
			}
			a.logger.Warn("run failed", zap.String("set_number", setNumber), zap.Error(err))
		}
	}
}

func (a *App) runSet(ctx context.Context, setNumber string) error {
	overview, err := a.service.LoadInventory(ctx, setNumber)
	if err != nil {
		a.println(a.style.Error.Render("Could not load set data."))
		return err
	}
	inv := overview.Inventory
	a.printOverview(overview)

	size, ok := a.chooseSize(inv.TotalParts)
	if !ok {
		return io.EOF
	}

	sel := selection.SelectBuildParts(inv, size)
	a.heading("Selected build parts:")
	a.printEntries(sel.Entries())

	a.heading("Build capability scores:")
	for _, s := range overview.Scores {
		a.printf("- %s: %d\n", s.Archetype, s.Score)
	}
	if overview.Ambiguous() {
		a.println(a.style.Muted.Render(fmt.Sprintf("Tied for best: %s (Enter picks %s)", joinArchetypes(overview.Tied), overview.Best)))
	}

	theme, ok := a.ask("\nChoose build type:\n" +
		"- vehicle (car, bike, spaceship, tank)\n" +
		"- robot (mech, droid, creature)\n" +
		"- structure (house, tower, café, base)\n" +
		"You can also type a custom theme.\n" +
		"Or press Enter to choose best: ")
	if !ok {
		return io.EOF
	}

	a.heading("Generating build design and guidance...")
	result, err := a.service.GenerateFromOverview(ctx, overview, builder.Request{
		Size:  size,
		Theme: strings.ToLower(theme),
	})
	if err != nil {
		switch {
		case errors.Is(err, builder.ErrSelectionEmpty):
			a.println(a.style.Error.Render("This set is too small for the selected build size."))
		case errors.Is(err, generation.ErrGenerationFailed):
			a.println(a.style.Error.Render("Build description generation failed."))
		default:
			a.println(a.style.Error.Render("Something went wrong: " + err.Error()))
		}
		return err
	}

	a.printResult(result)
	return nil
}

func (a *App) printOverview(o *builder.Overview) {
	a.heading("SET PART SUMMARY:")
	a.printf("Total parts: %d\n", o.Inventory.TotalParts)

	a.heading("Sample real parts:")
	a.printEntries(o.Sample)

	a.heading("This set is best suited for:")
	for _, r := range o.Recommendations {
		a.printf("- %s\n", r)
	}
}

// chooseSize prompts only for sizes the set supports
func (a *App) chooseSize(total int) (models.Size, bool) {
	a.heading("Choose build size:")

	available := selection.AvailableSizes(total)
	if len(available) == 1 {
		a.println("Only SMALL builds available (set is too small for medium or large).")
		return models.SizeSmall, true
	}

	names := make([]string, len(available))
	for i, s := range available {
		names[i] = string(s)
	}
	a.printf("Options: %s\n", strings.ToUpper(strings.Join(names, ", ")))
	input, ok := a.ask(fmt.Sprintf("Choose size (%s): ", strings.Join(names, " / ")))
	if !ok {
		return "", false
	}

	size, downgrade := selection.ResolveSize(input, total)
	if downgrade != nil {
		a.println()
		a.println(a.style.Warning.Render(fmt.Sprintf("This set is too small for a %s build.", strings.ToUpper(string(downgrade.From)))))
		a.println(a.style.Warning.Render(fmt.Sprintf("Switching to %s build instead.", strings.ToUpper(string(downgrade.To)))))
	}
	return size, true
}

func (a *App) printResult(r *builder.Result) {
	a.heading("BUILD DESIGN:")
	a.println(a.style.Build.Render(r.Build))

	if r.GuidanceWarning != "" {
		a.println(a.style.Warning.Render(r.GuidanceWarning))
	} else {
		a.heading("AI BUILD GUIDANCE:")
		for _, line := range r.Guidance {
			a.printf("- %s\n", line)
		}
	}

	a.heading("Note:")
	a.println("This build is a conceptual guide based on available parts.")
	a.println("Some connections may require creative adjustment, as the AI cannot fully simulate LEGO physics.")
	a.println("Use your own building experience to refine stability and connections.")
	a.println("This is a compact build concept. You can expand it using extra parts from your set.")

	a.heading("Want to see how the parts look?")
	a.println("Go to BrickLink and search your set number to see clear images of every piece and color.")
}

func (a *App) printEntries(entries []models.Entry) {
	for _, e := range entries {
		a.printf("- %s: %d\n", e.Name, e.Quantity)
	}
}

// ask prints prompt and reads one trimmed line; false at end of input
func (a *App) ask(prompt string) (string, bool) {
	fmt.Fprint(a.out, prompt)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

func (a *App) heading(s string) {
	a.println()
	a.println(a.style.Heading.Render(s))
}

func (a *App) println(s ...string) {
	fmt.Fprintln(a.out, strings.Join(s, " "))
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func joinArchetypes(as []models.Archetype) string {
	names := make([]string, len(as))
	for i, a := range as {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}
