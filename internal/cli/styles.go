package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Brick palette
var (
	colorRed    = lipgloss.Color("#D32F2F")
	colorYellow = lipgloss.Color("#FBC02D")
	colorBlue   = lipgloss.Color("#1976D2")
	colorMuted  = lipgloss.Color("#757575")
)

type styles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Build   lipgloss.Style
}

// newStyles binds styles to out so plain writers get plain text
func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		Title:   r.NewStyle().Bold(true).Foreground(colorRed),
		Heading: r.NewStyle().Bold(true).Foreground(colorBlue),
		Warning: r.NewStyle().Foreground(colorYellow),
		Error:   r.NewStyle().Foreground(colorRed),
		Muted:   r.NewStyle().Foreground(colorMuted),
		Build: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorYellow).
			Padding(0, 1),
	}
}
