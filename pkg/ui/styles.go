package ui

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.Color("#00B8D4")
	success = lipgloss.Color("#39FF14")
	warning = lipgloss.Color("#FF6700")
	failure = lipgloss.Color("#FF0000")
	dim     = lipgloss.Color("#8A8A8A")
)

// styles are bound to one renderer so colour detection follows the
// console's writer rather than os.Stdout.
type styles struct {
	progress lipgloss.Style
	notice   lipgloss.Style
	success  lipgloss.Style
	warning  lipgloss.Style
	err      lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	panel    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		progress: r.NewStyle().Foreground(accent),
		notice:   r.NewStyle().Foreground(dim).Italic(true),
		success:  r.NewStyle().Foreground(success).Bold(true),
		warning:  r.NewStyle().Foreground(warning).Bold(true),
		err:      r.NewStyle().Foreground(failure).Bold(true),
		label:    r.NewStyle().Foreground(accent).Bold(true),
		value:    r.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
	}
}
