package output

import "github.com/charmbracelet/lipgloss"

var (
	primary = lipgloss.Color("#7C3AED")
	green   = lipgloss.Color("#10B981")
	red     = lipgloss.Color("#EF4444")
	yellow  = lipgloss.Color("#F59E0B")
	dim     = lipgloss.Color("#6B7280")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(primary)
	headingStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(dim)
	goodStyle    = lipgloss.NewStyle().Foreground(green).Bold(true)
	badStyle     = lipgloss.NewStyle().Foreground(red).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(yellow)
)

// painter applies styles only when the output is a terminal.
type painter bool

func (p painter) paint(s lipgloss.Style, text string) string {
	if !p {
		return text
	}
	return s.Render(text)
}

// rate picks a colour for a success percentage.
func (p painter) rate(successRate float64, text string) string {
	switch {
	case successRate >= 99:
		return p.paint(goodStyle, text)
	case successRate >= 95:
		return p.paint(warnStyle, text)
	default:
		return p.paint(badStyle, text)
	}
}
