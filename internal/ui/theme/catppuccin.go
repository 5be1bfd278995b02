package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Yellow   = lipgloss.Color("#f9e2af")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	PaneActive = Pane.BorderForeground(Lavender)

	Title   = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted   = lipgloss.NewStyle().Foreground(Subtext0)
	Hot     = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Good    = lipgloss.NewStyle().Foreground(Green).Bold(true)
	Bad     = lipgloss.NewStyle().Foreground(Red).Bold(true)
	Warn    = lipgloss.NewStyle().Foreground(Yellow)
	Heading = lipgloss.NewStyle().Foreground(Lavender).Bold(true)
)

// Countdown picks the timer color for the share of the budget left.
func Countdown(remaining, budget int) lipgloss.Style {
	switch {
	case budget <= 0 || remaining*5 <= budget:
		return Bad
	case remaining*2 <= budget:
		return Hot
	}
	return Good
}
