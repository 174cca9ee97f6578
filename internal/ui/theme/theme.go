package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")

	Flame     = lipgloss.Color("#FF9230")
	FlameTint = lipgloss.Color("#B34600")
	FlameDim  = lipgloss.Color("#5C3A1C")
	Selected  = lipgloss.Color("#F67A2A")
	Ice       = lipgloss.Color("#3CD3FE")
	IceDim    = lipgloss.Color("#1C3C4D")
	Teal      = lipgloss.Color("#008694")

	App = lipgloss.NewStyle().
		Background(Base).
		Foreground(Text).
		Padding(1, 2)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	PaneActive = Pane.BorderForeground(Flame)

	Title  = lipgloss.NewStyle().Foreground(Flame).Bold(true)
	Muted  = lipgloss.NewStyle().Foreground(Subtext0)
	Hot    = lipgloss.NewStyle().Foreground(Selected).Bold(true)
	Frozen = lipgloss.NewStyle().Foreground(Ice).Bold(true)

	// Day cells in the calendar row.
	DayLearned = lipgloss.NewStyle().Foreground(Base).Background(Flame).Bold(true).Padding(0, 1)
	DayFreezed = lipgloss.NewStyle().Foreground(Base).Background(Ice).Bold(true).Padding(0, 1)
	DayToday   = lipgloss.NewStyle().Foreground(Selected).Bold(true).Underline(true).Padding(0, 1)
	DayPlain   = lipgloss.NewStyle().Foreground(Text).Padding(0, 1)
	DayOutside = lipgloss.NewStyle().Foreground(Surface1).Padding(0, 1)

	LearnButton  = lipgloss.NewStyle().Foreground(Text).Background(FlameTint).Bold(true).Padding(0, 2)
	FreezeButton = lipgloss.NewStyle().Foreground(Ice).Background(IceDim).Bold(true).Padding(0, 2)
	Disabled     = lipgloss.NewStyle().Foreground(Subtext0).Background(Surface0).Padding(0, 2)
)
