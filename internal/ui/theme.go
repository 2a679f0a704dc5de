package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors and pre-built styles of every screen.
type Theme struct {
	Primary lipgloss.Color
	Success lipgloss.Color
	Danger  lipgloss.Color
	Warning lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color

	HeaderStyle   lipgloss.Style
	SectionStyle  lipgloss.Style
	CardStyle     lipgloss.Style
	ErrorStyle    lipgloss.Style
	SuccessStyle  lipgloss.Style
	MutedStyle    lipgloss.Style
	SelectedStyle lipgloss.Style
	TitleStyle    lipgloss.Style
	LinkStyle     lipgloss.Style
}

// DefaultTheme is the blue/green palette of the web client.
func DefaultTheme() Theme {
	t := Theme{
		Primary: lipgloss.Color("#007BFF"),
		Success: lipgloss.Color("#28A745"),
		Danger:  lipgloss.Color("#DC3545"),
		Warning: lipgloss.Color("#FFC107"),
		Muted:   lipgloss.Color("#6C757D"),
		Text:    lipgloss.Color("#F8F9FA"),
	}

	t.HeaderStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.Primary).
		Bold(true).
		Padding(0, 1)
	t.SectionStyle = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true).
		MarginTop(1)
	t.CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(t.Danger)
	t.SuccessStyle = lipgloss.NewStyle().Foreground(t.Success)
	t.MutedStyle = lipgloss.NewStyle().Foreground(t.Muted)
	t.SelectedStyle = lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
	t.TitleStyle = lipgloss.NewStyle().Bold(true)
	t.LinkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#17A2B8")).Underline(true)

	return t
}
