// Package ui is the terminal render surface for the counter app.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	Primary = lipgloss.Color("#8BC34A")
	Muted   = lipgloss.Color("#6B7280")
	Info    = lipgloss.Color("#2196F3")
	Warning = lipgloss.Color("#FFC107")
)

// Styles holds the lipgloss styles the model renders with.
type Styles struct {
	App     lipgloss.Style
	Title   lipgloss.Style
	Stream  lipgloss.Style
	Button  lipgloss.Style
	Running lipgloss.Style
	Reset   lipgloss.Style
	Footer  lipgloss.Style
}

// DefaultStyles returns the default look.
func DefaultStyles() Styles {
	return Styles{
		App:     lipgloss.NewStyle().Padding(1, 2),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(Primary),
		Stream:  lipgloss.NewStyle().Foreground(Info),
		Button:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Muted).Padding(0, 1),
		Running: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Warning).Padding(0, 1),
		Reset:   lipgloss.NewStyle().Foreground(Warning),
		Footer:  lipgloss.NewStyle().Foreground(Muted).Italic(true),
	}
}

// PlainStyles renders without colors or borders.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		App:     plain,
		Title:   plain,
		Stream:  plain,
		Button:  plain,
		Running: plain,
		Reset:   plain,
		Footer:  plain,
	}
}
