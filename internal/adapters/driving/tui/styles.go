package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains the pre-configured lipgloss styles for the chat view.
type Styles struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	User     lipgloss.Style
	Answer   lipgloss.Style
	Error    lipgloss.Style
	ChatBox  lipgloss.Style
	InputBox lipgloss.Style
}

// DefaultStyles returns the default chat styling.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		User:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")),
		Answer:   lipgloss.NewStyle().Foreground(lipgloss.Color("#CDD6F4")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		ChatBox:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#45475A")).Padding(0, 1),
		InputBox: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#45475A")).Padding(0, 1),
	}
}
