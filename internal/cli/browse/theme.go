package browse

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles used to render the browser
type Theme struct {
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	Title       lipgloss.Style
	Faint       lipgloss.Style
	Error       lipgloss.Style
	Banner      lipgloss.Style
	Urgent      lipgloss.Style
	Status      lipgloss.Style
}

// DefaultTheme uses ANSI 256 colors for broad terminal support
var DefaultTheme = Theme{
	ActiveTab: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("62")).
		Padding(0, 1),
	InactiveTab: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Padding(0, 1),
	Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
	Faint:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	Urgent: lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
	Status: lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
	Banner: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("124")).
		Padding(0, 1),
}
