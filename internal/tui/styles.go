package tui

import "github.com/charmbracelet/lipgloss"

const sidebarWidth = 28

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(lipgloss.Color("240"))

	activeItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	itemStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle  = lipgloss.NewStyle().Faint(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	focusedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	botLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62"))

	focusedButtonStyle = buttonStyle.
				Background(lipgloss.Color("205")).
				Bold(true)
)
