package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#7C9A92")
	muted  = lipgloss.Color("240")
	danger = lipgloss.Color("203")

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(accent).
			Padding(0, 1).
			Bold(true)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)

	activePaneStyle = paneStyle.
			BorderForeground(accent)

	headingStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(muted)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(accent)

	barStyle = lipgloss.NewStyle().
			Foreground(accent)

	toastStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(accent).
			Padding(0, 1)

	errorToastStyle = toastStyle.
			BorderForeground(danger)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(accent).
			Padding(1, 2)
)
