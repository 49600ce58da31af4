package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Base colors
	primaryColor = lipgloss.Color("212")
	mutedColor   = lipgloss.Color("241")
	successColor = lipgloss.Color("42")
	warningColor = lipgloss.Color("214")
	errorColor   = lipgloss.Color("196")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).MarginTop(1)
	labelStyle   = lipgloss.NewStyle().Foreground(mutedColor).Width(19)
	helpStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	numberStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))

	// Selected row style - inverted colors for visibility
	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("237")).
				Foreground(lipgloss.Color("255"))

	// Status banner, bordered like the browser notification it replaces
	successBanner = lipgloss.NewStyle().
			Foreground(successColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(successColor).
			Padding(0, 1)
	errorBanner = lipgloss.NewStyle().
			Foreground(errorColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(errorColor).
			Padding(0, 1)

	rejectionStyle = lipgloss.NewStyle().Foreground(warningColor)

	confirmStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(warningColor).
			Padding(0, 1).
			Bold(true)
)
