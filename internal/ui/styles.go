package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Shared terminal styles for CLI and TUI output.
var (
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	StyleSuccess = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	StyleError = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	StyleWarning = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	StyleMuted = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)
