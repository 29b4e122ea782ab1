package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette inspired by standard terminal dark themes.
var (
	ColorPrimary   = lipgloss.Color("255") // White
	ColorSecondary = lipgloss.Color("240") // Dark Gray
	ColorAccent    = lipgloss.Color("39")  // Blue / Cyan
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorError     = lipgloss.Color("196") // Red
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorDim       = lipgloss.Color("240")
)

// Shared styles, also used by the plain REPL in cmd.
var (
	StyleDimmed  = lipgloss.NewStyle().Foreground(ColorDim)
	StyleBold    = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	StylePrompt  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	StyleUser    = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)

	StyleHelpKey  = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	StyleHelpDesc = lipgloss.NewStyle().Foreground(ColorDim)
)
