package tui

import "github.com/charmbracelet/lipgloss"

// Color palette shared by the picker and the device table.
const (
	ColorAccent = lipgloss.Color("86")
	ColorLabel  = lipgloss.Color("245")
	ColorHeader = lipgloss.Color("252")
)

//nolint:gochecknoglobals // Shared lipgloss styles
var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(ColorLabel)
	headerStyle   = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
)
