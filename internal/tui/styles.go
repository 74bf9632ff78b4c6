// Package tui renders enrichr's terminal output: the live progress view
// shown during a run and the end-of-run summary.
package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared by the views.
const (
	ColorHeader  = lipgloss.Color("212")
	ColorBorder  = lipgloss.Color("63")
	ColorLabel   = lipgloss.Color("245")
	ColorValue   = lipgloss.Color("255")
	ColorMuted   = lipgloss.Color("241")
	ColorSuccess = lipgloss.Color("42")
	ColorWarning = lipgloss.Color("214")
	ColorError   = lipgloss.Color("196")
)

const (
	defaultWidth     = 80
	progressBarWidth = 48
	labelWidth       = 18
)
