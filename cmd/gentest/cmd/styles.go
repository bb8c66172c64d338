package cmd

import "github.com/charmbracelet/lipgloss"

// Status glyphs carry meaning without relying on color alone.
const (
	glyphPassed = "✓"
	glyphFailed = "✗"
	glyphError  = "!"
)

var (
	colorGreen = lipgloss.Color("42")
	colorRed   = lipgloss.Color("196")
	colorDim   = lipgloss.Color("240")
	colorCyan  = lipgloss.Color("51")
)

var (
	passedStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	failedStyle  = lipgloss.NewStyle().Foreground(colorRed)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	detailStyle  = lipgloss.NewStyle().PaddingLeft(4).Foreground(colorDim)
)
