// Package report renders batch-analysis results for the teacher: a styled
// terminal table, a class summary, a progress bar, and CSV export.
package report

import "charm.land/lipgloss/v2"

// Palette for the analysis report output.
var (
	colAccent = lipgloss.Color("#14B8A6") // Teal
	colGood   = lipgloss.Color("#22C55E") // Green
	colWarn   = lipgloss.Color("#F97316") // Orange
	colBad    = lipgloss.Color("#F43F5E") // Rose
	colText   = lipgloss.Color("#F8FAFC")
	colDim    = lipgloss.Color("#94A3B8")
	colBar    = lipgloss.Color("#334155")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colAccent)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colDim)
	cellStyle   = lipgloss.NewStyle().Foreground(colText)
	dimStyle    = lipgloss.NewStyle().Foreground(colDim)
	warnStyle   = lipgloss.NewStyle().Foreground(colWarn)
)

// bandStyle colors a grade band. A/B read as healthy work, E flags a
// student who barely engaged.
func bandStyle(band string) lipgloss.Style {
	switch band {
	case "A", "B":
		return lipgloss.NewStyle().Foreground(colGood).Bold(true)
	case "E":
		return lipgloss.NewStyle().Foreground(colBad).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(colWarn)
	}
}
