package report

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// ProgressBar renders a horizontal bar for batch-analysis progress.
// Written to the terminal with a carriage return between updates.
type ProgressBar struct {
	Label string
	Width int
}

// Render draws the bar at current/total completion.
func (p ProgressBar) Render(current, total int) string {
	percent := 0.0
	if total > 0 {
		percent = float64(current) / float64(total)
	}

	var b strings.Builder
	if p.Label != "" {
		b.WriteString(dimStyle.Render(p.Label))
		b.WriteString("  ")
	}

	width := p.Width
	if width < 4 {
		width = 24
	}

	filled := int(float64(width) * percent)
	if filled > width {
		filled = width
	}

	b.WriteString(lipgloss.NewStyle().Background(colAccent).Render(strings.Repeat(" ", filled)))
	b.WriteString(lipgloss.NewStyle().Background(colBar).Render(strings.Repeat(" ", width-filled)))
	fmt.Fprintf(&b, "  %d/%d", current, total)

	return b.String()
}
