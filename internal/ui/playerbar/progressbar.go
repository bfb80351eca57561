package playerbar

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	filledBlock = "▓"
	emptyBlock  = "░"
)

// RenderProgressBar renders a block-style progress bar of about width cells.
// Format: ▶  1:23  ▓▓▓▓▓░░░░░  4:56
// An unknown duration (live or still loading) shows the position only.
func RenderProgressBar(position, duration time.Duration, width int, status string) string {
	posStr := formatDuration(position)
	if duration <= 0 {
		return status + "  " + posStr
	}
	durStr := formatDuration(duration)

	fixedWidth := lipgloss.Width(status) + 2 + lipgloss.Width(posStr) + 2 + 2 + lipgloss.Width(durStr)
	barWidth := width - fixedWidth
	if barWidth < 3 {
		return joinNonEmpty("  ", status, posStr+" / "+durStr)
	}

	ratio := float64(position) / float64(duration)
	filled := min(max(int(float64(barWidth)*ratio), 0), barWidth)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, barWidth-filled)

	return status + "  " + posStr + "  " + bar + "  " + durStr
}
