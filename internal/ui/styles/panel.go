package styles

import "github.com/charmbracelet/lipgloss"

// PanelStyle returns a rounded panel style, highlighted when focused.
func PanelStyle(focused bool) lipgloss.Style {
	border := T().Border
	if focused {
		border = T().BorderFocus
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border)
}

// PanelFrame is the horizontal and vertical space a panel border takes.
const PanelFrame = 2
