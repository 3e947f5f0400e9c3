package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	statusStyle   = lipgloss.NewStyle().Faint(true)

	panelStyle = lipgloss.NewStyle().
			PaddingRight(1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true)
)

// swatch renders a block of colour, marked when it is the selection. Strings
// lipgloss cannot parse render as an empty block.
func swatch(hex string, width int, marked bool) string {
	block := strings.Repeat(" ", width)
	if marked && width >= 2 {
		pad := strings.Repeat(" ", (width-2)/2)
		block = pad + "<>" + strings.Repeat(" ", width-2-len(pad))
	}
	if hex == "" {
		return mutedStyle.Render(block)
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render(block)
}
