package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)

	// One badge style per layer so precedence outcomes are readable at a
	// glance: cool colors for low precedence, warm for high.
	layerStyles = map[string]lipgloss.Style{
		"app":    lipgloss.NewStyle().Foreground(lipgloss.Color("30")),
		"host":   lipgloss.NewStyle().Foreground(lipgloss.Color("36")),
		"user":   lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
		"dotenv": lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
		"env":    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
	unknownLayerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// layerBadge renders a fixed-width, color-coded layer tag.
func layerBadge(layer string) string {
	label := layer
	if label == "" {
		label = "?"
	}
	for len(label) < 6 {
		label += " "
	}
	style, ok := layerStyles[layer]
	if !ok {
		style = unknownLayerStyle
	}
	return style.Render("[" + label + "]")
}
