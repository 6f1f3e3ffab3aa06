package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/pdm/internal/listing"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedText  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	errorText  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
	labelText  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
)

// Banner returns the status banner style; failures render red, successes green.
func Banner(isErr bool) lipgloss.Style {
	color := lipgloss.AdaptiveColor{Light: "2", Dark: "10"}
	if isErr {
		color = lipgloss.AdaptiveColor{Light: "1", Dark: "9"}
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Foreground(color).
		Padding(0, 1)
}

// TableStyles returns the listing styles used in the dashboard.
func TableStyles() listing.Styles {
	return listing.DefaultStyles()
}
