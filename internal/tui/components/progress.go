package components

import (
	"fmt"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForShare picks a color by how much of the total a slice represents.
func ColorForShare(share float64) lipgloss.Color {
	t := theme.Active
	switch {
	case share >= 0.5:
		return t.Red
	case share >= 0.25:
		return t.Orange
	case share >= 0.1:
		return t.Yellow
	default:
		return t.Green
	}
}

// ShareBar renders "label ▕████░░░░▏ 42%" for a share of a total in [0,1].
func ShareBar(label string, share float64, labelW, barWidth int) string {
	t := theme.Active
	share = min(max(share, 0), 1)
	color := ColorForShare(share)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(label, labelW))) +
		space.Render(" ") +
		bar.ViewAs(share) +
		space.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", share*100))
}
