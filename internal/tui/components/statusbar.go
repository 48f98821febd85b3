package components

import (
	"strings"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar. flash, when set, replaces
// the key hints on the left.
func RenderStatusBar(width int, dataAge string, refreshing, autoRefresh bool, flash string) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.SurfaceBright)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)

	left := base.Render(" [?]help  [r]efresh  [q]uit")
	if flash != "" {
		left = accent.Render(" " + flash)
	}

	var right []string
	if refreshing {
		right = append(right, accent.Render("refreshing…"))
	}
	if autoRefresh {
		right = append(right, base.Render("auto"))
	}
	if dataAge != "" {
		right = append(right, base.Render("data "+dataAge))
	}
	r := strings.Join(right, base.Render("  ")) + base.Render(" ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(r), 1)
	return left + base.Render(strings.Repeat(" ", gap)) + r
}
