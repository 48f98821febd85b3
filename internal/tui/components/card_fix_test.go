package components

import (
	"strings"
	"testing"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))
	require.Less(t, shortLines, tallLines)

	lines := strings.Split(CardRow([]string{shortCard, tallCard}), "\n")
	require.Len(t, lines, tallLines)

	for i := shortLines; i < len(lines); i++ {
		assert.Contains(t, lines[i], "\x1b[", "padding line %d is unstyled", i)
	}
}

func TestCardRowWidthConsistency(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "A", 30)
	tallCard := ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20)

	lines := strings.Split(CardRow([]string{tallCard, shortCard}), "\n")
	require.Len(t, lines, len(strings.Split(tallCard, "\n")))

	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		assert.Equal(t, want, lipgloss.Width(line), "line %d", i)
	}
}

func TestCardRowSkipsEmpty(t *testing.T) {
	assert.Equal(t, "", CardRow([]string{"", ""}))
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	widths := LayoutRow(83, 4)
	assert.Equal(t, []int{21, 21, 21, 20}, widths)
	assert.Nil(t, LayoutRow(10, 0))
}

func TestTabVisualWidthMatchesRender(t *testing.T) {
	theme.SetActive("flexoki-dark")
	for active := range Tabs {
		total := 0
		for i := range Tabs {
			total += TabVisualWidth(i, active)
		}
		total += len(Tabs) - 1
		assert.Equal(t, total, lipgloss.Width(RenderTabBar(active, 0)), "active=%d", active)
	}
}

func TestTabIdxByKey(t *testing.T) {
	assert.Equal(t, 2, TabIdxByKey('s'))
	assert.Equal(t, 4, TabIdxByKey('x'))
	assert.Equal(t, -1, TabIdxByKey('z'))
}

func TestNiceCeiling(t *testing.T) {
	assert.InDelta(t, 1.0, niceCeiling(0), 1e-9)
	assert.InDelta(t, 200.0, niceCeiling(130), 1e-9)
	assert.InDelta(t, 500.0, niceCeiling(420), 1e-9)
	assert.InDelta(t, 1000.0, niceCeiling(1000), 1e-9)
}

func TestStatusBarFillsWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")
	bar := RenderStatusBar(80, "2m ago", false, true, "")
	assert.Equal(t, 80, lipgloss.Width(bar))
	assert.Contains(t, RenderStatusBar(80, "", false, false, "Saved"), "Saved")
}
