package tui

import (
	"fmt"
	"strings"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/cli"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui/components"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderForecastTab(cw int) string {
	t := theme.Active
	renewals := a.analysis.RenewalTimeline

	values := make([]float64, len(renewals))
	labels := make([]string, len(renewals))
	for i, e := range renewals {
		values[i] = e.Amount
		labels[i] = e.Date.First().Format("Jan")
	}
	chart := components.ColumnChart(values, labels, t.Green, components.CardInnerWidth(cw), 8)

	var b strings.Builder
	b.WriteString(components.ContentCard(fmt.Sprintf("Renewal forecast, next %d months", len(renewals)), chart, cw))
	b.WriteString("\n")

	leftW := cw / 2
	rightW := cw - leftW
	if a.isCompactLayout() {
		leftW, rightW = cw, cw
	}
	table := components.ContentCard("By month", a.renderTimelineTable(renewals, leftW), leftW)
	created := components.ContentCard("Added per month", a.renderCreationTimeline(rightW), rightW)
	if a.isCompactLayout() {
		b.WriteString(table + "\n" + created)
	} else {
		b.WriteString(components.CardRow([]string{table, created}))
	}
	return b.String()
}

func (a App) renderTimelineTable(entries []model.TimelineEntry, w int) string {
	t := theme.Active
	cur := a.analyzer.Options().Currency
	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	total := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Bold(true)

	if len(entries) == 0 {
		return muted.Render("No renewals")
	}

	var b strings.Builder
	b.WriteString(header.Render(fmt.Sprintf("%-9s %8s %14s", "Month", "Renewals", "Amount")))
	count, amount := 0, 0.0
	for _, e := range entries {
		b.WriteString("\n")
		style := row
		if e.Count == 0 {
			style = muted
		}
		b.WriteString(style.Render(fmt.Sprintf("%-9s %8d %14s", e.Date, e.Count, cli.FormatCost(e.Amount, cur))))
		count += e.Count
		amount += e.Amount
	}
	b.WriteString("\n")
	b.WriteString(muted.Render(strings.Repeat("─", min(33, components.CardInnerWidth(w)))))
	b.WriteString("\n")
	b.WriteString(total.Render(fmt.Sprintf("%-9s %8d %14s", "Total", count, cli.FormatCost(amount, cur))))
	return b.String()
}

func (a App) renderCreationTimeline(w int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	entries := a.analysis.CreationTimeline
	if len(entries) == 0 {
		return muted.Render("No subscriptions added in this window")
	}

	peak := 0.0
	for _, e := range entries {
		peak = max(peak, float64(e.Count))
	}
	barW := max(components.CardInnerWidth(w)-14, 5)
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, components.HBar(e.Date.String(), fmt.Sprintf("%d", e.Count), float64(e.Count), peak, 8, barW, t.Blue))
	}
	return strings.Join(lines, "\n")
}
