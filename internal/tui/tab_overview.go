package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/cli"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui/components"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab indexes, matching components.Tabs.
const (
	tabOverview = iota
	tabCosts
	tabSubscriptions
	tabForecast
	tabSettings
)

const overviewRenewals = 8

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	sa := a.analysis.SubscriptionAnalytics
	pt := a.analysis.PriceTrend
	opts := a.analyzer.Options()
	cur := opts.Currency

	var b strings.Builder

	yearlyDelta := ""
	if n := len(pt.MonthlySpending); n >= 2 {
		yearlyDelta = cli.FormatDelta(pt.MonthlySpending[n-1].TotalAmount, pt.MonthlySpending[n-2].TotalAmount, cur) + " vs last month"
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Subscriptions", Value: fmt.Sprintf("%d", sa.TotalSubscriptions), Delta: fmt.Sprintf("%d active", sa.ActiveSubscriptions)},
		{Label: "Monthly", Value: cli.FormatMoney(sa.TotalMonthlyCost, cur), Delta: yearlyDelta},
		{Label: "Yearly", Value: cli.FormatMoney(sa.TotalYearlyCost, cur)},
		{Label: fmt.Sprintf("Due in %dd", opts.UpcomingDays), Value: fmt.Sprintf("%d", len(sa.UpcomingRenewals)), Delta: upcomingTotal(a)},
	}, cw))
	b.WriteString("\n")

	leftW := cw / 2
	rightW := cw - leftW
	if a.isCompactLayout() {
		leftW, rightW = cw, cw
	}

	values := make([]float64, len(pt.MonthlySpending))
	labels := make([]string, len(pt.MonthlySpending))
	for i, m := range pt.MonthlySpending {
		values[i] = m.TotalAmount
		labels[i] = m.Month.First().Format("Jan")
	}
	chart := components.ColumnChart(values, labels, t.Accent, components.CardInnerWidth(leftW), 8)
	spendCard := components.ContentCard(fmt.Sprintf("Monthly spend, last %d months", len(values)), chart, leftW)
	renewCard := components.ContentCard("Next renewals", a.renderNextRenewals(rightW), rightW)

	if a.isCompactLayout() {
		b.WriteString(spendCard + "\n" + renewCard)
	} else {
		b.WriteString(components.CardRow([]string{spendCard, renewCard}))
	}

	if len(pt.CurrencyBreakdown) > 0 && a.opts.FX != nil {
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Converted totals", a.renderConverted(), cw))
	}

	if len(a.diagnostics) > 0 {
		warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		var d strings.Builder
		for i, diag := range a.diagnostics {
			if i > 0 {
				d.WriteString("\n")
			}
			d.WriteString(warn.Render(fmt.Sprintf("%s: unknown billing cycle %q, excluded from costs", diag.Name, diag.Cycle)))
		}
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Warnings", d.String(), cw))
	}
	return b.String()
}

// upcomingTotal sums the due amounts of upcoming renewals per currency.
func upcomingTotal(a App) string {
	sums := map[string]float64{}
	for _, s := range a.analysis.SubscriptionAnalytics.UpcomingRenewals {
		sums[s.Currency] += s.Price
	}
	codes := make([]string, 0, len(sums))
	for c := range sums {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	parts := make([]string, 0, len(codes))
	for _, c := range codes {
		parts = append(parts, cli.FormatMoney(sums[c], c))
	}
	return strings.Join(parts, " + ")
}

func (a App) renderNextRenewals(w int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)
	today := a.analyzer.Today()
	soon := a.analyzer.Options().UpcomingDays
	upcoming := sortedByDue(a.analysis.SubscriptionAnalytics.UpcomingRenewals)

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	if len(upcoming) == 0 {
		return muted.Render(fmt.Sprintf("Nothing due in the next %d days", soon))
	}

	nameW := max(inner-26, 8)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	var b strings.Builder
	for i, s := range upcoming {
		if i == overviewRenewals {
			b.WriteString(muted.Render(fmt.Sprintf("… and %d more", len(upcoming)-overviewRenewals)))
			break
		}
		days := today.DaysUntil(s.NextDueDate)
		due := lipgloss.NewStyle().Foreground(theme.DueColor(days, soon)).Background(t.Surface)
		b.WriteString(row.Render(fmt.Sprintf("%-*s %12s ", nameW, truncStr(s.Name, nameW), cli.FormatMoney(s.Price, s.Currency))))
		b.WriteString(due.Render(fmt.Sprintf("%11s", cli.FormatDue(days))))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a App) renderConverted() string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	if a.converted == nil {
		if a.converting {
			return muted.Render("Fetching exchange rates...")
		}
		return muted.Render("All subscriptions are billed in " + a.analyzer.Options().Currency)
	}
	c := a.converted
	out := muted.Render("Monthly ") + value.Render(cli.FormatMoney(c.Monthly, c.Currency)) +
		muted.Render("   Yearly ") + value.Render(cli.FormatMoney(c.Yearly, c.Currency)) +
		muted.Render(fmt.Sprintf("   rates: %s", c.Source))
	if len(c.Unconverted) > 0 {
		out += "\n" + warn.Render("No rate for "+strings.Join(c.Unconverted, ", ")+"; added at face value")
	}
	return out
}
