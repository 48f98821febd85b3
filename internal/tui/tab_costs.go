package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/cli"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/pipeline"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui/components"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

const topCostCount = 10

func (a App) renderCostsTab(cw int) string {
	halfW := cw / 2
	otherW := cw - halfW
	if a.isCompactLayout() {
		halfW, otherW = cw, cw
	}

	cycles := components.ContentCard("By billing cycle", a.renderCycleTable(halfW), halfW)
	ranges := components.ContentCard("Price ranges", a.renderPriceRanges(otherW), otherW)
	currencies := components.ContentCard("By currency", a.renderCurrencyTable(halfW), halfW)
	top := components.ContentCard("Largest monthly costs", a.renderTopCosts(otherW), otherW)

	if a.isCompactLayout() {
		return strings.Join([]string{cycles, ranges, currencies, top}, "\n")
	}
	return components.CardRow([]string{cycles, ranges}) + "\n" + components.CardRow([]string{currencies, top})
}

func (a App) renderCycleTable(w int) string {
	t := theme.Active
	cur := a.analyzer.Options().Currency
	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	stats := a.analysis.SubscriptionAnalytics.CycleBreakdown
	if len(stats) == 0 {
		return muted.Render("No subscriptions")
	}

	labelW := max(components.CardInnerWidth(w)-32, 9)
	var b strings.Builder
	b.WriteString(header.Render(fmt.Sprintf("%-*s %5s %12s %12s", labelW, "Cycle", "Count", "Total", "Average")))
	for _, s := range stats {
		b.WriteString("\n")
		b.WriteString(row.Render(fmt.Sprintf("%-*s %5d %12s %12s", labelW, truncStr(s.Cycle, labelW), s.Count,
			cli.FormatCost(s.TotalAmount, cur), cli.FormatCost(s.AveragePrice, cur))))
	}
	return b.String()
}

func (a App) renderPriceRanges(w int) string {
	t := theme.Active
	pr := a.analysis.SubscriptionAnalytics.PriceRanges
	inner := components.CardInnerWidth(w)

	peak := 0.0
	for _, label := range model.PriceRangeLabels {
		peak = max(peak, float64(pr.Get(label)))
	}
	barW := max(inner-16, 5)

	lines := make([]string, 0, len(model.PriceRangeLabels))
	for _, label := range model.PriceRangeLabels {
		n := pr.Get(label)
		lines = append(lines, components.HBar(label, fmt.Sprintf("%d", n), float64(n), peak, 8, barW, t.Cyan))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderCurrencyTable(w int) string {
	t := theme.Active
	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	breakdown := a.analysis.PriceTrend.CurrencyBreakdown
	if len(breakdown) == 0 {
		return muted.Render("No costs")
	}
	codes := make([]string, 0, len(breakdown))
	for c := range breakdown {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	var b strings.Builder
	b.WriteString(header.Render(fmt.Sprintf("%-8s %14s %16s", "Currency", "Monthly", "Yearly")))
	for _, c := range codes {
		ct := breakdown[c]
		b.WriteString("\n")
		b.WriteString(row.Render(fmt.Sprintf("%-8s %14s %16s", c, cli.FormatMoney(ct.Monthly, c), cli.FormatMoney(ct.Yearly, c))))
	}
	if len(codes) > 1 {
		b.WriteString("\n")
		b.WriteString(muted.Render(truncStr("Totals elsewhere add these amounts as one currency.", components.CardInnerWidth(w))))
	}
	return b.String()
}

type monthlyCost struct {
	sub     model.Subscription
	monthly float64
}

// topMonthlyCosts ranks known-cycle subscriptions by monthly equivalent.
func topMonthlyCosts(subs []model.Subscription, n int) []monthlyCost {
	out := make([]monthlyCost, 0, len(subs))
	for _, s := range subs {
		if !s.Cycle.Known() {
			continue
		}
		out = append(out, monthlyCost{sub: s, monthly: pipeline.MonthlyEquivalent(s.Price, s.Cycle)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].monthly > out[j].monthly })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (a App) renderTopCosts(w int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	top := topMonthlyCosts(a.subs, topCostCount)
	total := a.analysis.SubscriptionAnalytics.TotalMonthlyCost
	if len(top) == 0 || total <= 0 {
		return muted.Render("No costs")
	}

	labelW := min(18, inner/3)
	barW := max(inner-labelW-6, 5)
	lines := make([]string, 0, len(top))
	for _, c := range top {
		label := fmt.Sprintf("%s %s", c.sub.Name, cli.FormatCost(c.monthly, c.sub.Currency))
		lines = append(lines, components.ShareBar(label, c.monthly/total, labelW, barW))
	}
	return strings.Join(lines, "\n")
}
