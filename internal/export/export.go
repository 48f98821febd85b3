// Package export renders subscription reports as Markdown, CSV or Excel
// workbooks for use outside the terminal.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/pipeline"
)

// Format is a tabular export format.
type Format string

// Supported tabular formats.
const (
	FormatMarkdown Format = "md"
	FormatCSV      Format = "csv"
	FormatXLSX     Format = "xlsx"
)

// ParseFormat accepts "md", "markdown", "csv" and "xlsx".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Report is everything an export contains.
type Report struct {
	GeneratedAt   time.Time
	Currency      string
	Subscriptions []model.Subscription
	Analysis      model.TrendAnalysis
}

// section is one titled table shared by the text and workbook writers.
type section struct {
	title  string
	header table.Row
	rows   []table.Row
	right  []int // 1-based columns to right-align
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (r Report) sections() []section {
	subs := section{
		title:  "Subscriptions",
		header: table.Row{"Name", "Price", "Currency", "Cycle", "Monthly", "Next Due", "Notes"},
		right:  []int{2, 5},
	}
	for _, s := range r.Subscriptions {
		subs.rows = append(subs.rows, table.Row{
			s.Name, money(s.Price), s.Currency, s.CycleLabel(),
			money(pipeline.MonthlyEquivalent(s.Price, s.Cycle)),
			s.NextDueDate.String(), s.Notes,
		})
	}

	cycles := section{
		title:  "Billing Cycles",
		header: table.Row{"Cycle", "Count", "Total", "Average"},
		right:  []int{2, 3, 4},
	}
	for _, c := range r.Analysis.SubscriptionAnalytics.CycleBreakdown {
		cycles.rows = append(cycles.rows, table.Row{c.Cycle, c.Count, money(c.TotalAmount), money(c.AveragePrice)})
	}

	ranges := section{
		title:  "Price Ranges",
		header: table.Row{"Range", "Count"},
		right:  []int{2},
	}
	for _, label := range model.PriceRangeLabels {
		ranges.rows = append(ranges.rows, table.Row{label, r.Analysis.SubscriptionAnalytics.PriceRanges.Get(label)})
	}

	spending := section{
		title:  "Monthly Spending",
		header: table.Row{"Month", "Amount", "Currency", "Subscriptions"},
		right:  []int{2, 4},
	}
	for _, m := range r.Analysis.PriceTrend.MonthlySpending {
		spending.rows = append(spending.rows, table.Row{m.Month.String(), money(m.TotalAmount), m.Currency, m.SubscriptionCount})
	}

	renewals := section{
		title:  "Renewal Forecast",
		header: table.Row{"Month", "Renewals", "Amount"},
		right:  []int{2, 3},
	}
	for _, e := range r.Analysis.RenewalTimeline {
		renewals.rows = append(renewals.rows, table.Row{e.Date.String(), e.Count, money(e.Amount)})
	}

	return []section{subs, cycles, ranges, spending, renewals}
}

func (s section) writer() table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(s.header)
	tw.AppendRows(s.rows)
	configs := make([]table.ColumnConfig, 0, len(s.right))
	for _, col := range s.right {
		configs = append(configs, table.ColumnConfig{Number: col, Align: text.AlignRight})
	}
	tw.SetColumnConfigs(configs)
	return tw
}

// WriteText writes every report section to w as Markdown or CSV.
func WriteText(w io.Writer, format Format, r Report) error {
	if format != FormatMarkdown && format != FormatCSV {
		return fmt.Errorf("format %q is not a text format", format)
	}

	if format == FormatMarkdown {
		if _, err := fmt.Fprintf(w, "# Subscription Report\n\nGenerated %s. Amounts in %s unless noted.\n\n",
			r.GeneratedAt.Format("2006-01-02 15:04"), r.Currency); err != nil {
			return err
		}
	}

	for i, s := range r.sections() {
		tw := s.writer()
		var err error
		switch format {
		case FormatMarkdown:
			_, err = fmt.Fprintf(w, "## %s\n\n%s\n\n", s.title, tw.RenderMarkdown())
		case FormatCSV:
			if i > 0 {
				if _, err = io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintf(w, "# %s\n%s\n", s.title, tw.RenderCSV())
		}
		if err != nil {
			return err
		}
	}
	return nil
}
