package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/cli"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/fx"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Full analysis: costs, spending history and renewal forecast",
	RunE:  runReport,
}

var (
	reportJSON    bool
	reportConvert string
)

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Output the full analysis as JSON")
	reportCmd.Flags().StringVar(&reportConvert, "convert", "", "Also convert totals into this currency using exchange rates")
	rootCmd.AddCommand(reportCmd)
}

// reportOutput is the JSON document printed by `report --json`.
type reportOutput struct {
	model.TrendAnalysis
	Converted *fx.ConvertedTotals `json:"converted,omitempty"`
}

func runReport(cmd *cobra.Command, _ []string) error {
	result, err := loadData(cmd.Context())
	if err != nil {
		return err
	}

	a := newAnalyzer()
	analysis := a.ComprehensiveAnalysis(result.Subscriptions)

	var converted *fx.ConvertedTotals
	if reportConvert != "" {
		c := newFXClient().ConvertTotals(cmd.Context(), analysis.PriceTrend.CurrencyBreakdown, reportConvert)
		converted = &c
	}

	if reportJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reportOutput{TrendAnalysis: analysis, Converted: converted})
	}

	if len(result.Subscriptions) == 0 {
		fmt.Println("\n  No subscriptions found.")
		return nil
	}

	cur := reportCurrency()
	stats := analysis.SubscriptionAnalytics

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SUBSCRIPTION REPORT  %s", a.Today())))
	fmt.Println()

	fmt.Print(cli.RenderKV("Overview", [][2]string{
		{"Subscriptions", cli.FormatNumber(int64(stats.TotalSubscriptions))},
		{"Monthly", cli.RenderMoney(cli.FormatMoney(stats.TotalMonthlyCost, cur))},
		{"Yearly", cli.RenderMoney(cli.FormatMoney(stats.TotalYearlyCost, cur))},
		{"Upcoming", cli.FormatCount(len(stats.UpcomingRenewals), "renewal", "renewals")},
	}))
	fmt.Println()

	cycles := make([][2]string, 0, len(stats.CycleBreakdown))
	for _, c := range stats.CycleBreakdown {
		cycles = append(cycles, [2]string{c.Cycle, fmt.Sprintf("%d  (%s)", c.Count, cli.FormatMoney(c.TotalAmount, cur))})
	}
	fmt.Print(cli.RenderKV("Billing cycles", cycles))
	fmt.Println()

	spend := make([]float64, 0, len(analysis.PriceTrend.MonthlySpending))
	for _, m := range analysis.PriceTrend.MonthlySpending {
		spend = append(spend, m.TotalAmount)
	}
	renew := make([]float64, 0, len(analysis.RenewalTimeline))
	for _, e := range analysis.RenewalTimeline {
		renew = append(renew, e.Amount)
	}
	fmt.Print(cli.RenderKV("Trends", [][2]string{
		{"Spend history", cli.RenderSparkline(spend)},
		{"Renewals ahead", cli.RenderSparkline(renew)},
		{"Added (months)", fmt.Sprintf("%d", len(analysis.CreationTimeline))},
	}))

	if converted != nil {
		fmt.Println()
		fmt.Print(renderConverted(*converted))
	}

	if len(analysis.Diagnostics) > 0 {
		fmt.Println()
		for _, d := range analysis.Diagnostics {
			fmt.Printf("  %s %q (id %d) has unknown cycle %q\n", cli.RenderMuted("warning:"), d.Name, d.SubscriptionID, d.Cycle)
		}
	}
	fmt.Println()

	return nil
}

func renderConverted(c fx.ConvertedTotals) string {
	codes := make([]string, 0, len(c.Breakdown))
	for code := range c.Breakdown {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	pairs := [][2]string{
		{"Monthly", cli.RenderMoney(cli.FormatMoney(c.Monthly, c.Currency))},
		{"Yearly", cli.RenderMoney(cli.FormatMoney(c.Yearly, c.Currency))},
		{"Rates", string(c.Source)},
		{"From", strings.Join(codes, ", ")},
	}
	if len(c.Unconverted) > 0 {
		pairs = append(pairs, [2]string{"No rate", strings.Join(c.Unconverted, ", ") + " (added at face value)"})
	}
	return cli.RenderKV("Converted to "+c.Currency, pairs)
}
