package cmd

import (
	"fmt"
	"sort"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/cli"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/pipeline"

	"github.com/spf13/cobra"
)

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Cost breakdown by billing cycle, price range and currency",
	RunE:  runCosts,
}

func init() {
	rootCmd.AddCommand(costsCmd)
}

func runCosts(cmd *cobra.Command, _ []string) error {
	result, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	if len(result.Subscriptions) == 0 {
		fmt.Println("\n  No subscriptions found.")
		return nil
	}

	a := newAnalyzer()
	stats := a.SubscriptionAnalytics(result.Subscriptions)
	trend := a.PriceTrend(result.Subscriptions)
	cur := reportCurrency()

	fmt.Println()
	fmt.Println(cli.RenderTitle("COST BREAKDOWN"))
	fmt.Println()

	// By billing cycle
	cycleRows := make([][]string, 0, len(stats.CycleBreakdown)+2)
	total := 0
	for _, c := range stats.CycleBreakdown {
		total += c.Count
		cycleRows = append(cycleRows, []string{
			c.Cycle,
			cli.FormatNumber(int64(c.Count)),
			cli.FormatMoney(c.TotalAmount, cur),
			cli.FormatMoney(c.AveragePrice, cur),
			cli.FormatPercent(monthlyShare(c, stats.TotalMonthlyCost)),
		})
	}
	cycleRows = append(cycleRows, []string{"---"})
	cycleRows = append(cycleRows, []string{"TOTAL", cli.FormatNumber(int64(total)), "", "", ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By Billing Cycle",
		Headers: []string{"Cycle", "Count", "Charged", "Average", "Of Monthly"},
		Rows:    cycleRows,
	}))
	fmt.Println()

	// Price ranges
	fmt.Printf("  %s\n", "By Price Range")
	maxCount := 0
	for _, label := range model.PriceRangeLabels {
		maxCount = max(maxCount, stats.PriceRanges.Get(label))
	}
	for _, label := range model.PriceRangeLabels {
		n := stats.PriceRanges.Get(label)
		fmt.Printf("%s %s\n",
			cli.RenderHorizontalBar(label, float64(n), float64(maxCount), 8, 30),
			cli.FormatNumber(int64(n)))
	}
	fmt.Println()

	// By currency
	codes := make([]string, 0, len(trend.CurrencyBreakdown))
	for code := range trend.CurrencyBreakdown {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	curRows := make([][]string, 0, len(codes))
	for _, code := range codes {
		t := trend.CurrencyBreakdown[code]
		n := len(pipeline.FilterByCurrency(result.Subscriptions, code))
		curRows = append(curRows, []string{
			code,
			cli.FormatNumber(int64(n)),
			cli.FormatMoney(t.Monthly, code),
			cli.FormatMoney(t.Yearly, code),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By Currency",
		Headers: []string{"Currency", "Count", "Monthly", "Yearly"},
		Rows:    curRows,
	}))

	fmt.Printf("  Total: %s/month, %s/year\n\n",
		cli.RenderMoney(cli.FormatMoney(stats.TotalMonthlyCost, cur)),
		cli.RenderMoney(cli.FormatMoney(stats.TotalYearlyCost, cur)))

	return nil
}

// monthlyShare is the fraction of the monthly total a cycle group accounts
// for. Unknown cycles contribute nothing.
func monthlyShare(c model.CycleStat, totalMonthly float64) float64 {
	if totalMonthly <= 0 {
		return 0
	}
	return pipeline.MonthlyEquivalent(c.TotalAmount, model.ParseCycle(c.Cycle)) / totalMonthly
}
