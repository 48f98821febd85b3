package cmd

import (
	"fmt"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/cli"

	"github.com/spf13/cobra"
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Monthly spending over the trailing window",
	RunE:  runTrend,
}

func init() {
	rootCmd.AddCommand(trendCmd)
}

func runTrend(cmd *cobra.Command, _ []string) error {
	result, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	if len(result.Subscriptions) == 0 {
		fmt.Println("\n  No subscriptions found.")
		return nil
	}

	a := newAnalyzer()
	trend := a.PriceTrend(result.Subscriptions)
	cur := reportCurrency()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MONTHLY SPENDING  Last %d months", a.Options().Window)))
	fmt.Println()

	rows := make([][]string, 0, len(trend.MonthlySpending))
	values := make([]float64, 0, len(trend.MonthlySpending))
	var prev float64
	for i, m := range trend.MonthlySpending {
		delta := ""
		if i > 0 && m.TotalAmount != prev {
			delta = cli.FormatDelta(m.TotalAmount, prev, cur)
		}
		rows = append(rows, []string{
			m.Month.String(),
			cli.FormatNumber(int64(m.SubscriptionCount)),
			cli.FormatMoney(m.TotalAmount, cur),
			delta,
		})
		values = append(values, m.TotalAmount)
		prev = m.TotalAmount
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Active", "Spend", "Change"},
		Rows:    rows,
	}))

	fmt.Printf("  Trend  %s\n", cli.RenderSparkline(values))
	fmt.Printf("  Now    %s/month, %s/year\n\n",
		cli.RenderMoney(cli.FormatMoney(trend.TotalMonthly, cur)),
		cli.RenderMoney(cli.FormatMoney(trend.TotalYearly, cur)))

	return nil
}
