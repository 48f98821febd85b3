package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/cli"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/pipeline"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List subscriptions",
	RunE:    runList,
}

var (
	listName     string
	listCurrency string
	listCycle    string
	listSort     string
	listJSON     bool
)

func init() {
	listCmd.Flags().StringVar(&listName, "name", "", "Filter by name (substring match)")
	listCmd.Flags().StringVar(&listCurrency, "currency", "", "Filter by currency code")
	listCmd.Flags().StringVar(&listCycle, "cycle", "", "Filter by billing cycle")
	listCmd.Flags().StringVar(&listSort, "sort", "due", "Sort by: due, name, price, monthly")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	result, err := loadData(cmd.Context())
	if err != nil {
		return err
	}

	subs := pipeline.FilterByName(result.Subscriptions, listName)
	subs = pipeline.FilterByCurrency(subs, listCurrency)
	if listCycle != "" {
		subs = pipeline.FilterByCycle(subs, model.ParseCycle(listCycle))
	}
	if err := sortSubscriptions(subs, listSort); err != nil {
		return err
	}

	if listJSON {
		if subs == nil {
			subs = []model.Subscription{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(subs)
	}

	if len(subs) == 0 {
		fmt.Println("\n  No matching subscriptions.")
		return nil
	}

	today := newAnalyzer().Today()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SUBSCRIPTIONS  (%d)", len(subs))))
	fmt.Println()

	rows := make([][]string, 0, len(subs))
	for _, s := range subs {
		days := today.DaysUntil(s.NextDueDate)
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.ID),
			truncate(s.Name, 24),
			cli.FormatMoney(s.Price, s.Currency),
			s.CycleLabel(),
			cli.FormatMoney(pipeline.MonthlyEquivalent(s.Price, s.Cycle), s.Currency),
			cli.RenderDue(s.NextDueDate.String(), days, 7),
			truncate(s.Notes, 20),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   []string{"ID", "Name", "Price", "Cycle", "Monthly", "Next Due", "Notes"},
		Rows:      rows,
		LeftAlign: []int{1, 3, 5, 6},
	}))

	return nil
}

func sortSubscriptions(subs []model.Subscription, by string) error {
	var less func(a, b model.Subscription) bool
	switch by {
	case "due", "":
		less = func(a, b model.Subscription) bool { return a.NextDueDate.Before(b.NextDueDate.Time) }
	case "name":
		less = func(a, b model.Subscription) bool { return a.Name < b.Name }
	case "price":
		less = func(a, b model.Subscription) bool { return a.Price > b.Price }
	case "monthly":
		less = func(a, b model.Subscription) bool {
			return pipeline.MonthlyEquivalent(a.Price, a.Cycle) > pipeline.MonthlyEquivalent(b.Price, b.Cycle)
		}
	default:
		return fmt.Errorf("unknown sort key %q (want due, name, price or monthly)", by)
	}
	sort.SliceStable(subs, func(i, j int) bool { return less(subs[i], subs[j]) })
	return nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
