package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/cli"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a subscription (interactive without --name)",
	Args:  cobra.NoArgs,
	RunE:  runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a subscription",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a subscription",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

var renewCmd = &cobra.Command{
	Use:   "renew <id>",
	Short: "Advance a subscription's due date by one billing cycle",
	Args:  cobra.ExactArgs(1),
	RunE:  runRenew,
}

var (
	subName     string
	subPrice    float64
	subCurrency string
	subCycle    string
	subDue      string
	subNotes    string
	removeYes   bool
)

func init() {
	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringVar(&subName, "name", "", "Subscription name")
		c.Flags().Float64Var(&subPrice, "price", 0, "Price per billing cycle")
		c.Flags().StringVar(&subCurrency, "currency", "", "Currency code (e.g. USD)")
		c.Flags().StringVar(&subCycle, "cycle", "monthly", "Billing cycle: monthly, quarterly, yearly")
		c.Flags().StringVar(&subDue, "due", "", "Next due date (YYYY-MM-DD)")
		c.Flags().StringVar(&subNotes, "notes", "", "Free-form notes")
	}
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "Skip confirmation")

	rootCmd.AddCommand(addCmd, editCmd, removeCmd, renewCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	var (
		sub model.Subscription
		err error
	)
	if subName == "" {
		sub, err = promptSubscription(tui.SubscriptionValues{Currency: appCfg.General.DefaultCurrency})
	} else {
		currency := subCurrency
		if currency == "" {
			currency = appCfg.General.DefaultCurrency
		}
		sub, err = tui.SubscriptionValues{
			Name:     subName,
			Price:    strconv.FormatFloat(subPrice, 'f', -1, 64),
			Currency: currency,
			Cycle:    subCycle,
			NextDue:  subDue,
			Notes:    subNotes,
		}.Subscription()
	}
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	created, err := st.CreateSubscription(cmd.Context(), sub)
	if err != nil {
		return err
	}
	fmt.Printf("  Added #%d %s  %s %s, next due %s\n",
		created.ID, created.Name, cli.FormatMoney(created.Price, created.Currency),
		created.Cycle, created.NextDueDate)
	return nil
}

func promptSubscription(v tui.SubscriptionValues) (model.Subscription, error) {
	if err := tui.NewSubscriptionForm(&v).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return model.Subscription{}, errors.New("cancelled")
		}
		return model.Subscription{}, err
	}
	return v.Subscription()
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	patch, err := patchFromFlags(cmd)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if patch.Empty() {
		current, err := st.GetSubscription(cmd.Context(), id)
		if err != nil {
			return err
		}
		edited, err := promptSubscription(tui.SubscriptionValuesFrom(current))
		if err != nil {
			return err
		}
		patch = model.SubscriptionPatch{
			Name:        &edited.Name,
			Price:       &edited.Price,
			Currency:    &edited.Currency,
			Cycle:       &edited.Cycle,
			NextDueDate: &edited.NextDueDate,
			Notes:       &edited.Notes,
		}
	}

	updated, err := st.UpdateSubscription(cmd.Context(), id, patch)
	if err != nil {
		return err
	}
	fmt.Printf("  Updated #%d %s  %s %s, next due %s\n",
		updated.ID, updated.Name, cli.FormatMoney(updated.Price, updated.Currency),
		updated.Cycle, updated.NextDueDate)
	return nil
}

// patchFromFlags builds a patch from the flags the user actually set.
func patchFromFlags(cmd *cobra.Command) (model.SubscriptionPatch, error) {
	var p model.SubscriptionPatch
	flags := cmd.Flags()
	if flags.Changed("name") {
		name := strings.TrimSpace(subName)
		p.Name = &name
	}
	if flags.Changed("price") {
		p.Price = &subPrice
	}
	if flags.Changed("currency") {
		p.Currency = &subCurrency
	}
	if flags.Changed("cycle") {
		c := model.ParseCycle(subCycle)
		if !c.Known() {
			return p, fmt.Errorf("%w: unknown cycle %q", model.ErrInvalid, subCycle)
		}
		p.Cycle = &c
	}
	if flags.Changed("due") {
		d, err := model.ParseDate(subDue)
		if err != nil {
			return p, fmt.Errorf("%w: --due: %v", model.ErrInvalid, err)
		}
		p.NextDueDate = &d
	}
	if flags.Changed("notes") {
		p.Notes = &subNotes
	}
	return p, nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	sub, err := st.GetSubscription(cmd.Context(), id)
	if err != nil {
		return err
	}

	if !removeYes {
		confirmed := false
		if err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %s (#%d)?", sub.Name, sub.ID)).
			Value(&confirmed).
			Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("  Nothing deleted.")
			return nil
		}
	}

	if err := st.DeleteSubscription(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("  Deleted #%d %s\n", sub.ID, sub.Name)
	return nil
}

func runRenew(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	renewed, err := st.RenewSubscription(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Printf("  Renewed #%d %s, next due %s\n", renewed.ID, renewed.Name, renewed.NextDueDate)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid subscription id %q", s)
	}
	return id, nil
}
