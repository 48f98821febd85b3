package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/config"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues backs the first-run setup form.
type SetupValues struct {
	Currency         string
	WindowMonths     int
	UpcomingDays     string
	RemindersEnabled bool
	TelegramToken    string
	TelegramChatID   string
	Theme            string
}

var windowOptions = []int{3, 6, 12, 24}

// SetupValuesFrom seeds the form with cfg's current settings.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		Currency:         cfg.General.DefaultCurrency,
		WindowMonths:     cfg.General.WindowMonths,
		UpcomingDays:     strconv.Itoa(cfg.General.UpcomingDays),
		RemindersEnabled: cfg.Reminders.Enabled,
		TelegramToken:    cfg.Telegram.BotToken,
		TelegramChatID:   cfg.Telegram.ChatID,
		Theme:            cfg.Appearance.Theme,
	}
}

// Apply copies the form values into cfg and validates the result.
func (v SetupValues) Apply(cfg *config.Config) error {
	days, err := parseNonNegative(v.UpcomingDays)
	if err != nil {
		return fmt.Errorf("upcoming days: %w", err)
	}
	cfg.General.DefaultCurrency = config.NormalizeCurrency(v.Currency)
	cfg.General.WindowMonths = v.WindowMonths
	cfg.General.UpcomingDays = days
	cfg.Reminders.Enabled = v.RemindersEnabled
	cfg.Telegram.BotToken = strings.TrimSpace(v.TelegramToken)
	cfg.Telegram.ChatID = strings.TrimSpace(v.TelegramChatID)
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
	return cfg.Validate()
}

// NewSetupForm builds the setup wizard bound to v.
func NewSetupForm(v *SetupValues) *huh.Form {
	currencies := huh.NewOptions(config.KnownCurrencies()...)

	windows := make([]huh.Option[int], 0, len(windowOptions))
	for _, m := range windowOptions {
		windows = append(windows, huh.NewOption(fmt.Sprintf("%d months", m), m))
	}

	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themes = append(themes, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default currency").
				Description("Label used for totals and the target for conversions.").
				Options(currencies...).
				Value(&v.Currency),
			huh.NewSelect[int]().
				Title("Report window").
				Description("Months of spending history and renewal forecast.").
				Options(windows...).
				Value(&v.WindowMonths),
			huh.NewInput().
				Title("Upcoming renewals look-ahead (days)").
				Value(&v.UpcomingDays).
				Validate(func(s string) error {
					_, err := parseNonNegative(s)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Send renewal reminders?").
				Value(&v.RemindersEnabled),
			huh.NewInput().
				Title("Telegram bot token").
				Description("Leave blank to skip.").
				EchoMode(huh.EchoModePassword).
				Value(&v.TelegramToken),
			huh.NewInput().
				Title("Telegram chat ID").
				Value(&v.TelegramChatID),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&v.Theme),
		),
	).WithTheme(huh.ThemeCharm())
}

// SubscriptionValues backs the add/edit subscription form. Numeric and date
// fields are kept as text so the form can validate them as typed.
type SubscriptionValues struct {
	Name     string
	Price    string
	Currency string
	Cycle    string
	NextDue  string
	Notes    string
}

// SubscriptionValuesFrom seeds the form from an existing subscription.
func SubscriptionValuesFrom(s model.Subscription) SubscriptionValues {
	return SubscriptionValues{
		Name:     s.Name,
		Price:    strconv.FormatFloat(s.Price, 'f', -1, 64),
		Currency: s.Currency,
		Cycle:    s.CycleLabel(),
		NextDue:  s.NextDueDate.String(),
		Notes:    s.Notes,
	}
}

// Subscription converts the form values into a validated subscription.
func (v SubscriptionValues) Subscription() (model.Subscription, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(v.Price), 64)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("%w: price %q is not a number", model.ErrInvalid, v.Price)
	}
	due, err := model.ParseDate(strings.TrimSpace(v.NextDue))
	if err != nil {
		return model.Subscription{}, fmt.Errorf("%w: next due date: %v", model.ErrInvalid, err)
	}
	currency := strings.ToUpper(strings.TrimSpace(v.Currency))
	if currency == "" {
		currency = model.DefaultCurrency
	}
	s := model.Subscription{
		Name:        strings.TrimSpace(v.Name),
		Price:       price,
		Currency:    currency,
		Cycle:       model.ParseCycle(v.Cycle),
		RawCycle:    v.Cycle,
		NextDueDate: due,
		Notes:       strings.TrimSpace(v.Notes),
	}
	if err := s.Validate(); err != nil {
		return model.Subscription{}, err
	}
	return s, nil
}

// NewSubscriptionForm builds the add/edit form bound to v.
func NewSubscriptionForm(v *SubscriptionValues) *huh.Form {
	if v.Cycle == "" {
		v.Cycle = model.CycleMonthly.String()
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&v.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Price").
				Value(&v.Price).
				Validate(func(s string) error {
					p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || p < 0 {
						return errors.New("enter a non-negative number")
					}
					return nil
				}),
			huh.NewInput().
				Title("Currency").
				Placeholder(model.DefaultCurrency).
				Value(&v.Currency),
			huh.NewSelect[string]().
				Title("Billing cycle").
				Options(huh.NewOptions(
					model.CycleMonthly.String(),
					model.CycleQuarterly.String(),
					model.CycleYearly.String(),
				)...).
				Value(&v.Cycle),
			huh.NewInput().
				Title("Next due date").
				Placeholder(model.DateLayout).
				Value(&v.NextDue).
				Validate(func(s string) error {
					_, err := model.ParseDate(strings.TrimSpace(s))
					return err
				}),
			huh.NewText().
				Title("Notes").
				Value(&v.Notes),
		),
	).WithTheme(huh.ThemeCharm())
}

func parseNonNegative(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New("enter a whole number")
	}
	if n < 0 {
		return 0, errors.New("must not be negative")
	}
	return n, nil
}
