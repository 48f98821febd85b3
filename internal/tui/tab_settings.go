package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/cli"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/config"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui/components"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldCurrency = iota
	settingsFieldWindow
	settingsFieldUpcoming
	settingsFieldTheme
	settingsFieldAutoRefresh
	settingsFieldReminders
	settingsFieldDaysBefore
	settingsFieldChatID
	settingsFieldCount // sentinel
)

type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 128
	ti.Width = 40
	return ti
}

func (a App) updateSettingsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
		return a, nil, true
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
		return a, nil, true
	case "enter":
		m, cmd := a.settingsStartEdit()
		return m, cmd, true
	case "w":
		return a, a.startSetupForm(), true
	}
	return a, nil, false
}

// settingsValue is the editable text form of a field.
func (a App) settingsValue(field int) string {
	cfg := a.cfg
	switch field {
	case settingsFieldCurrency:
		return cfg.General.DefaultCurrency
	case settingsFieldWindow:
		return strconv.Itoa(cfg.General.WindowMonths)
	case settingsFieldUpcoming:
		return strconv.Itoa(cfg.General.UpcomingDays)
	case settingsFieldTheme:
		return cfg.Appearance.Theme
	case settingsFieldAutoRefresh:
		return strconv.FormatBool(a.autoRefresh)
	case settingsFieldReminders:
		return strconv.FormatBool(cfg.Reminders.Enabled)
	case settingsFieldDaysBefore:
		parts := make([]string, len(cfg.Reminders.DaysBefore))
		for i, d := range cfg.Reminders.DaysBefore {
			parts[i] = strconv.Itoa(d)
		}
		return strings.Join(parts, ",")
	case settingsFieldChatID:
		return cfg.Telegram.ChatID
	}
	return ""
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldCurrency:
		ti.Placeholder = strings.Join(config.KnownCurrencies(), ", ")
	case settingsFieldWindow:
		ti.Placeholder = "12 (months)"
	case settingsFieldUpcoming:
		ti.Placeholder = "30 (days)"
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
	case settingsFieldAutoRefresh, settingsFieldReminders:
		ti.Placeholder = "true or false"
	case settingsFieldDaysBefore:
		ti.Placeholder = "7,3,1"
	case settingsFieldChatID:
		ti.Placeholder = "Telegram chat ID"
	}
	ti.SetValue(a.settingsValue(a.settings.cursor))
	ti.Focus()
	a.settings.input = ti
	return a, textinput.Blink
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		cmd := a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, cmd
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave applies the edited field. Currency and window changes reload
// the data so converted totals follow.
func (a *App) settingsSave() tea.Cmd {
	cfg := a.cfg
	cfg.Reminders.DaysBefore = append([]int(nil), a.cfg.Reminders.DaysBefore...)
	val := strings.TrimSpace(a.settings.input.Value())

	var err error
	switch a.settings.cursor {
	case settingsFieldCurrency:
		cfg.General.DefaultCurrency = config.NormalizeCurrency(val)
	case settingsFieldWindow:
		cfg.General.WindowMonths, err = strconv.Atoi(val)
	case settingsFieldUpcoming:
		cfg.General.UpcomingDays, err = strconv.Atoi(val)
	case settingsFieldTheme:
		if !theme.Known(val) {
			err = fmt.Errorf("unknown theme %q", val)
		}
		cfg.Appearance.Theme = val
	case settingsFieldAutoRefresh:
		var on bool
		if on, err = strconv.ParseBool(val); err == nil {
			a.autoRefresh = on
		}
		a.settings.saveErr = err
		return nil
	case settingsFieldReminders:
		cfg.Reminders.Enabled, err = strconv.ParseBool(val)
	case settingsFieldDaysBefore:
		cfg.Reminders.DaysBefore, err = parseDayList(val)
	case settingsFieldChatID:
		cfg.Telegram.ChatID = val
	}
	if err == nil {
		err = a.applyConfig(cfg)
	}
	a.settings.saveErr = err
	if err != nil {
		return nil
	}
	switch a.settings.cursor {
	case settingsFieldCurrency, settingsFieldWindow:
		a.refreshing = true
		return loadDataCmd(a.backend, a.opts.Now)
	}
	return nil
}

func parseDayList(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := parseNonNegative(part)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", strings.TrimSpace(part), err)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, errors.New("no days given")
	}
	return out, nil
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	labels := [settingsFieldCount]string{
		settingsFieldCurrency:    "Currency",
		settingsFieldWindow:      "Window (months)",
		settingsFieldUpcoming:    "Upcoming (days)",
		settingsFieldTheme:       "Theme",
		settingsFieldAutoRefresh: "Auto Refresh",
		settingsFieldReminders:   "Reminders",
		settingsFieldDaysBefore:  "Remind Days",
		settingsFieldChatID:      "Telegram Chat",
	}

	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, label := range labels {
		value := a.settingsValue(i)
		if value == "" {
			value = "(not set)"
		}

		if a.settings.editing && i == a.settings.cursor {
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", label)))
			form.WriteString(a.settings.input.View())
			form.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			line := markerStyle.Render("▸ ") +
				selectedLabelStyle.Render(fmt.Sprintf("%-18s ", label+":")) +
				selectedStyle.Render(value)
			form.WriteString(line)
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			form.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", label+":")))
			form.WriteString(valueStyle.Render(value))
		}
		form.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		form.WriteString("\n")
		form.WriteString(lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).
			Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		form.WriteString("\n")
		form.WriteString(greenStyle.Render("Saved!"))
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel  [w] setup wizard"))

	token := "(not set)"
	if config.TelegramToken(a.cfg) != "" {
		token = "configured"
	}
	ratesSource := "-"
	if a.converted != nil {
		ratesSource = string(a.converted.Source)
	}

	var info strings.Builder
	info.WriteString(labelStyle.Render("Database:        ") + valueStyle.Render(a.cfg.DBPath()) + "\n")
	info.WriteString(labelStyle.Render("Config file:     ") + valueStyle.Render(config.ConfigPath()) + "\n")
	info.WriteString(labelStyle.Render("Subscriptions:   ") + valueStyle.Render(cli.FormatNumber(int64(len(a.subs)))) + "\n")
	info.WriteString(labelStyle.Render("Load time:       ") + valueStyle.Render(a.loadTime.String()) + "\n")
	info.WriteString(labelStyle.Render("Telegram token:  ") + valueStyle.Render(token) + "\n")
	info.WriteString(labelStyle.Render("Exchange rates:  ") + valueStyle.Render(ratesSource))

	return components.ContentCard("Settings", form.String(), cw) + "\n" +
		components.ContentCard("General", info.String(), cw)
}
