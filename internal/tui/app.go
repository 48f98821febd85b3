// Package tui provides the interactive Bubble Tea dashboard for subs.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/config"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/fx"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/pipeline"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui/components"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Backend is the subscription storage the dashboard reads and edits.
// *store.Store satisfies it.
type Backend interface {
	pipeline.SnapshotSource
	CreateSubscription(ctx context.Context, sub model.Subscription) (model.Subscription, error)
	UpdateSubscription(ctx context.Context, id int64, patch model.SubscriptionPatch) (model.Subscription, error)
	DeleteSubscription(ctx context.Context, id int64) error
	RenewSubscription(ctx context.Context, id int64) (model.Subscription, error)
}

// Options configures a dashboard.
type Options struct {
	Config          config.Config
	Analysis        pipeline.Options
	FX              *fx.Client // nil disables currency conversion
	Now             func() time.Time
	NeedSetup       bool
	SaveConfig      func(config.Config) error
	RefreshInterval time.Duration
}

// DataLoadedMsg is sent when a snapshot load finishes.
type DataLoadedMsg struct {
	Result   *pipeline.LoadResult
	Err      error
	LoadTime time.Duration
}

// ConvertedMsg carries cross-currency totals.
type ConvertedMsg struct {
	Totals fx.ConvertedTotals
}

type mutationMsg struct {
	verb string
	sub  model.Subscription
	err  error
}

type tickMsg struct{}

type formKind int

const (
	formNone formKind = iota
	formSetup
	formAdd
	formEdit
)

// App is the root Bubble Tea model.
type App struct {
	backend Backend
	opts    Options
	cfg     config.Config

	// Data
	subs        []model.Subscription
	loaded      bool
	loadTime    time.Duration
	analyzer    *pipeline.Analyzer
	analysis    model.TrendAnalysis
	converted   *fx.ConvertedTotals
	converting  bool
	diagnostics []model.CycleDiagnostic

	// Refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	flash     string
	flashAt   time.Time

	// Per-tab state
	subsState subsState
	settings  settingsState

	// huh forms; values live on the heap so the form's bindings survive
	// App being copied by value.
	form      *huh.Form
	formKind  formKind
	formSub   *SubscriptionValues
	formSetup *SetupValues
	editID    int64
	needSetup bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5

	defaultRefreshInterval = 30 * time.Second
	minRefreshInterval     = 10 * time.Second
	flashDuration          = 4 * time.Second
	convertTimeout         = 15 * time.Second
)

// NewApp creates the dashboard over backend.
func NewApp(backend Backend, opts Options) App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SaveConfig == nil {
		opts.SaveConfig = config.Save
	}
	interval := opts.RefreshInterval
	if interval < minRefreshInterval {
		interval = defaultRefreshInterval
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		backend:         backend,
		opts:            opts,
		cfg:             opts.Config,
		analyzer:        pipeline.NewAnalyzer(opts.Analysis, opts.Now),
		autoRefresh:     true,
		refreshInterval: interval,
		needSetup:       opts.NeedSetup,
		spinner:         sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.backend, a.opts.Now),
		a.spinner.Tick,
		tickCmd(),
	)
}

func (a *App) recompute() {
	a.analyzer = pipeline.NewAnalyzer(a.opts.Analysis, a.opts.Now)
	a.analysis = a.analyzer.ComprehensiveAnalysis(a.subs)

	n := len(a.visibleSubscriptions())
	if a.subsState.cursor >= n {
		a.subsState.cursor = n - 1
	}
	if a.subsState.cursor < 0 {
		a.subsState.cursor = 0
	}
}

// needsConversion reports whether totals mix currencies or differ from the
// report currency.
func (a App) needsConversion() bool {
	if a.opts.FX == nil {
		return false
	}
	for code := range a.analysis.PriceTrend.CurrencyBreakdown {
		if !strings.EqualFold(code, a.opts.Analysis.Currency) {
			return true
		}
	}
	return false
}

func (a *App) setFlash(format string, args ...any) {
	a.flash = fmt.Sprintf(format, args...)
	a.flashAt = time.Now()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.form != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabSubscriptions && !a.subsState.searching {
				a.moveCursor(-1)
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabSubscriptions && !a.subsState.searching {
				a.moveCursor(1)
			}
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.refreshing = false
		a.lastRefresh = time.Now()
		a.loadTime = msg.LoadTime
		if msg.Err != nil {
			a.setFlash("Load failed: %v", msg.Err)
			return a, nil
		}
		a.subs = msg.Result.Subscriptions
		a.diagnostics = msg.Result.Diagnostics
		a.recompute()

		var cmds []tea.Cmd
		if a.needsConversion() && !a.converting {
			a.converting = true
			cmds = append(cmds, convertCmd(a.opts.FX, a.analysis.PriceTrend.CurrencyBreakdown, a.opts.Analysis.Currency))
		} else if !a.needsConversion() {
			a.converted = nil
		}
		if a.needSetup && a.form == nil {
			cmds = append(cmds, a.startSetupForm())
		}
		return a, tea.Batch(cmds...)

	case ConvertedMsg:
		a.converting = false
		totals := msg.Totals
		a.converted = &totals
		return a, nil

	case mutationMsg:
		if msg.err != nil {
			a.setFlash("%s failed: %v", msg.verb, msg.err)
			return a, nil
		}
		switch msg.verb {
		case "Add":
			a.setFlash("Added %s", msg.sub.Name)
		case "Delete":
			a.setFlash("Deleted %s", msg.sub.Name)
		case "Renew":
			a.setFlash("Renewed %s, next due %s", msg.sub.Name, msg.sub.NextDueDate)
		default:
			a.setFlash("Updated %s", msg.sub.Name)
		}
		a.refreshing = true
		return a, loadDataCmd(a.backend, a.opts.Now)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.flash != "" && time.Since(a.flashAt) >= flashDuration {
			a.flash = ""
		}
		if a.loaded && a.autoRefresh && !a.refreshing && a.form == nil &&
			time.Since(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, loadDataCmd(a.backend, a.opts.Now))
		}
		return a, tea.Batch(cmds...)
	}

	// Cursor blinks and similar go to the active form.
	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}
	if a.form != nil {
		if key == "esc" {
			a.closeForm()
			return a, nil
		}
		return a.updateForm(msg)
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == tabSubscriptions && a.subsState.searching {
		return a.updateSubscriptionsSearch(msg)
	}
	if a.activeTab == tabSubscriptions && a.subsState.confirmDelete {
		return a.updateDeleteConfirm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	if a.activeTab == tabSubscriptions {
		if m, cmd, handled := a.updateSubscriptionsKey(key); handled {
			return m, cmd
		}
	}
	if a.activeTab == tabSettings {
		if m, cmd, handled := a.updateSettingsKey(key); handled {
			return m, cmd
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, loadDataCmd(a.backend, a.opts.Now)
		}
		return a, nil
	case "R":
		a.autoRefresh = !a.autoRefresh
		if a.autoRefresh {
			a.setFlash("Auto refresh on")
		} else {
			a.setFlash("Auto refresh off")
		}
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if runes := []rune(key); len(runes) == 1 {
		if idx := components.TabIdxByKey(runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

// ─── Forms ──────────────────────────────────────────────────────

func (a *App) openForm(kind formKind, form *huh.Form) tea.Cmd {
	a.form = form
	a.formKind = kind
	if a.width > 0 {
		a.form = a.form.WithWidth(a.width).WithHeight(a.height)
	}
	return a.form.Init()
}

func (a *App) closeForm() {
	if a.formKind == formSetup {
		a.needSetup = false
	}
	a.form = nil
	a.formKind = formNone
	a.formSub = nil
	a.formSetup = nil
	a.editID = 0
}

func (a *App) startSetupForm() tea.Cmd {
	vals := SetupValuesFrom(a.cfg)
	a.formSetup = &vals
	return a.openForm(formSetup, NewSetupForm(a.formSetup))
}

func (a *App) startAddForm() tea.Cmd {
	a.formSub = &SubscriptionValues{
		Currency: a.opts.Analysis.Currency,
		NextDue:  model.DateOf(a.opts.Now()).String(),
	}
	return a.openForm(formAdd, NewSubscriptionForm(a.formSub))
}

func (a *App) startEditForm(sub model.Subscription) tea.Cmd {
	vals := SubscriptionValuesFrom(sub)
	a.formSub = &vals
	a.editID = sub.ID
	return a.openForm(formEdit, NewSubscriptionForm(a.formSub))
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateAborted:
		a.closeForm()
		return a, nil
	case huh.StateCompleted:
		next := a.completeForm()
		a.closeForm()
		return a, next
	}
	return a, cmd
}

// completeForm applies a finished form and returns the follow-up command.
func (a *App) completeForm() tea.Cmd {
	switch a.formKind {
	case formSetup:
		cfg := a.cfg
		if err := a.formSetup.Apply(&cfg); err != nil {
			a.setFlash("Setup not saved: %v", err)
			return nil
		}
		if err := a.applyConfig(cfg); err != nil {
			a.setFlash("Setup not saved: %v", err)
			return nil
		}
		a.setFlash("Settings saved")
		return nil

	case formAdd:
		sub, err := a.formSub.Subscription()
		if err != nil {
			a.setFlash("Add failed: %v", err)
			return nil
		}
		backend := a.backend
		return mutateCmd("Add", func(ctx context.Context) (model.Subscription, error) {
			return backend.CreateSubscription(ctx, sub)
		})

	case formEdit:
		sub, err := a.formSub.Subscription()
		if err != nil {
			a.setFlash("Update failed: %v", err)
			return nil
		}
		id, backend := a.editID, a.backend
		patch := model.SubscriptionPatch{
			Name:        &sub.Name,
			Price:       &sub.Price,
			Currency:    &sub.Currency,
			Cycle:       &sub.Cycle,
			NextDueDate: &sub.NextDueDate,
			Notes:       &sub.Notes,
		}
		return mutateCmd("Update", func(ctx context.Context) (model.Subscription, error) {
			return backend.UpdateSubscription(ctx, id, patch)
		})
	}
	return nil
}

// applyConfig persists cfg and rebuilds everything derived from it.
func (a *App) applyConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := a.opts.SaveConfig(cfg); err != nil {
		return err
	}
	a.cfg = cfg
	a.opts.Config = cfg
	a.opts.Analysis.Window = cfg.General.WindowMonths
	a.opts.Analysis.UpcomingDays = cfg.General.UpcomingDays
	a.opts.Analysis.Currency = cfg.General.DefaultCurrency
	theme.SetActive(cfg.Appearance.Theme)
	a.converted = nil
	a.recompute()
	return nil
}

// ─── Layout ─────────────────────────────────────────────────────

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.form != nil {
		return a.viewForm()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  subs needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ subs"))
	b.WriteString(subtitleStyle.Render(" · Subscription Costs"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Loading subscriptions..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewForm() string {
	t := theme.Active
	title := map[formKind]string{
		formSetup: "◈ Setup",
		formAdd:   "◈ Add subscription",
		formEdit:  "◈ Edit subscription",
	}[a.formKind]

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	body := titleStyle.Render(title) + "\n\n" + a.form.View() + "\n" + hintStyle.Render("[Esc] cancel")
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, body)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		name     string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"o c s f x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move through subscriptions"},
			{"g G", "First / Last"},
		}},
		{"Subscriptions", [][2]string{
			{"/", "Search by name"},
			{"Enter", "Toggle detail view"},
			{"a", "Add"},
			{"e", "Edit"},
			{"n", "Renew one cycle"},
			{"d", "Delete"},
		}},
		{"General", [][2]string{
			{"r", "Refresh data"},
			{"R", "Toggle auto-refresh"},
			{"w", "Setup wizard (Settings tab)"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.name))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pillAccent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	opts := a.analyzer.Options()
	filter := pillStyle.Render(" ") +
		pillAccent.Render(fmt.Sprintf("%dmo", opts.Window)) +
		pillStyle.Render(" │ next ") + pillAccent.Render(fmt.Sprintf("%dd", opts.UpcomingDays)) +
		pillStyle.Render(" │ ") + pillAccent.Render(opts.Currency) +
		pillStyle.Render(" │ today ") + pillAccent.Render(a.analyzer.Today().String())
	if q := a.subsState.searchQuery; q != "" {
		filter += pillStyle.Render(" │ search ") + pillAccent.Render(q)
	}
	filter += pillStyle.Render(" ")

	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(filter)

	dataAge := ""
	if !a.lastRefresh.IsZero() {
		dataAge = humanize.Time(a.lastRefresh)
	}
	statusBar := components.RenderStatusBar(w, dataAge, a.refreshing, a.autoRefresh, a.flash)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabCosts:
		content = a.renderCostsTab(cw)
	case tabSubscriptions:
		content = a.renderSubscriptionsTab(cw, contentH)
	case tabForecast:
		content = a.renderForecastTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadDataCmd takes one snapshot from backend.
func loadDataCmd(backend Backend, now func() time.Time) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		result, err := pipeline.Load(context.Background(), backend, now)
		return DataLoadedMsg{Result: result, Err: err, LoadTime: time.Since(start)}
	}
}

func convertCmd(client *fx.Client, breakdown map[string]model.CurrencyTotal, target string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), convertTimeout)
		defer cancel()
		return ConvertedMsg{Totals: client.ConvertTotals(ctx, breakdown, target)}
	}
}

func mutateCmd(verb string, fn func(context.Context) (model.Subscription, error)) tea.Cmd {
	return func() tea.Msg {
		sub, err := fn(context.Background())
		return mutationMsg{verb: verb, sub: sub, err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// sortedByDue returns a copy of subs ordered by next due date, then name.
func sortedByDue(subs []model.Subscription) []model.Subscription {
	out := make([]model.Subscription, len(subs))
	copy(out, subs)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].NextDueDate.Equal(out[j].NextDueDate.Time) {
			return out[i].NextDueDate.Before(out[j].NextDueDate.Time)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same widths as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i := range components.Tabs {
		tabW := components.TabVisualWidth(i, a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
