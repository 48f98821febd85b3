package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/cli"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/pipeline"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui/components"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Subscriptions view modes; split is the zero value.
const (
	subsViewSplit = iota
	subsViewDetail
)

type subsState struct {
	cursor        int
	offset        int
	viewMode      int
	searching     bool
	searchInput   textinput.Model
	searchQuery   string
	confirmDelete bool
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "name contains..."
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

// visibleSubscriptions is the due-ordered list after the search filter.
func (a App) visibleSubscriptions() []model.Subscription {
	subs := sortedByDue(a.subs)
	if a.subsState.searchQuery != "" {
		subs = pipeline.FilterByName(subs, a.subsState.searchQuery)
	}
	return subs
}

func (a App) selectedSubscription() (model.Subscription, bool) {
	subs := a.visibleSubscriptions()
	if a.subsState.cursor < 0 || a.subsState.cursor >= len(subs) {
		return model.Subscription{}, false
	}
	return subs[a.subsState.cursor], true
}

func (a *App) moveCursor(delta int) {
	n := len(a.visibleSubscriptions())
	a.subsState.cursor = min(max(a.subsState.cursor+delta, 0), max(n-1, 0))
}

// updateSubscriptionsKey handles keys specific to the subscriptions tab.
// handled is false when the key should fall through to global bindings.
func (a App) updateSubscriptionsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "/":
		a.subsState.searching = true
		a.subsState.searchInput = newSearchInput()
		a.subsState.searchInput.SetValue(a.subsState.searchQuery)
		a.subsState.searchInput.Focus()
		return a, textinput.Blink, true
	case "j", "down":
		a.moveCursor(1)
		return a, nil, true
	case "k", "up":
		a.moveCursor(-1)
		return a, nil, true
	case "g", "home":
		a.subsState.cursor = 0
		a.subsState.offset = 0
		return a, nil, true
	case "G", "end":
		a.moveCursor(len(a.subs))
		return a, nil, true
	case "enter":
		if a.isCompactLayout() {
			return a, nil, true
		}
		if a.subsState.viewMode == subsViewSplit {
			a.subsState.viewMode = subsViewDetail
		} else {
			a.subsState.viewMode = subsViewSplit
		}
		return a, nil, true
	case "esc":
		if a.subsState.searchQuery != "" {
			a.subsState.searchQuery = ""
			a.subsState.cursor = 0
			a.subsState.offset = 0
		} else {
			a.subsState.viewMode = subsViewSplit
		}
		return a, nil, true
	case "a":
		return a, a.startAddForm(), true
	case "e":
		sel, ok := a.selectedSubscription()
		if !ok {
			return a, nil, true
		}
		return a, a.startEditForm(sel), true
	case "d":
		if _, ok := a.selectedSubscription(); ok {
			a.subsState.confirmDelete = true
		}
		return a, nil, true
	case "n":
		sel, ok := a.selectedSubscription()
		if !ok {
			return a, nil, true
		}
		if !sel.Cycle.Known() {
			a.setFlash("Cannot renew %s: unknown cycle %q", sel.Name, sel.CycleLabel())
			return a, nil, true
		}
		backend := a.backend
		return a, mutateCmd("Renew", func(ctx context.Context) (model.Subscription, error) {
			return backend.RenewSubscription(ctx, sel.ID)
		}), true
	}
	return a, nil, false
}

func (a App) updateDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.subsState.confirmDelete = false
	if msg.String() != "y" && msg.String() != "Y" {
		return a, nil
	}
	sel, ok := a.selectedSubscription()
	if !ok {
		return a, nil
	}
	backend := a.backend
	return a, mutateCmd("Delete", func(ctx context.Context) (model.Subscription, error) {
		return sel, backend.DeleteSubscription(ctx, sel.ID)
	})
}

func (a App) updateSubscriptionsSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.subsState.searchQuery = strings.TrimSpace(a.subsState.searchInput.Value())
		a.subsState.searching = false
		a.subsState.cursor = 0
		a.subsState.offset = 0
		return a, nil
	case "esc":
		a.subsState.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.subsState.searchInput, cmd = a.subsState.searchInput.Update(msg)
	return a, cmd
}

func (a App) renderSubscriptionsTab(cw, h int) string {
	t := theme.Active
	subs := a.visibleSubscriptions()

	var prefix string
	if a.subsState.searching {
		prefix = components.ContentCard("Search", a.subsState.searchInput.View(), cw) + "\n"
		h -= lipgloss.Height(prefix)
	}

	if len(subs) == 0 {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		msg := "No subscriptions yet. Press [a] to add one."
		if a.subsState.searchQuery != "" {
			msg = fmt.Sprintf("Nothing matches %q. [Esc] clears the search.", a.subsState.searchQuery)
		}
		return prefix + components.ContentCard("Subscriptions", muted.Render(msg), cw)
	}

	if a.isCompactLayout() || a.subsState.viewMode == subsViewSplit {
		if a.isCompactLayout() {
			return prefix + a.renderSubscriptionList(subs, cw, h)
		}
		leftW := max(cw*2/5, 40)
		rightW := cw - leftW
		left := a.renderSubscriptionList(subs, leftW, h)
		right := components.ContentCard(subs[a.subsState.cursor].Name, a.renderSubscriptionDetail(subs[a.subsState.cursor], rightW), rightW)
		return prefix + components.CardRow([]string{left, right})
	}

	sel := subs[a.subsState.cursor]
	return prefix + components.ContentCard(sel.Name, a.renderSubscriptionDetail(sel, cw), cw)
}

func (a App) renderSubscriptionList(subs []model.Subscription, w, h int) string {
	t := theme.Active
	ss := a.subsState
	inner := components.CardInnerWidth(w)
	today := a.analyzer.Today()
	soon := a.analyzer.Options().UpcomingDays

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	visible := max(h-6, 3)
	offset := ss.offset
	if ss.cursor < offset {
		offset = ss.cursor
	}
	if ss.cursor >= offset+visible {
		offset = ss.cursor - visible + 1
	}
	end := min(offset+visible, len(subs))

	nameW := max(inner-34, 8)
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %12s %-9s %10s", nameW, "Name", "Price", "Cycle", "Due")))
	b.WriteString("\n")
	for i := offset; i < end; i++ {
		s := subs[i]
		days := today.DaysUntil(s.NextDueDate)
		line := fmt.Sprintf("%-*s %12s %-9s ",
			nameW, truncStr(s.Name, nameW),
			cli.FormatMoney(s.Price, s.Currency),
			truncStr(s.CycleLabel(), 9))
		due := fmt.Sprintf("%10s", cli.FormatDue(days))

		style := rowStyle
		if i == ss.cursor {
			style = selectedStyle
		}
		dueStyle := style.Foreground(theme.DueColor(days, soon))
		b.WriteString(style.Render(line) + dueStyle.Render(due))
		b.WriteString("\n")
	}

	hint := "[/] search  [a]dd  [e]dit  [n] renew  [d]elete"
	if ss.confirmDelete {
		if sel, ok := a.selectedSubscription(); ok {
			hint = fmt.Sprintf("Delete %s? [y/N]", sel.Name)
			mutedStyle = lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
		}
	}
	b.WriteString(mutedStyle.Render(truncStr(hint, inner)))

	title := fmt.Sprintf("Subscriptions [%d/%d]", len(subs), len(a.subs))
	return components.ContentCard(title, b.String(), w)
}

func (a App) renderSubscriptionDetail(s model.Subscription, w int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)
	today := a.analyzer.Today()
	days := today.DaysUntil(s.NextDueDate)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dueStyle := lipgloss.NewStyle().Foreground(theme.DueColor(days, a.analyzer.Options().UpcomingDays)).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	row := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-14s", label)) + valueStyle.Render(value) + "\n"
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render(fmt.Sprintf("#%d", s.ID)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(strings.Repeat("─", inner)))
	b.WriteString("\n")
	b.WriteString(row("Price", cli.FormatMoney(s.Price, s.Currency)+" / "+s.CycleLabel()))
	if s.Cycle.Known() {
		b.WriteString(row("Monthly", cli.FormatMoney(pipeline.MonthlyEquivalent(s.Price, s.Cycle), s.Currency)))
		b.WriteString(row("Yearly", cli.FormatMoney(pipeline.YearlyEquivalent(s.Price, s.Cycle), s.Currency)))
	} else {
		b.WriteString(warnStyle.Render("Unknown billing cycle; excluded from cost totals"))
		b.WriteString("\n")
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-14s", "Next due")) +
		valueStyle.Render(s.NextDueDate.String()+" ") + dueStyle.Render("("+cli.FormatDue(days)+")") + "\n")
	if next, ok := pipeline.NextDue(s.NextDueDate, s.Cycle); ok {
		b.WriteString(row("Following", next.String()))
	}
	if !s.CreatedAt.IsZero() {
		b.WriteString(row("Created", s.CreatedAt.Local().Format("2006-01-02 15:04")))
	}

	if s.Notes != "" {
		b.WriteString("\n")
		b.WriteString(accentStyle.Render("NOTES"))
		b.WriteString("\n")
		for _, line := range strings.Split(s.Notes, "\n") {
			b.WriteString(valueStyle.Render(truncStr(line, inner)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("[Enter] expand  [j/k] navigate  [Esc] back"))
	return b.String()
}
