package pipeline

import (
	"sort"
	"time"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

// Options controls report windows.
type Options struct {
	Window       int    // months of history and forecast
	UpcomingDays int    // look-ahead for upcoming renewals
	Currency     string // label attached to monthly spending rows
}

// DefaultOptions returns the standard 12-month, 30-day configuration.
func DefaultOptions() Options {
	return Options{
		Window:       DefaultWindow,
		UpcomingDays: DefaultUpcomingDays,
		Currency:     model.DefaultCurrency,
	}
}

// Analyzer composes the report views for a snapshot. It holds no state
// besides its options and clock, so one Analyzer may serve concurrent calls.
type Analyzer struct {
	opts Options
	now  func() time.Time
}

// NewAnalyzer returns an Analyzer using now as its clock. Zero option values
// fall back to the defaults.
func NewAnalyzer(opts Options, now func() time.Time) *Analyzer {
	def := DefaultOptions()
	if opts.Window <= 0 {
		opts.Window = def.Window
	}
	if opts.UpcomingDays <= 0 {
		opts.UpcomingDays = def.UpcomingDays
	}
	if opts.Currency == "" {
		opts.Currency = def.Currency
	}
	if now == nil {
		now = time.Now
	}
	return &Analyzer{opts: opts, now: now}
}

// Options returns the effective options.
func (a *Analyzer) Options() Options { return a.opts }

// Today returns the calendar date of the analyzer's clock.
func (a *Analyzer) Today() model.Date {
	return model.DateOf(a.now())
}

// SubscriptionAnalytics returns counts, cost totals and the breakdowns of
// subs as of today.
func (a *Analyzer) SubscriptionAnalytics(subs []model.Subscription) model.SubscriptionAnalytics {
	monthly, yearly := Totals(subs)
	return model.SubscriptionAnalytics{
		TotalSubscriptions:  len(subs),
		ActiveSubscriptions: len(subs),
		TotalMonthlyCost:    monthly,
		TotalYearlyCost:     yearly,
		CycleBreakdown:      CycleBreakdown(subs),
		UpcomingRenewals:    UpcomingRenewals(subs, a.Today(), a.opts.UpcomingDays),
		PriceRanges:         PriceRangeHistogram(subs),
	}
}

// PriceTrend returns the trailing monthly spend together with current
// totals and a per-currency breakdown of the snapshot.
func (a *Analyzer) PriceTrend(subs []model.Subscription) model.PriceTrend {
	history := ReconstructHistory(subs, a.Today(), a.opts.Window)
	spending := make([]model.MonthlySpending, len(history))
	for i, b := range history {
		spending[i] = model.MonthlySpending{
			Month:             b.Month,
			TotalAmount:       b.Amount,
			Currency:          a.opts.Currency,
			SubscriptionCount: b.Count,
		}
	}

	monthly, yearly := Totals(subs)
	return model.PriceTrend{
		MonthlySpending:   spending,
		TotalMonthly:      monthly,
		TotalYearly:       yearly,
		CurrencyBreakdown: CurrencyBreakdown(subs),
	}
}

// CreationTimeline groups subs by the month they were created in. Months
// without a creation are omitted.
func (a *Analyzer) CreationTimeline(subs []model.Subscription) []model.TimelineEntry {
	byMonth := make(map[model.MonthKey]*model.TimelineEntry)
	for _, s := range subs {
		key := model.MonthKeyOf(s.CreatedAt)
		e, ok := byMonth[key]
		if !ok {
			e = &model.TimelineEntry{Date: key}
			byMonth[key] = e
		}
		e.Count++
		e.Amount += s.Price
	}

	out := make([]model.TimelineEntry, 0, len(byMonth))
	for _, e := range byMonth {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// RenewalTimeline returns one entry per forecast month, including months
// with no renewals.
func (a *Analyzer) RenewalTimeline(subs []model.Subscription) []model.TimelineEntry {
	buckets := ForecastRenewals(subs, a.Today(), a.opts.Window)
	out := make([]model.TimelineEntry, len(buckets))
	for i, b := range buckets {
		out[i] = model.TimelineEntry{Date: b.Month, Count: b.Count, Amount: b.Amount}
	}
	return out
}

// ComprehensiveAnalysis bundles every view. All views share one reading of
// the clock.
func (a *Analyzer) ComprehensiveAnalysis(subs []model.Subscription) model.TrendAnalysis {
	pinned := a.at(a.now())
	return model.TrendAnalysis{
		SubscriptionAnalytics: pinned.SubscriptionAnalytics(subs),
		PriceTrend:            pinned.PriceTrend(subs),
		CreationTimeline:      pinned.CreationTimeline(subs),
		RenewalTimeline:       pinned.RenewalTimeline(subs),
		Diagnostics:           CycleDiagnostics(subs),
	}
}

// at returns a copy of a whose clock is frozen at t.
func (a *Analyzer) at(t time.Time) *Analyzer {
	return &Analyzer{opts: a.opts, now: func() time.Time { return t }}
}

// CycleDiagnostics lists subscriptions whose cycle is not recognized. Such
// subscriptions still appear in reports but contribute no cost and never
// renew.
func CycleDiagnostics(subs []model.Subscription) []model.CycleDiagnostic {
	var out []model.CycleDiagnostic
	for _, s := range subs {
		if s.Cycle.Known() {
			continue
		}
		out = append(out, model.CycleDiagnostic{
			SubscriptionID: s.ID,
			Name:           s.Name,
			Cycle:          s.CycleLabel(),
		})
	}
	return out
}
