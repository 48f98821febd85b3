package pipeline

import (
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

// DefaultWindow is the number of months covered by history and forecasts.
const DefaultWindow = 12

// ReconstructHistory rebuilds monthly spend for the window months ending
// with the month containing today, oldest first. A subscription counts in
// every month whose first day is on or after its creation date; there is
// no record of cancellations, so removed subscriptions vanish from every
// month.
func ReconstructHistory(subs []model.Subscription, today model.Date, window int) []model.MonthBucket {
	if window <= 0 {
		window = DefaultWindow
	}

	buckets := make([]model.MonthBucket, window)
	current := today.MonthKey()

	for i := 0; i < window; i++ {
		month := current.AddMonths(-i)
		anchor := month.First()

		b := model.MonthBucket{Month: month}
		for _, s := range subs {
			if model.DateOf(s.CreatedAt).After(anchor.Time) {
				continue
			}
			b.Amount += MonthlyEquivalent(s.Price, s.Cycle)
			b.Count++
		}
		// Filled back to front so the result is ascending.
		buckets[window-1-i] = b
	}

	return buckets
}
