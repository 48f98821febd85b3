package pipeline

import (
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

// ForecastRenewals simulates renewals over the window months starting with
// the month containing today. Each bucket holds how many subscriptions renew
// in that month and what those renewals cost at their native price. A
// subscription counts at most once per month.
//
// The due date is re-derived from NextDueDate for every month rather than
// carried across months; NextDueDate is the only anchor a snapshot has.
func ForecastRenewals(subs []model.Subscription, today model.Date, window int) []model.MonthBucket {
	if window <= 0 {
		window = DefaultWindow
	}

	buckets := make([]model.MonthBucket, window)
	current := today.MonthKey()

	for i := range buckets {
		month := current.AddMonths(i)
		b := model.MonthBucket{Month: month}
		start, end := month.First(), month.Last()

		for _, s := range subs {
			if renewsWithin(s, start, end) {
				b.Count++
				b.Amount += s.Price
			}
		}
		buckets[i] = b
	}

	return buckets
}

// renewsWithin steps s forward from its next due date until a renewal lands
// in [start, end] or the date passes end. Each step strictly increases the
// date, so the loop is bounded by end.
func renewsWithin(s model.Subscription, start, end model.Date) bool {
	due := s.NextDueDate
	for !due.After(end.Time) {
		if !due.Before(start.Time) {
			return true
		}
		next, ok := NextDue(due, s.Cycle)
		if !ok {
			return false
		}
		due = next
	}
	return false
}
