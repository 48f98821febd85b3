// Package pipeline turns a snapshot of subscriptions into cost analytics,
// spend history and renewal forecasts. Every function here is pure: inputs
// are never mutated and outputs share no memory with them.
package pipeline

import (
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

// DefaultUpcomingDays is the look-ahead used for upcoming renewals.
const DefaultUpcomingDays = 30

// CycleBreakdown groups subs by billing cycle. Groups appear in the order
// their cycle is first seen.
func CycleBreakdown(subs []model.Subscription) []model.CycleStat {
	index := make(map[string]int)
	var stats []model.CycleStat

	for _, s := range subs {
		label := s.CycleLabel()
		i, ok := index[label]
		if !ok {
			i = len(stats)
			index[label] = i
			stats = append(stats, model.CycleStat{Cycle: label})
		}
		stats[i].Count++
		stats[i].TotalAmount += s.Price
	}

	for i := range stats {
		if stats[i].Count > 0 {
			stats[i].AveragePrice = stats[i].TotalAmount / float64(stats[i].Count)
		}
	}
	if stats == nil {
		stats = []model.CycleStat{}
	}
	return stats
}

// PriceRangeHistogram counts subs per price range. Ranges are closed on the
// left and open on the right, evaluated on the native price.
func PriceRangeHistogram(subs []model.Subscription) model.PriceRanges {
	var r model.PriceRanges
	for _, s := range subs {
		switch {
		case s.Price < 50:
			r.Under50++
		case s.Price < 100:
			r.Under100++
		case s.Price < 300:
			r.Under300++
		case s.Price < 500:
			r.Under500++
		default:
			r.From500Up++
		}
	}
	return r
}

// UpcomingRenewals returns copies of the subs due on or before today+days,
// in snapshot order. Overdue subscriptions are included.
func UpcomingRenewals(subs []model.Subscription, today model.Date, days int) []model.Subscription {
	cutoff := today.AddDays(days)
	out := make([]model.Subscription, 0)
	for _, s := range subs {
		if !s.NextDueDate.After(cutoff.Time) {
			out = append(out, s)
		}
	}
	return out
}
