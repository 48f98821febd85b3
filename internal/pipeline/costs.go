package pipeline

import (
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

// MonthlyEquivalent amortizes a price charged once per cycle over one month.
// Unknown cycles cost nothing.
func MonthlyEquivalent(price float64, cycle model.Cycle) float64 {
	switch cycle {
	case model.CycleMonthly:
		return price
	case model.CycleQuarterly:
		return price / 3
	case model.CycleYearly:
		return price / 12
	default:
		return 0
	}
}

// YearlyEquivalent scales a price charged once per cycle to a full year.
// Unknown cycles cost nothing.
func YearlyEquivalent(price float64, cycle model.Cycle) float64 {
	switch cycle {
	case model.CycleMonthly:
		return price * 12
	case model.CycleQuarterly:
		return price * 4
	case model.CycleYearly:
		return price
	default:
		return 0
	}
}

// Totals returns the summed monthly and yearly equivalents of subs.
func Totals(subs []model.Subscription) (monthly, yearly float64) {
	for _, s := range subs {
		monthly += MonthlyEquivalent(s.Price, s.Cycle)
		yearly += YearlyEquivalent(s.Price, s.Cycle)
	}
	return monthly, yearly
}

// CurrencyBreakdown groups the monthly and yearly equivalents of subs by
// currency code. Each subscription is counted exactly once.
func CurrencyBreakdown(subs []model.Subscription) map[string]model.CurrencyTotal {
	out := make(map[string]model.CurrencyTotal)
	for _, s := range subs {
		code := s.Currency
		if code == "" {
			code = model.DefaultCurrency
		}
		t := out[code]
		t.Monthly += MonthlyEquivalent(s.Price, s.Cycle)
		t.Yearly += YearlyEquivalent(s.Price, s.Cycle)
		out[code] = t
	}
	return out
}
