package pipeline

import (
	"time"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

// addMonthsClamped shifts d by n calendar months, pinning the day to the
// last day of the target month when it would overflow (Jan 31 + 1 = Feb 28
// or 29). time.AddDate would roll into the following month instead.
func addMonthsClamped(d model.Date, n int) model.Date {
	y, m, day := d.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := daysIn(first.Year(), first.Month())
	if day > last {
		day = last
	}
	return model.NewDate(first.Year(), first.Month(), day)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextDue returns the due date one billing cycle after due. The second
// result is false for unknown cycles, which never advance.
func NextDue(due model.Date, cycle model.Cycle) (model.Date, bool) {
	switch cycle {
	case model.CycleMonthly:
		return addMonthsClamped(due, 1), true
	case model.CycleQuarterly:
		return addMonthsClamped(due, 3), true
	case model.CycleYearly:
		return addMonthsClamped(due, 12), true
	default:
		return due, false
	}
}
