// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatCost formats an amount compactly for dense tables and cards. Large
// values lose their decimals.
func FormatCost(cost float64, code string) string {
	c := GetCurrency(code)
	if math.Abs(cost) >= 1000 {
		s := humanize.Comma(int64(math.Round(cost)))
		if c.known && prefixCurrencies[c.Code] {
			return c.Symbol() + s
		}
		return s + " " + c.Symbol()
	}
	return c.Format(cost)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats the change between two amounts with an explicit sign.
func FormatDelta(current, previous float64, code string) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatCost(delta, code)
	}
	return "-" + FormatCost(-delta, code)
}

// FormatDue describes a due date relative to today.
func FormatDue(daysUntil int) string {
	switch daysUntil {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	case -1:
		return "yesterday"
	}
	day := 24 * time.Hour
	base := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	return humanize.RelTime(base.Add(time.Duration(daysUntil)*day), base, "overdue", "from now")
}

// FormatCount pluralizes a count, e.g. "1 subscription", "3 subscriptions".
func FormatCount(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return humanize.Comma(int64(n)) + " " + plural
}
