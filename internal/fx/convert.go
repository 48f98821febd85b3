package fx

import (
	"context"
	"sort"
	"strings"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

// ConvertedTotals is a currency breakdown collapsed into one currency.
type ConvertedTotals struct {
	Currency    string                         `json:"currency"`
	Monthly     float64                        `json:"monthly"`
	Yearly      float64                        `json:"yearly"`
	Source      Source                         `json:"source"`
	Unconverted []string                       `json:"unconverted,omitempty"`
	Breakdown   map[string]model.CurrencyTotal `json:"breakdown"`
}

// ConvertTotals sums a per-currency breakdown into target. Currencies with
// no known rate are added at face value and listed in Unconverted.
func (c *Client) ConvertTotals(ctx context.Context, breakdown map[string]model.CurrencyTotal, target string) ConvertedTotals {
	target = strings.ToUpper(target)
	rates := c.Rates(ctx, "USD")
	out := ConvertedTotals{
		Currency:  target,
		Source:    rates.Source,
		Breakdown: breakdown,
	}

	codes := make([]string, 0, len(breakdown))
	for code := range breakdown {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		t := breakdown[code]
		monthly, ok := convertWith(rates, t.Monthly, strings.ToUpper(code), target)
		yearly, _ := convertWith(rates, t.Yearly, strings.ToUpper(code), target)
		if !ok && !strings.EqualFold(code, target) {
			out.Unconverted = append(out.Unconverted, code)
		}
		out.Monthly += monthly
		out.Yearly += yearly
	}
	return out
}
