package model

import (
	"bytes"
	"encoding/json"
)

// MonthBucket is an aggregate for one calendar month.
type MonthBucket struct {
	Month  MonthKey
	Amount float64
	Count  int
}

// CycleStat summarizes the subscriptions sharing one billing cycle.
type CycleStat struct {
	Cycle        string  `json:"cycle"`
	Count        int     `json:"count"`
	TotalAmount  float64 `json:"total_amount"`
	AveragePrice float64 `json:"average_price"`
}

// PriceRange labels, in ascending order of their lower bound.
const (
	Range0To50    = "0-50"
	Range50To100  = "50-100"
	Range100To300 = "100-300"
	Range300To500 = "300-500"
	Range500Plus  = "500+"
)

// PriceRangeLabels lists every price range label in display order.
var PriceRangeLabels = []string{Range0To50, Range50To100, Range100To300, Range300To500, Range500Plus}

// PriceRanges counts subscriptions per native-currency price range.
type PriceRanges struct {
	Under50   int
	Under100  int
	Under300  int
	Under500  int
	From500Up int
}

// Get returns the count for a range label.
func (p PriceRanges) Get(label string) int {
	switch label {
	case Range0To50:
		return p.Under50
	case Range50To100:
		return p.Under100
	case Range100To300:
		return p.Under300
	case Range300To500:
		return p.Under500
	case Range500Plus:
		return p.From500Up
	}
	return 0
}

// Total returns the number of subscriptions counted.
func (p PriceRanges) Total() int {
	return p.Under50 + p.Under100 + p.Under300 + p.Under500 + p.From500Up
}

// MarshalJSON writes the ranges as an object keyed by label, in label order.
func (p PriceRanges) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, label := range PriceRangeLabels {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(label)
		buf.Write(k)
		buf.WriteByte(':')
		v, _ := json.Marshal(p.Get(label))
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object form written by MarshalJSON.
func (p *PriceRanges) UnmarshalJSON(b []byte) error {
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*p = PriceRanges{
		Under50:   m[Range0To50],
		Under100:  m[Range50To100],
		Under300:  m[Range100To300],
		Under500:  m[Range300To500],
		From500Up: m[Range500Plus],
	}
	return nil
}

// CurrencyTotal holds monthly and yearly equivalents for one currency.
type CurrencyTotal struct {
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
}

// SubscriptionAnalytics is the point-in-time overview of a snapshot.
type SubscriptionAnalytics struct {
	TotalSubscriptions  int            `json:"total_subscriptions"`
	ActiveSubscriptions int            `json:"active_subscriptions"`
	TotalMonthlyCost    float64        `json:"total_monthly_cost"`
	TotalYearlyCost     float64        `json:"total_yearly_cost"`
	CycleBreakdown      []CycleStat    `json:"cycle_breakdown"`
	UpcomingRenewals    []Subscription `json:"upcoming_renewals"`
	PriceRanges         PriceRanges    `json:"price_ranges"`
}

// MonthlySpending is one month of the trailing spend reconstruction.
type MonthlySpending struct {
	Month             MonthKey `json:"month"`
	TotalAmount       float64  `json:"total_amount"`
	Currency          string   `json:"currency"`
	SubscriptionCount int      `json:"subscription_count"`
}

// PriceTrend is the trailing spend view plus current totals.
type PriceTrend struct {
	MonthlySpending   []MonthlySpending        `json:"monthly_spending"`
	TotalMonthly      float64                  `json:"total_monthly"`
	TotalYearly       float64                  `json:"total_yearly"`
	CurrencyBreakdown map[string]CurrencyTotal `json:"currency_breakdown"`
}

// TimelineEntry is one month of a creation or renewal timeline.
type TimelineEntry struct {
	Date   MonthKey `json:"date"`
	Count  int      `json:"count"`
	Amount float64  `json:"amount"`
}

// CycleDiagnostic flags a subscription whose stored cycle is not recognized.
type CycleDiagnostic struct {
	SubscriptionID int64  `json:"subscription_id"`
	Name           string `json:"name"`
	Cycle          string `json:"cycle"`
}

// TrendAnalysis bundles every report view.
type TrendAnalysis struct {
	SubscriptionAnalytics SubscriptionAnalytics `json:"subscription_analytics"`
	PriceTrend            PriceTrend            `json:"price_trend"`
	CreationTimeline      []TimelineEntry       `json:"creation_timeline"`
	RenewalTimeline       []TimelineEntry       `json:"renewal_timeline"`
	Diagnostics           []CycleDiagnostic     `json:"diagnostics,omitempty"`
}
