package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for due dates everywhere.
const DateLayout = "2006-01-02"

// DefaultCurrency is applied when a subscription is stored without one.
const DefaultCurrency = "CNY"

// Cycle is a subscription's billing interval.
type Cycle int

// Known billing cycles. CycleUnknown is kept for records whose stored cycle
// text is not recognized; it contributes nothing to costs or renewals.
const (
	CycleUnknown Cycle = iota
	CycleMonthly
	CycleQuarterly
	CycleYearly
)

// Cycles lists the recognized cycles in display order.
var Cycles = []Cycle{CycleMonthly, CycleQuarterly, CycleYearly}

// ParseCycle maps a stored cycle label to a Cycle. Unrecognized text yields
// CycleUnknown rather than an error.
func ParseCycle(s string) Cycle {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly":
		return CycleMonthly
	case "quarterly":
		return CycleQuarterly
	case "yearly":
		return CycleYearly
	default:
		return CycleUnknown
	}
}

func (c Cycle) String() string {
	switch c {
	case CycleMonthly:
		return "monthly"
	case CycleQuarterly:
		return "quarterly"
	case CycleYearly:
		return "yearly"
	default:
		return "unknown"
	}
}

// Known reports whether c is one of the recognized billing cycles.
func (c Cycle) Known() bool {
	return c == CycleMonthly || c == CycleQuarterly || c == CycleYearly
}

// MarshalText implements encoding.TextMarshaler.
func (c Cycle) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown labels decode
// to CycleUnknown so that bad rows still load.
func (c *Cycle) UnmarshalText(b []byte) error {
	*c = ParseCycle(string(b))
	return nil
}

// Subscription is one recurring charge as stored.
type Subscription struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Cycle       Cycle     `json:"cycle"`
	RawCycle    string    `json:"-"` // stored text, kept for diagnostics
	NextDueDate Date      `json:"next_due_date"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CycleLabel returns the stored cycle text when the cycle is unknown, and
// the canonical label otherwise.
func (s Subscription) CycleLabel() string {
	if s.Cycle == CycleUnknown && s.RawCycle != "" {
		return s.RawCycle
	}
	return s.Cycle.String()
}

// MarshalJSON writes the cycle as CycleLabel so unrecognized cycles keep
// their stored text.
func (s Subscription) MarshalJSON() ([]byte, error) {
	type plain Subscription
	return json.Marshal(struct {
		plain
		Cycle string `json:"cycle"`
	}{plain(s), s.CycleLabel()})
}

// UnmarshalJSON parses the cycle label and keeps the raw text.
func (s *Subscription) UnmarshalJSON(b []byte) error {
	type plain Subscription
	aux := struct {
		*plain
		Cycle string `json:"cycle"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	s.Cycle = ParseCycle(aux.Cycle)
	s.RawCycle = aux.Cycle
	return nil
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid subscription")

// Validate checks the fields a caller must supply.
func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if s.Price < 0 {
		return fmt.Errorf("%w: price must be non-negative, got %v", ErrInvalid, s.Price)
	}
	if !s.Cycle.Known() {
		return fmt.Errorf("%w: cycle must be monthly, quarterly or yearly", ErrInvalid)
	}
	if s.NextDueDate.IsZero() {
		return fmt.Errorf("%w: next_due_date is required", ErrInvalid)
	}
	return nil
}

// Setting is a key/value pair persisted alongside subscriptions.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Date is a calendar date without a time of day. It is stored as midnight
// UTC and serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate returns the date for year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

// DaysUntil returns the whole number of days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.Sub(d.Time).Hours() / 24)
}

// MonthKey returns the month containing d.
func (d Date) MonthKey() MonthKey {
	return MonthKey{Year: d.Year(), Month: d.Time.Month()}
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// MarshalJSON overrides the promoted time.Time encoding.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD" and null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthKeyOf returns the month key containing t.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// ParseMonthKey parses a YYYY-MM string.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return MonthKeyOf(t), nil
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Before reports whether k is earlier than other.
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// First returns day 1 of the month.
func (k MonthKey) First() Date {
	return NewDate(k.Year, k.Month, 1)
}

// Last returns the final day of the month.
func (k MonthKey) Last() Date {
	return Date{k.First().AddDate(0, 1, -1)}
}

// AddMonths returns the month n months after k (n may be negative).
func (k MonthKey) AddMonths(n int) MonthKey {
	return MonthKeyOf(k.First().AddDate(0, n, 0))
}

// MarshalText implements encoding.TextMarshaler.
func (k MonthKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *MonthKey) UnmarshalText(b []byte) error {
	parsed, err := ParseMonthKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// SubscriptionPatch is a partial update. Nil fields are left unchanged.
type SubscriptionPatch struct {
	Name        *string  `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Currency    *string  `json:"currency,omitempty"`
	Cycle       *Cycle   `json:"cycle,omitempty"`
	NextDueDate *Date    `json:"next_due_date,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
}

// Apply returns s with the patch's non-nil fields copied in.
func (p SubscriptionPatch) Apply(s Subscription) Subscription {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.Currency != nil {
		s.Currency = strings.ToUpper(*p.Currency)
	}
	if p.Cycle != nil {
		s.Cycle = *p.Cycle
		s.RawCycle = p.Cycle.String()
	}
	if p.NextDueDate != nil {
		s.NextDueDate = *p.NextDueDate
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
	return s
}

// Empty reports whether the patch changes nothing.
func (p SubscriptionPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.Currency == nil &&
		p.Cycle == nil && p.NextDueDate == nil && p.Notes == nil
}
