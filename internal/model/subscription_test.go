package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseCycle(t *testing.T) {
	tests := []struct {
		in   string
		want Cycle
	}{
		{"monthly", CycleMonthly},
		{"  Monthly ", CycleMonthly},
		{"QUARTERLY", CycleQuarterly},
		{"yearly\n", CycleYearly},
		{"weekly", CycleUnknown},
		{"", CycleUnknown},
	}
	for _, tt := range tests {
		if got := ParseCycle(tt.in); got != tt.want {
			t.Errorf("ParseCycle(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestCycleLabel(t *testing.T) {
	sub := Subscription{Cycle: CycleUnknown, RawCycle: "weekly"}
	if got := sub.CycleLabel(); got != "weekly" {
		t.Fatalf("CycleLabel = %q, want weekly", got)
	}
	sub = Subscription{Cycle: CycleYearly, RawCycle: "Yearly "}
	if got := sub.CycleLabel(); got != "yearly" {
		t.Fatalf("CycleLabel = %q, want yearly", got)
	}
	if got := (Subscription{}).CycleLabel(); got != "unknown" {
		t.Fatalf("CycleLabel of empty = %q, want unknown", got)
	}
}

func TestSubscriptionJSONUsesCycleLabel(t *testing.T) {
	sub := Subscription{
		ID: 7, Name: "Gym", Price: 30, Currency: "USD",
		Cycle: CycleUnknown, RawCycle: "weekly",
		NextDueDate: NewDate(2024, time.February, 1),
		CreatedAt:   time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	body := string(b)
	for _, want := range []string{`"cycle":"weekly"`, `"next_due_date":"2024-02-01"`, `"id":7`} {
		if !strings.Contains(body, want) {
			t.Fatalf("json = %s, missing %s", body, want)
		}
	}
	if strings.Count(body, `"cycle"`) != 1 {
		t.Fatalf("json = %s, want a single cycle field", body)
	}
	if strings.Contains(body, "RawCycle") {
		t.Fatalf("json = %s, leaked RawCycle", body)
	}

	var back Subscription
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Cycle != CycleUnknown || back.RawCycle != "weekly" || back.CycleLabel() != "weekly" {
		t.Fatalf("decoded cycle = %s / %q", back.Cycle, back.RawCycle)
	}
	if back.Name != "Gym" || back.NextDueDate != sub.NextDueDate || !back.CreatedAt.Equal(sub.CreatedAt) {
		t.Fatalf("decoded = %+v", back)
	}

	known, err := json.Marshal(Subscription{Name: "Music", Cycle: CycleMonthly})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(known), `"cycle":"monthly"`) {
		t.Fatalf("json = %s", known)
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	for _, in := range []string{`null`, `""`} {
		d = NewDate(2024, time.March, 3)
		if err := json.Unmarshal([]byte(in), &d); err != nil {
			t.Fatalf("Unmarshal(%s): %v", in, err)
		}
		if !d.IsZero() {
			t.Fatalf("Unmarshal(%s) = %s, want zero", in, d)
		}
	}

	if err := json.Unmarshal([]byte(`"2024-02-29"`), &d); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if d != NewDate(2024, time.February, 29) {
		t.Fatalf("date = %s", d)
	}
	if err := json.Unmarshal([]byte(`"2023-02-29"`), &d); err == nil {
		t.Fatal("expected error for invalid date")
	}

	b, err := json.Marshal(struct {
		Due  Date `json:"due"`
		Zero Date `json:"zero"`
	}{Due: NewDate(2024, time.January, 5)})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `{"due":"2024-01-05","zero":""}` {
		t.Fatalf("json = %s", b)
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, time.January, 15)
	if got := d.DaysUntil(NewDate(2024, time.February, 1)); got != 17 {
		t.Fatalf("DaysUntil = %d, want 17", got)
	}
	if got := d.DaysUntil(NewDate(2024, time.January, 10)); got != -5 {
		t.Fatalf("DaysUntil = %d, want -5", got)
	}
	if got := d.AddDays(17).String(); got != "2024-02-01" {
		t.Fatalf("AddDays = %s", got)
	}
	local := time.Date(2024, time.March, 9, 23, 30, 0, 0, time.FixedZone("X", 8*3600))
	if got := DateOf(local).String(); got != "2024-03-09" {
		t.Fatalf("DateOf = %s, want the date in the value's own zone", got)
	}
	if _, err := ParseDate("15/01/2024"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}

func TestMonthKeyText(t *testing.T) {
	k := MonthKey{Year: 2024, Month: time.March}
	b, err := k.MarshalText()
	if err != nil || string(b) != "2024-03" {
		t.Fatalf("MarshalText = %q, %v", b, err)
	}
	var back MonthKey
	if err := back.UnmarshalText(b); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if back != k {
		t.Fatalf("round trip = %v, want %v", back, k)
	}
	if err := back.UnmarshalText([]byte("2024-13")); err == nil {
		t.Fatal("expected error for month 13")
	}

	// Month keys work as JSON object keys.
	out, err := json.Marshal(map[MonthKey]int{k: 1})
	if err != nil || string(out) != `{"2024-03":1}` {
		t.Fatalf("map json = %s, %v", out, err)
	}
}

func TestMonthKeyCalendar(t *testing.T) {
	feb := MonthKey{Year: 2024, Month: time.February}
	if got := feb.Last().String(); got != "2024-02-29" {
		t.Fatalf("Last = %s", got)
	}
	if got := feb.First().String(); got != "2024-02-01" {
		t.Fatalf("First = %s", got)
	}
	jan := MonthKey{Year: 2024, Month: time.January}
	if got := jan.AddMonths(-2); got != (MonthKey{Year: 2023, Month: time.November}) {
		t.Fatalf("AddMonths(-2) = %s", got)
	}
	if got := jan.AddMonths(12); got != (MonthKey{Year: 2025, Month: time.January}) {
		t.Fatalf("AddMonths(12) = %s", got)
	}
	if !jan.Before(feb) || feb.Before(jan) || jan.Before(jan) {
		t.Fatal("Before ordering is wrong")
	}
	if !(MonthKey{Year: 2023, Month: time.December}).Before(jan) {
		t.Fatal("December of the prior year should sort first")
	}
}

func TestSubscriptionPatchApply(t *testing.T) {
	base := Subscription{
		ID: 1, Name: "Cloud", Price: 100, Currency: "USD",
		Cycle: CycleYearly, RawCycle: "yearly",
		NextDueDate: NewDate(2024, time.May, 5), Notes: "keep",
	}

	if !(SubscriptionPatch{}).Empty() {
		t.Fatal("zero patch should be empty")
	}
	if got := (SubscriptionPatch{}).Apply(base); got != base {
		t.Fatalf("empty patch changed %+v", got)
	}

	price := 120.0
	currency := "eur"
	cycle := CycleQuarterly
	notes := ""
	p := SubscriptionPatch{Price: &price, Currency: &currency, Cycle: &cycle, Notes: &notes}
	if p.Empty() {
		t.Fatal("patch should not be empty")
	}
	got := p.Apply(base)
	if got.Name != "Cloud" || got.NextDueDate != base.NextDueDate {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if got.Price != 120 || got.Currency != "EUR" || got.Notes != "" {
		t.Fatalf("patched fields = %+v", got)
	}
	if got.Cycle != CycleQuarterly || got.RawCycle != "quarterly" {
		t.Fatalf("cycle = %s / %q", got.Cycle, got.RawCycle)
	}
	if base.Price != 100 {
		t.Fatal("Apply mutated its input")
	}
}

func TestValidate(t *testing.T) {
	valid := Subscription{Name: "Music", Price: 0, Cycle: CycleMonthly, NextDueDate: NewDate(2024, time.January, 1)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Subscription)
	}{
		{"blank name", func(s *Subscription) { s.Name = "  " }},
		{"negative price", func(s *Subscription) { s.Price = -1 }},
		{"unknown cycle", func(s *Subscription) { s.Cycle = CycleUnknown }},
		{"missing due date", func(s *Subscription) { s.NextDueDate = Date{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			if err := s.Validate(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate = %v, want ErrInvalid", err)
			}
		})
	}
}
