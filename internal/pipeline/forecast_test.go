package pipeline

import (
	"testing"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

func TestForecastRenewals_MonthlySubscription(t *testing.T) {
	today := mustDate(t, "2024-01-15")
	subs := []model.Subscription{
		sub(1, 30, model.CycleMonthly, mustDate(t, "2024-01-20"), mustTime(t, "2023-01-10")),
	}

	got := ForecastRenewals(subs, today, 3)
	want := []string{"2024-01", "2024-02", "2024-03"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, month := range want {
		b := got[i]
		if b.Month.String() != month {
			t.Fatalf("bucket %d month = %s, want %s", i, b.Month, month)
		}
		if b.Count != 1 || !approx(b.Amount, 30) {
			t.Fatalf("bucket %s = count %d amount %.2f, want count 1 amount 30", month, b.Count, b.Amount)
		}
	}
}

func TestForecastRenewals_YearlyBeyondWindow(t *testing.T) {
	today := mustDate(t, "2024-01-15")
	subs := []model.Subscription{
		sub(1, 300, model.CycleYearly, mustDate(t, "2025-02-19"), mustTime(t, "2023-01-10")),
	}

	got := ForecastRenewals(subs, today, 12)
	if len(got) != 12 {
		t.Fatalf("len = %d, want 12", len(got))
	}
	if got[0].Month.String() != "2024-01" || got[11].Month.String() != "2024-12" {
		t.Fatalf("window = %s..%s, want 2024-01..2024-12", got[0].Month, got[11].Month)
	}
	for _, b := range got {
		if b.Count != 0 || b.Amount != 0 {
			t.Fatalf("bucket %s = %+v, want no renewals", b.Month, b)
		}
	}
}

func TestForecastRenewals_OverdueStepsForward(t *testing.T) {
	today := mustDate(t, "2024-01-15")
	subs := []model.Subscription{
		// Overdue quarterly: 2023-11-05 -> 2024-02-05 -> 2024-05-05 ...
		sub(1, 90, model.CycleQuarterly, mustDate(t, "2023-11-05"), mustTime(t, "2023-01-10")),
	}

	got := ForecastRenewals(subs, today, 6)
	counts := make(map[string]int)
	for _, b := range got {
		counts[b.Month.String()] = b.Count
	}
	want := map[string]int{
		"2024-01": 0,
		"2024-02": 1,
		"2024-03": 0,
		"2024-04": 0,
		"2024-05": 1,
		"2024-06": 0,
	}
	for month, c := range want {
		if counts[month] != c {
			t.Errorf("%s count = %d, want %d", month, counts[month], c)
		}
	}
}

func TestForecastRenewals_OverdueMonthlyCountsInCurrentMonth(t *testing.T) {
	today := mustDate(t, "2024-03-20")
	subs := []model.Subscription{
		sub(1, 10, model.CycleMonthly, mustDate(t, "2023-12-05"), mustTime(t, "2023-01-10")),
	}
	got := ForecastRenewals(subs, today, 1)
	if got[0].Count != 1 {
		t.Fatalf("overdue monthly: count = %d, want 1", got[0].Count)
	}
}

func TestForecastRenewals_UnknownCycleNeverRenews(t *testing.T) {
	today := mustDate(t, "2024-01-15")
	subs := []model.Subscription{
		{ID: 1, Price: 5, Cycle: model.CycleUnknown, RawCycle: "weekly", NextDueDate: mustDate(t, "2023-12-01")},
	}
	for _, b := range ForecastRenewals(subs, today, 12) {
		if b.Count != 0 {
			t.Fatalf("bucket %s counted an unknown-cycle renewal", b.Month)
		}
	}
}

func TestForecastRenewals_UnknownCycleDueInMonthStillCounts(t *testing.T) {
	// The date is tested before any stepping, so a due date inside the
	// first month is recorded even when the cycle cannot advance.
	today := mustDate(t, "2024-01-15")
	subs := []model.Subscription{
		{ID: 1, Price: 5, Cycle: model.CycleUnknown, NextDueDate: mustDate(t, "2024-01-25")},
	}
	got := ForecastRenewals(subs, today, 2)
	if got[0].Count != 1 || got[1].Count != 0 {
		t.Fatalf("counts = %d, %d; want 1, 0", got[0].Count, got[1].Count)
	}
}

func TestForecastRenewals_EmptySnapshot(t *testing.T) {
	got := ForecastRenewals(nil, mustDate(t, "2024-01-15"), 12)
	if len(got) != 12 {
		t.Fatalf("len = %d, want 12", len(got))
	}
}

func TestNextDue_ClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		from  string
		cycle model.Cycle
		want  string
	}{
		{"2024-01-31", model.CycleMonthly, "2024-02-29"},
		{"2023-01-31", model.CycleMonthly, "2023-02-28"},
		{"2024-03-31", model.CycleMonthly, "2024-04-30"},
		{"2023-11-30", model.CycleQuarterly, "2024-02-29"},
		{"2024-02-29", model.CycleYearly, "2025-02-28"},
		{"2024-12-15", model.CycleMonthly, "2025-01-15"},
	}
	for _, tt := range tests {
		got, ok := NextDue(mustDate(t, tt.from), tt.cycle)
		if !ok {
			t.Fatalf("NextDue(%s, %s) not ok", tt.from, tt.cycle)
		}
		if got.String() != tt.want {
			t.Errorf("NextDue(%s, %s) = %s, want %s", tt.from, tt.cycle, got, tt.want)
		}
	}

	if _, ok := NextDue(mustDate(t, "2024-01-31"), model.CycleUnknown); ok {
		t.Fatal("NextDue advanced an unknown cycle")
	}
}

func TestNextDue_StepsDoNotRecover(t *testing.T) {
	// Clamping is applied per step: Jan 31 -> Feb 29 -> Mar 29.
	d := mustDate(t, "2024-01-31")
	d, _ = NextDue(d, model.CycleMonthly)
	d, _ = NextDue(d, model.CycleMonthly)
	if d.String() != "2024-03-29" {
		t.Fatalf("two monthly steps from 2024-01-31 = %s, want 2024-03-29", d)
	}
}
