package pipeline

import (
	"testing"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

func TestCycleBreakdown_InsertionOrder(t *testing.T) {
	created := mustTime(t, "2023-01-01")
	due := mustDate(t, "2024-02-01")
	subs := []model.Subscription{
		sub(1, 100, model.CycleYearly, due, created),
		sub(2, 10, model.CycleMonthly, due, created),
		sub(3, 300, model.CycleYearly, due, created),
		sub(4, 20, model.CycleMonthly, due, created),
		{ID: 5, Price: 7, Cycle: model.CycleUnknown, RawCycle: "weekly", NextDueDate: due, CreatedAt: created},
	}

	got := CycleBreakdown(subs)
	if len(got) != 3 {
		t.Fatalf("len(CycleBreakdown) = %d, want 3", len(got))
	}

	want := []model.CycleStat{
		{Cycle: "yearly", Count: 2, TotalAmount: 400, AveragePrice: 200},
		{Cycle: "monthly", Count: 2, TotalAmount: 30, AveragePrice: 15},
		{Cycle: "weekly", Count: 1, TotalAmount: 7, AveragePrice: 7},
	}
	for i, w := range want {
		g := got[i]
		if g.Cycle != w.Cycle || g.Count != w.Count || !approx(g.TotalAmount, w.TotalAmount) || !approx(g.AveragePrice, w.AveragePrice) {
			t.Errorf("CycleBreakdown[%d] = %+v, want %+v", i, g, w)
		}
	}
}

func TestCycleBreakdown_Empty(t *testing.T) {
	got := CycleBreakdown(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("CycleBreakdown(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestPriceRangeHistogram_Boundaries(t *testing.T) {
	tests := []struct {
		price float64
		label string
	}{
		{0, model.Range0To50},
		{49.99, model.Range0To50},
		{50, model.Range50To100},
		{99.99, model.Range50To100},
		{100, model.Range100To300},
		{299.99, model.Range100To300},
		{300, model.Range300To500},
		{499.99, model.Range300To500},
		{500, model.Range500Plus},
		{12000, model.Range500Plus},
	}

	for _, tt := range tests {
		s := model.Subscription{Price: tt.price, Cycle: model.CycleMonthly}
		r := PriceRangeHistogram([]model.Subscription{s})
		if r.Total() != 1 {
			t.Fatalf("price %.2f counted %d times, want 1", tt.price, r.Total())
		}
		if r.Get(tt.label) != 1 {
			t.Errorf("price %.2f landed outside %q: %+v", tt.price, tt.label, r)
		}
	}
}

func TestPriceRangeHistogram_Exhaustive(t *testing.T) {
	var subs []model.Subscription
	for p := 0.0; p < 1200; p += 7.5 {
		subs = append(subs, model.Subscription{Price: p})
	}
	r := PriceRangeHistogram(subs)
	if r.Total() != len(subs) {
		t.Fatalf("histogram total = %d, want %d", r.Total(), len(subs))
	}
}

func TestUpcomingRenewals(t *testing.T) {
	created := mustTime(t, "2023-01-01")
	today := mustDate(t, "2024-01-15")
	subs := []model.Subscription{
		sub(1, 10, model.CycleMonthly, mustDate(t, "2024-02-14"), created), // day 30
		sub(2, 10, model.CycleMonthly, mustDate(t, "2024-02-15"), created), // day 31
		sub(3, 10, model.CycleMonthly, mustDate(t, "2024-01-10"), created), // overdue
		sub(4, 10, model.CycleMonthly, mustDate(t, "2024-01-20"), created),
	}

	got := UpcomingRenewals(subs, today, DefaultUpcomingDays)
	ids := make([]int64, len(got))
	for i, s := range got {
		ids[i] = s.ID
	}
	want := []int64{1, 3, 4}
	if len(ids) != len(want) {
		t.Fatalf("UpcomingRenewals ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("UpcomingRenewals ids = %v, want %v", ids, want)
		}
	}
}

func TestUpcomingRenewals_ReturnsCopies(t *testing.T) {
	today := mustDate(t, "2024-01-15")
	subs := []model.Subscription{sub(1, 10, model.CycleMonthly, today, mustTime(t, "2023-01-01"))}

	got := UpcomingRenewals(subs, today, 30)
	got[0].Name = "changed"
	if subs[0].Name == "changed" {
		t.Fatal("UpcomingRenewals result aliases the input snapshot")
	}
}
