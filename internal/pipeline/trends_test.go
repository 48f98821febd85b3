package pipeline

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

// endToEndFixture is two subscriptions evaluated at 2024-01-15: a monthly
// one due well outside the 30-day horizon and a yearly one due in 5 days.
func endToEndFixture(t *testing.T) []model.Subscription {
	t.Helper()
	today := mustDate(t, "2024-01-15")
	return []model.Subscription{
		{ID: 1, Name: "Music", Price: 30, Currency: "USD", Cycle: model.CycleMonthly,
			NextDueDate: mustDate(t, "2024-03-10"), CreatedAt: mustTime(t, "2023-01-10")},
		{ID: 2, Name: "Cloud", Price: 300, Currency: "USD", Cycle: model.CycleYearly,
			NextDueDate: today.AddDays(5), CreatedAt: mustTime(t, "2023-06-01")},
	}
}

func TestSubscriptionAnalytics_EndToEnd(t *testing.T) {
	a := NewAnalyzer(DefaultOptions(), fixedClock(t, "2024-01-15"))
	got := a.SubscriptionAnalytics(endToEndFixture(t))

	if got.TotalSubscriptions != 2 || got.ActiveSubscriptions != 2 {
		t.Fatalf("counts = %d/%d, want 2/2", got.TotalSubscriptions, got.ActiveSubscriptions)
	}
	if !approx(got.TotalMonthlyCost, 55.0) {
		t.Fatalf("TotalMonthlyCost = %v, want 55.0", got.TotalMonthlyCost)
	}
	if !approx(got.TotalYearlyCost, 660.0) {
		t.Fatalf("TotalYearlyCost = %v, want 660.0", got.TotalYearlyCost)
	}
	if len(got.UpcomingRenewals) != 1 || got.UpcomingRenewals[0].ID != 2 {
		t.Fatalf("UpcomingRenewals = %+v, want only the yearly subscription", got.UpcomingRenewals)
	}
	if got.PriceRanges.Under50 != 1 || got.PriceRanges.Under500 != 1 {
		t.Fatalf("PriceRanges = %+v, want one 0-50 and one 300-500", got.PriceRanges)
	}
	if len(got.CycleBreakdown) != 2 || got.CycleBreakdown[0].Cycle != "monthly" {
		t.Fatalf("CycleBreakdown = %+v", got.CycleBreakdown)
	}
}

func TestCreationTimelineSparse_PriceTrendDense(t *testing.T) {
	a := NewAnalyzer(DefaultOptions(), fixedClock(t, "2024-01-15"))
	subs := endToEndFixture(t)

	timeline := a.CreationTimeline(subs)
	if len(timeline) != 2 {
		t.Fatalf("len(CreationTimeline) = %d, want 2", len(timeline))
	}
	if timeline[0].Date.String() != "2023-01" || timeline[1].Date.String() != "2023-06" {
		t.Fatalf("CreationTimeline months = %s, %s; want 2023-01, 2023-06", timeline[0].Date, timeline[1].Date)
	}
	if timeline[1].Count != 1 || !approx(timeline[1].Amount, 300) {
		t.Fatalf("2023-06 entry = %+v, want count 1 amount 300", timeline[1])
	}

	trend := a.PriceTrend(subs)
	if len(trend.MonthlySpending) != DefaultWindow {
		t.Fatalf("len(MonthlySpending) = %d, want %d", len(trend.MonthlySpending), DefaultWindow)
	}
	first, last := trend.MonthlySpending[0], trend.MonthlySpending[DefaultWindow-1]
	if first.Month.String() != "2023-02" || first.SubscriptionCount != 1 || !approx(first.TotalAmount, 30) {
		t.Fatalf("first month = %+v, want 2023-02 with the monthly subscription only", first)
	}
	if last.Month.String() != "2024-01" || last.SubscriptionCount != 2 || !approx(last.TotalAmount, 55) {
		t.Fatalf("last month = %+v, want 2024-01 with both subscriptions", last)
	}
}

func TestRenewalTimeline_Dense(t *testing.T) {
	a := NewAnalyzer(Options{Window: 6}, fixedClock(t, "2024-01-15"))
	got := a.RenewalTimeline(endToEndFixture(t))
	if len(got) != 6 {
		t.Fatalf("len(RenewalTimeline) = %d, want 6", len(got))
	}
	// Yearly renews in January; monthly from March onward.
	wantCounts := []int{1, 0, 1, 1, 1, 1}
	for i, w := range wantCounts {
		if got[i].Count != w {
			t.Errorf("%s count = %d, want %d", got[i].Date, got[i].Count, w)
		}
	}
	if !approx(got[0].Amount, 300) {
		t.Fatalf("January amount = %v, want 300", got[0].Amount)
	}
}

func TestComprehensiveAnalysis_Idempotent(t *testing.T) {
	a := NewAnalyzer(DefaultOptions(), fixedClock(t, "2024-01-15"))
	subs := endToEndFixture(t)
	subs = append(subs, model.Subscription{
		ID: 3, Name: "Legacy", Price: 12, Currency: "EUR", Cycle: model.CycleUnknown,
		RawCycle: "weekly", NextDueDate: mustDate(t, "2024-01-01"), CreatedAt: mustTime(t, "2022-05-05"),
	})

	first, err := json.Marshal(a.ComprehensiveAnalysis(subs))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(a.ComprehensiveAnalysis(subs))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("ComprehensiveAnalysis output differs between identical calls")
	}
}

func TestComprehensiveAnalysis_DoesNotMutateInput(t *testing.T) {
	a := NewAnalyzer(DefaultOptions(), fixedClock(t, "2024-01-15"))
	subs := endToEndFixture(t)
	before, _ := json.Marshal(subs)

	_ = a.ComprehensiveAnalysis(subs)

	after, _ := json.Marshal(subs)
	if !bytes.Equal(before, after) {
		t.Fatal("ComprehensiveAnalysis mutated its input")
	}
}

func TestComprehensiveAnalysis_Diagnostics(t *testing.T) {
	a := NewAnalyzer(DefaultOptions(), fixedClock(t, "2024-01-15"))
	subs := append(endToEndFixture(t), model.Subscription{
		ID: 9, Name: "Odd", Price: 5, Cycle: model.CycleUnknown, RawCycle: "biweekly",
		NextDueDate: mustDate(t, "2024-01-20"), CreatedAt: mustTime(t, "2023-01-01"),
	})

	got := a.ComprehensiveAnalysis(subs)
	if len(got.Diagnostics) != 1 {
		t.Fatalf("len(Diagnostics) = %d, want 1", len(got.Diagnostics))
	}
	d := got.Diagnostics[0]
	if d.SubscriptionID != 9 || d.Cycle != "biweekly" {
		t.Fatalf("diagnostic = %+v", d)
	}
	// The report still covers every subscription.
	if got.SubscriptionAnalytics.TotalSubscriptions != 3 {
		t.Fatalf("TotalSubscriptions = %d, want 3", got.SubscriptionAnalytics.TotalSubscriptions)
	}
	if !approx(got.SubscriptionAnalytics.TotalMonthlyCost, 55) {
		t.Fatalf("TotalMonthlyCost = %v, want 55", got.SubscriptionAnalytics.TotalMonthlyCost)
	}
}

func TestComprehensiveAnalysis_Empty(t *testing.T) {
	a := NewAnalyzer(DefaultOptions(), fixedClock(t, "2024-01-15"))
	got := a.ComprehensiveAnalysis(nil)

	if len(got.PriceTrend.MonthlySpending) != DefaultWindow {
		t.Fatalf("MonthlySpending len = %d", len(got.PriceTrend.MonthlySpending))
	}
	if len(got.RenewalTimeline) != DefaultWindow {
		t.Fatalf("RenewalTimeline len = %d", len(got.RenewalTimeline))
	}
	if len(got.CreationTimeline) != 0 {
		t.Fatalf("CreationTimeline len = %d, want 0", len(got.CreationTimeline))
	}

	raw, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"creation_timeline":[]`, `"upcoming_renewals":[]`, `"cycle_breakdown":[]`} {
		if !bytes.Contains(raw, []byte(want)) {
			t.Errorf("JSON missing %s: %s", want, raw)
		}
	}
	if bytes.Contains(raw, []byte(`"diagnostics"`)) {
		t.Errorf("empty diagnostics should be omitted: %s", raw)
	}
}

func TestAnalyzer_ConcurrentCalls(t *testing.T) {
	a := NewAnalyzer(DefaultOptions(), fixedClock(t, "2024-01-15"))
	subs := endToEndFixture(t)
	want, _ := json.Marshal(a.ComprehensiveAnalysis(subs))

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _ := json.Marshal(a.ComprehensiveAnalysis(subs))
			if !bytes.Equal(got, want) {
				errs <- string(got)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatalf("concurrent result differs: %s", e)
	}
}

func TestPriceRangesJSONOrder(t *testing.T) {
	raw, err := json.Marshal(model.PriceRanges{Under50: 2, From500Up: 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"0-50":2,"50-100":0,"100-300":0,"300-500":0,"500+":1}`
	if string(raw) != want {
		t.Fatalf("PriceRanges JSON = %s, want %s", raw, want)
	}
}
