package pipeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

// benchSnapshot builds n subscriptions spread across cycles, creation months
// and due dates, including some overdue ones.
func benchSnapshot(n int) []model.Subscription {
	cycles := []model.Cycle{model.CycleMonthly, model.CycleQuarterly, model.CycleYearly}
	base := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	subs := make([]model.Subscription, n)
	for i := range subs {
		subs[i] = model.Subscription{
			ID:          int64(i + 1),
			Name:        fmt.Sprintf("sub-%d", i),
			Price:       float64(5 + i%700),
			Currency:    []string{"USD", "EUR", "CNY"}[i%3],
			Cycle:       cycles[i%len(cycles)],
			NextDueDate: model.DateOf(base.AddDate(0, i%60, i%28)),
			CreatedAt:   base.AddDate(0, -(i % 36), 0),
		}
	}
	return subs
}

func BenchmarkForecastRenewals(b *testing.B) {
	subs := benchSnapshot(1000)
	today := model.NewDate(2024, time.January, 15)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ForecastRenewals(subs, today, DefaultWindow)
	}
}

func BenchmarkReconstructHistory(b *testing.B) {
	subs := benchSnapshot(1000)
	today := model.NewDate(2024, time.January, 15)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ReconstructHistory(subs, today, DefaultWindow)
	}
}

func BenchmarkComprehensiveAnalysis(b *testing.B) {
	subs := benchSnapshot(1000)
	now := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	a := NewAnalyzer(DefaultOptions(), func() time.Time { return now })

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.ComprehensiveAnalysis(subs)
	}
}
