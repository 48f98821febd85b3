package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

func mustDate(t testing.TB, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func mustTime(t testing.TB, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return ts
}

func fixedClock(t testing.TB, s string) func() time.Time {
	t.Helper()
	ts := mustTime(t, s).Add(9 * time.Hour)
	return func() time.Time { return ts }
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func sub(id int64, price float64, cycle model.Cycle, due model.Date, created time.Time) model.Subscription {
	return model.Subscription{
		ID:          id,
		Name:        "sub",
		Price:       price,
		Currency:    "USD",
		Cycle:       cycle,
		NextDueDate: due,
		CreatedAt:   created,
	}
}
