package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "subs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	s.now = func() time.Time { return time.Date(2024, time.January, 15, 9, 30, 0, 0, time.UTC) }
	return s
}

func newSub(name string, price float64, cycle model.Cycle, due model.Date) model.Subscription {
	return model.Subscription{Name: name, Price: price, Cycle: cycle, NextDueDate: due}
}

func TestCreateAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.CreateSubscription(ctx, model.Subscription{
		Name: "  Netflix ", Price: 15.99, Currency: "usd", Cycle: model.CycleMonthly,
		NextDueDate: model.NewDate(2024, time.February, 1), Notes: "family plan",
	})
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("CreateSubscription did not assign an id")
	}

	got, err := s.GetSubscription(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSubscription: %v", err)
	}
	if got.Name != "Netflix" || got.Currency != "USD" || got.Notes != "family plan" {
		t.Fatalf("GetSubscription = %+v", got)
	}
	if got.Cycle != model.CycleMonthly || got.NextDueDate.String() != "2024-02-01" {
		t.Fatalf("cycle/due = %s/%s", got.Cycle, got.NextDueDate)
	}
	if !got.CreatedAt.Equal(s.now()) {
		t.Fatalf("CreatedAt = %v, want %v", got.CreatedAt, s.now())
	}
}

func TestCreateDefaultsCurrency(t *testing.T) {
	s := openTestStore(t)
	got, err := s.CreateSubscription(context.Background(),
		newSub("Music", 10, model.CycleMonthly, model.NewDate(2024, time.March, 1)))
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if got.Currency != model.DefaultCurrency {
		t.Fatalf("Currency = %q, want %q", got.Currency, model.DefaultCurrency)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	due := model.NewDate(2024, time.March, 1)

	cases := []model.Subscription{
		newSub("", 10, model.CycleMonthly, due),
		newSub("neg", -1, model.CycleMonthly, due),
		newSub("cycle", 10, model.CycleUnknown, due),
		newSub("nodue", 10, model.CycleMonthly, model.Date{}),
	}
	for _, c := range cases {
		if _, err := s.CreateSubscription(ctx, c); !errors.Is(err, model.ErrInvalid) {
			t.Errorf("CreateSubscription(%+v) error = %v, want ErrInvalid", c, err)
		}
	}
}

func TestListOrderedByDueDate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for _, sub := range []model.Subscription{
		newSub("late", 1, model.CycleMonthly, model.NewDate(2024, time.June, 1)),
		newSub("early", 1, model.CycleMonthly, model.NewDate(2024, time.February, 1)),
		newSub("mid", 1, model.CycleMonthly, model.NewDate(2024, time.April, 1)),
	} {
		if _, err := s.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription: %v", err)
		}
	}

	subs, err := s.ListSubscriptions(ctx)
	if err != nil {
		t.Fatalf("ListSubscriptions: %v", err)
	}
	names := []string{subs[0].Name, subs[1].Name, subs[2].Name}
	if names[0] != "early" || names[1] != "mid" || names[2] != "late" {
		t.Fatalf("order = %v, want [early mid late]", names)
	}
}

func TestSnapshotInsertionOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for _, sub := range []model.Subscription{
		newSub("late", 1, model.CycleYearly, model.NewDate(2024, time.June, 1)),
		newSub("early", 1, model.CycleMonthly, model.NewDate(2024, time.February, 1)),
		newSub("mid", 1, model.CycleQuarterly, model.NewDate(2024, time.April, 1)),
	} {
		if _, err := s.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription: %v", err)
		}
	}

	subs, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("len = %d, want 3", len(subs))
	}
	names := []string{subs[0].Name, subs[1].Name, subs[2].Name}
	if names[0] != "late" || names[1] != "early" || names[2] != "mid" {
		t.Fatalf("order = %v, want [late early mid]", names)
	}
}

func TestUpdatePatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	created, err := s.CreateSubscription(ctx, newSub("Cloud", 100, model.CycleYearly, model.NewDate(2024, time.May, 5)))
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}

	price := 120.0
	cycle := model.CycleQuarterly
	updated, err := s.UpdateSubscription(ctx, created.ID, model.SubscriptionPatch{Price: &price, Cycle: &cycle})
	if err != nil {
		t.Fatalf("UpdateSubscription: %v", err)
	}
	if updated.Price != 120 || updated.Cycle != model.CycleQuarterly || updated.Name != "Cloud" {
		t.Fatalf("UpdateSubscription = %+v", updated)
	}

	got, _ := s.GetSubscription(ctx, created.ID)
	if got.Price != 120 || got.Cycle != model.CycleQuarterly {
		t.Fatalf("persisted = %+v", got)
	}

	if _, err := s.UpdateSubscription(ctx, 999, model.SubscriptionPatch{Price: &price}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	created, _ := s.CreateSubscription(ctx, newSub("Gym", 50, model.CycleMonthly, model.NewDate(2024, time.May, 5)))

	if err := s.DeleteSubscription(ctx, created.ID); err != nil {
		t.Fatalf("DeleteSubscription: %v", err)
	}
	if _, err := s.GetSubscription(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete = %v, want ErrNotFound", err)
	}
	if err := s.DeleteSubscription(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
}

func TestRenewStepsOneCycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tests := []struct {
		cycle model.Cycle
		due   model.Date
		want  string
	}{
		{model.CycleMonthly, model.NewDate(2024, time.January, 31), "2024-02-29"},
		{model.CycleQuarterly, model.NewDate(2024, time.January, 15), "2024-04-15"},
		{model.CycleYearly, model.NewDate(2024, time.February, 29), "2025-02-28"},
	}
	for _, tt := range tests {
		created, err := s.CreateSubscription(ctx, newSub(tt.cycle.String(), 10, tt.cycle, tt.due))
		if err != nil {
			t.Fatalf("CreateSubscription: %v", err)
		}
		renewed, err := s.RenewSubscription(ctx, created.ID)
		if err != nil {
			t.Fatalf("RenewSubscription: %v", err)
		}
		if renewed.NextDueDate.String() != tt.want {
			t.Errorf("%s renew from %s = %s, want %s", tt.cycle, tt.due, renewed.NextDueDate, tt.want)
		}
	}
}

func TestRenewUnknownCycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	res, err := s.db.Exec(`INSERT INTO subscriptions (name, price, currency, cycle, next_due_date, created_at)
		VALUES ('legacy', 5, 'CNY', 'weekly', '2024-01-20', '2023-01-01T00:00:00Z')`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	id, _ := res.LastInsertId()

	got, err := s.GetSubscription(ctx, id)
	if err != nil {
		t.Fatalf("GetSubscription: %v", err)
	}
	if got.Cycle != model.CycleUnknown || got.CycleLabel() != "weekly" {
		t.Fatalf("cycle = %s (%q), want unknown (weekly)", got.Cycle, got.CycleLabel())
	}
	if _, err := s.RenewSubscription(ctx, id); !errors.Is(err, ErrInvalidCycle) {
		t.Fatalf("RenewSubscription = %v, want ErrInvalidCycle", err)
	}
}

func TestImportIsAtomic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	due := model.NewDate(2024, time.March, 1)

	_, err := s.ImportSubscriptions(ctx, []model.Subscription{
		newSub("a", 1, model.CycleMonthly, due),
		newSub("", 1, model.CycleMonthly, due),
	}, nil)
	if err == nil {
		t.Fatal("ImportSubscriptions accepted an invalid row")
	}
	subs, _ := s.ListSubscriptions(ctx)
	if len(subs) != 0 {
		t.Fatalf("partial import left %d rows", len(subs))
	}

	var calls int
	n, err := s.ImportSubscriptions(ctx, []model.Subscription{
		newSub("a", 1, model.CycleMonthly, due),
		newSub("b", 2, model.CycleYearly, due),
	}, func(int) { calls++ })
	if err != nil {
		t.Fatalf("ImportSubscriptions: %v", err)
	}
	if n != 2 || calls != 2 {
		t.Fatalf("imported %d with %d progress calls, want 2/2", n, calls)
	}
}

func TestSettings(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.GetSetting(ctx, "telegram_token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetSetting missing = %v, want ErrNotFound", err)
	}
	if err := s.PutSettings(ctx, []model.Setting{
		{Key: "telegram_token", Value: "abc"},
		{Key: "telegram_chat_id", Value: "42"},
	}); err != nil {
		t.Fatalf("PutSettings: %v", err)
	}
	if err := s.PutSetting(ctx, "telegram_token", "xyz"); err != nil {
		t.Fatalf("PutSetting: %v", err)
	}

	v, err := s.GetSetting(ctx, "telegram_token")
	if err != nil || v != "xyz" {
		t.Fatalf("GetSetting = %q, %v; want xyz", v, err)
	}
	all, err := s.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if len(all) != 2 || all[0].Key != "telegram_chat_id" {
		t.Fatalf("Settings = %+v", all)
	}
	if err := s.PutSetting(ctx, " ", "x"); !errors.Is(err, model.ErrInvalid) {
		t.Fatalf("empty key = %v, want ErrInvalid", err)
	}
}

func TestReminderLog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	due := model.NewDate(2024, time.January, 22)
	created, _ := s.CreateSubscription(ctx, newSub("x", 1, model.CycleMonthly, due))

	sent, err := s.ReminderSent(ctx, created.ID, due, 7)
	if err != nil || sent {
		t.Fatalf("ReminderSent before = %v, %v", sent, err)
	}
	if err := s.MarkReminderSent(ctx, created.ID, due, 7); err != nil {
		t.Fatalf("MarkReminderSent: %v", err)
	}
	if err := s.MarkReminderSent(ctx, created.ID, due, 7); err != nil {
		t.Fatalf("MarkReminderSent twice: %v", err)
	}
	sent, _ = s.ReminderSent(ctx, created.ID, due, 7)
	if !sent {
		t.Fatal("ReminderSent after mark = false")
	}
	sent, _ = s.ReminderSent(ctx, created.ID, due, 3)
	if sent {
		t.Fatal("ReminderSent leaked across lead times")
	}
}
