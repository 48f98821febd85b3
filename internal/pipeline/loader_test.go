package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

type staticSource struct {
	subs []model.Subscription
	err  error
}

func (s staticSource) Snapshot(context.Context) ([]model.Subscription, error) {
	return s.subs, s.err
}

func TestLoad(t *testing.T) {
	at := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	src := staticSource{subs: []model.Subscription{
		{ID: 1, Name: "ok", Cycle: model.CycleMonthly},
		{ID: 2, Name: "bad", Cycle: model.CycleUnknown, RawCycle: "daily"},
	}}

	res, err := Load(context.Background(), src, func() time.Time { return at })
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Subscriptions) != 2 {
		t.Fatalf("len(Subscriptions) = %d, want 2", len(res.Subscriptions))
	}
	if !res.LoadedAt.Equal(at) {
		t.Fatalf("LoadedAt = %v, want %v", res.LoadedAt, at)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Cycle != "daily" {
		t.Fatalf("Diagnostics = %+v", res.Diagnostics)
	}
}

func TestLoad_WrapsSourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Load(context.Background(), staticSource{err: boom}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Load error = %v, want wrapping %v", err, boom)
	}
}

func TestFilters(t *testing.T) {
	subs := []model.Subscription{
		{ID: 1, Name: "Netflix", Currency: "USD", Cycle: model.CycleMonthly},
		{ID: 2, Name: "iCloud", Currency: "CNY", Cycle: model.CycleMonthly},
		{ID: 3, Name: "Domain", Currency: "usd", Cycle: model.CycleYearly},
	}

	if got := FilterByName(subs, "net"); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("FilterByName = %+v", got)
	}
	if got := FilterByCurrency(subs, "USD"); len(got) != 2 {
		t.Fatalf("FilterByCurrency = %+v", got)
	}
	if got := FilterByCycle(subs, model.CycleYearly); len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("FilterByCycle = %+v", got)
	}
	if got := FilterByName(subs, ""); len(got) != 3 {
		t.Fatalf("empty filter dropped rows: %+v", got)
	}
}
