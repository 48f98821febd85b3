package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

// SnapshotSource supplies the current subscription records.
type SnapshotSource interface {
	Snapshot(ctx context.Context) ([]model.Subscription, error)
}

// LoadResult is one snapshot plus the time it was taken.
type LoadResult struct {
	Subscriptions []model.Subscription
	LoadedAt      time.Time
	Diagnostics   []model.CycleDiagnostic
}

// Load fetches a snapshot from src once. Reports built from the result
// never go back to the source.
func Load(ctx context.Context, src SnapshotSource, now func() time.Time) (*LoadResult, error) {
	if now == nil {
		now = time.Now
	}
	subs, err := src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return &LoadResult{
		Subscriptions: subs,
		LoadedAt:      now(),
		Diagnostics:   CycleDiagnostics(subs),
	}, nil
}

// FilterByName returns subscriptions whose name contains name, ignoring case.
func FilterByName(subs []model.Subscription, name string) []model.Subscription {
	if name == "" {
		return subs
	}
	var result []model.Subscription
	for _, s := range subs {
		if containsIgnoreCase(s.Name, name) {
			result = append(result, s)
		}
	}
	return result
}

// FilterByCurrency returns subscriptions billed in currency.
func FilterByCurrency(subs []model.Subscription, currency string) []model.Subscription {
	if currency == "" {
		return subs
	}
	var result []model.Subscription
	for _, s := range subs {
		if strings.EqualFold(s.Currency, currency) {
			result = append(result, s)
		}
	}
	return result
}

// FilterByCycle returns subscriptions with the given cycle.
func FilterByCycle(subs []model.Subscription, cycle model.Cycle) []model.Subscription {
	var result []model.Subscription
	for _, s := range subs {
		if s.Cycle == cycle {
			result = append(result, s)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
