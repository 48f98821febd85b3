package config

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestLookupRateAt_UsesEffectiveDate(t *testing.T) {
	code := "TST"
	orig, had := defaultRateHistory[code]
	if had {
		defer func() { defaultRateHistory[code] = orig }()
	} else {
		defer delete(defaultRateHistory, code)
	}

	defaultRateHistory[code] = []rateVersion{
		{EffectiveFrom: mustDate(t, "2024-01-01"), PerUSD: 2.0},
		{EffectiveFrom: mustDate(t, "2024-07-01"), PerUSD: 3.0},
	}

	apr, ok := LookupRateAt(code, mustDate(t, "2024-04-15"))
	if !ok {
		t.Fatal("LookupRateAt returned !ok for known currency")
	}
	if apr != 2.0 {
		t.Fatalf("April rate = %.2f, want 2.0", apr)
	}

	aug, _ := LookupRateAt("tst", mustDate(t, "2024-08-15"))
	if aug != 3.0 {
		t.Fatalf("August rate = %.2f, want 3.0", aug)
	}

	latest, _ := LookupRateAt(code, time.Time{})
	if latest != 3.0 {
		t.Fatalf("zero-time rate = %.2f, want 3.0", latest)
	}
}

func TestLookupRateAt_Unknown(t *testing.T) {
	if _, ok := LookupRateAt("XXX", time.Now()); ok {
		t.Fatal("LookupRateAt returned ok for unknown currency")
	}
}

func TestFallbackRates_ConfigOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FX.Fallback = map[string]float64{"cny": 7.0, "TWD": 31.5}

	rates := FallbackRates(cfg, time.Time{})
	if rates["CNY"] != 7.0 {
		t.Fatalf("CNY = %.2f, want override 7.0", rates["CNY"])
	}
	if rates["TWD"] != 31.5 {
		t.Fatalf("TWD = %.2f, want 31.5", rates["TWD"])
	}
	if rates["USD"] != 1.0 {
		t.Fatalf("USD = %.2f, want 1.0", rates["USD"])
	}
}
