package config

import (
	"sort"
	"strings"
	"time"
)

// rateVersion is a USD-based exchange rate valid from EffectiveFrom on.
type rateVersion struct {
	EffectiveFrom time.Time
	PerUSD        float64
}

// DefaultRates are approximate units of each currency per US dollar, used
// only when no live rates can be fetched.
var DefaultRates = map[string]float64{
	"CNY": 7.2,
	"EUR": 0.85,
	"GBP": 0.73,
	"JPY": 110.0,
	"USD": 1.0,
	"HKD": 7.8,
	"SGD": 1.35,
	"KRW": 1200.0,
}

// defaultRateHistory stores effective-dated fallback rates per currency.
// Entries must be sorted by EffectiveFrom ascending.
var defaultRateHistory = makeDefaultRateHistory(DefaultRates)

func makeDefaultRateHistory(base map[string]float64) map[string][]rateVersion {
	history := make(map[string][]rateVersion, len(base))
	for code, rate := range base {
		history[code] = []rateVersion{{PerUSD: rate}}
	}
	return history
}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LookupRateAt returns the fallback units-per-USD for code at the given
// time. If at is zero, the latest entry is used.
func LookupRateAt(code string, at time.Time) (float64, bool) {
	versions, ok := defaultRateHistory[NormalizeCurrency(code)]
	if !ok || len(versions) == 0 {
		return 0, false
	}
	if at.IsZero() {
		return versions[len(versions)-1].PerUSD, true
	}

	at = at.UTC()
	selected := versions[0].PerUSD
	for _, v := range versions {
		if v.EffectiveFrom.IsZero() || !at.Before(v.EffectiveFrom.UTC()) {
			selected = v.PerUSD
			continue
		}
		break
	}
	return selected, true
}

// FallbackRates returns the static USD-based table with the config's
// [fx.fallback] entries applied on top.
func FallbackRates(cfg Config, at time.Time) map[string]float64 {
	out := make(map[string]float64, len(defaultRateHistory)+len(cfg.FX.Fallback))
	for code := range defaultRateHistory {
		if r, ok := LookupRateAt(code, at); ok {
			out[code] = r
		}
	}
	for code, r := range cfg.FX.Fallback {
		out[NormalizeCurrency(code)] = r
	}
	return out
}

// KnownCurrencies lists the currencies with a fallback rate, sorted.
func KnownCurrencies() []string {
	codes := make([]string, 0, len(defaultRateHistory))
	for code := range defaultRateHistory {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
