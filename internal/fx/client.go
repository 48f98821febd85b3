// Package fx fetches currency exchange rates with caching and static
// fallbacks, and converts report totals into a single currency.
package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	defaultTTL     = time.Hour
)

// ErrUnavailable indicates that no endpoint returned usable rates.
var ErrUnavailable = errors.New("fx: all rate endpoints failed")

// Source says where a set of rates came from.
type Source string

// Rate sources, from freshest to least reliable.
const (
	SourceLive     Source = "live"
	SourceCache    Source = "cache"
	SourceStale    Source = "stale-cache"
	SourceFallback Source = "fallback"
)

// Rates is a table of units-per-base for one base currency.
type Rates struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetched_at"`
	Source    Source             `json:"source"`
}

// Options configures a Client.
type Options struct {
	Endpoints []string           // base URLs; the base code is appended
	TTL       time.Duration      // cache lifetime per base
	Fallback  map[string]float64 // static units-per-USD
	HTTP      *http.Client
	Now       func() time.Time
}

// Client fetches exchange rates from public endpoints.
type Client struct {
	endpoints []string
	ttl       time.Duration
	fallback  map[string]float64
	http      *http.Client
	now       func() time.Time

	mu    sync.Mutex
	cache map[string]Rates
}

// NewClient creates a client from opts.
func NewClient(opts Options) *Client {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.HTTP == nil {
		opts.HTTP = &http.Client{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	fallback := make(map[string]float64, len(opts.Fallback))
	for k, v := range opts.Fallback {
		fallback[strings.ToUpper(k)] = v
	}
	return &Client{
		endpoints: opts.Endpoints,
		ttl:       opts.TTL,
		fallback:  fallback,
		http:      opts.HTTP,
		now:       opts.Now,
		cache:     make(map[string]Rates),
	}
}

// Rates returns the exchange table for base. Fresh cache entries are served
// directly; on fetch failure an expired entry is reused, and without one the
// static table is returned. The result is always usable.
func (c *Client) Rates(ctx context.Context, base string) Rates {
	base = strings.ToUpper(strings.TrimSpace(base))
	now := c.now()

	c.mu.Lock()
	cached, ok := c.cache[base]
	c.mu.Unlock()
	if ok && now.Sub(cached.FetchedAt) < c.ttl {
		cached.Source = SourceCache
		return cached
	}

	rates, err := c.fetch(ctx, base)
	if err == nil {
		r := Rates{Base: base, Rates: rates, FetchedAt: now, Source: SourceLive}
		c.mu.Lock()
		c.cache[base] = r
		c.mu.Unlock()
		return r
	}

	slog.Warn("fx: fetching rates failed", "base", base, "error", err)
	if ok {
		cached.Source = SourceStale
		return cached
	}
	return c.fallbackRates(base, now)
}

// fallbackRates rebases the USD-denominated static table onto base.
func (c *Client) fallbackRates(base string, now time.Time) Rates {
	out := make(map[string]float64, len(c.fallback))
	perBase, ok := c.fallback[base]
	if !ok || perBase == 0 {
		perBase = 1
		base = "USD"
	}
	for code, perUSD := range c.fallback {
		out[code] = perUSD / perBase
	}
	return Rates{Base: base, Rates: out, FetchedAt: now, Source: SourceFallback}
}

func (c *Client) fetch(ctx context.Context, base string) (map[string]float64, error) {
	var errs []error
	for _, endpoint := range c.endpoints {
		rates, err := c.get(ctx, strings.TrimRight(endpoint, "/")+"/"+base)
		if err == nil && len(rates) > 0 {
			return rates, nil
		}
		if err == nil {
			err = fmt.Errorf("fx: %s returned no rates", endpoint)
		}
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
}

func (c *Client) get(ctx context.Context, url string) (map[string]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fx: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req) //nolint:gosec // endpoints come from user config
	if err != nil {
		return nil, fmt.Errorf("fx: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fx: unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("fx: reading response: %w", err)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("fx: parsing rates: %w", err)
	}
	return payload.Rates, nil
}

// Convert converts amount from one currency to another via USD-based rates.
// Unknown currencies are returned unconverted with ok=false.
func (c *Client) Convert(ctx context.Context, amount float64, from, to string) (float64, bool) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return amount, true
	}
	rates := c.Rates(ctx, "USD")
	return convertWith(rates, amount, from, to)
}

func convertWith(rates Rates, amount float64, from, to string) (float64, bool) {
	fromRate, ok := rates.Rates[from]
	if !ok || fromRate == 0 {
		if from != rates.Base {
			return amount, false
		}
		fromRate = 1
	}
	toRate, ok := rates.Rates[to]
	if !ok {
		if to != rates.Base {
			return amount, false
		}
		toRate = 1
	}
	return amount / fromRate * toRate, true
}
