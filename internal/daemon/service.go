// Package daemon provides the long-running subscription service: a JSON API
// over the store, a daily reminder loop, and an event stream.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/fx"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/notify"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/pipeline"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/store"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration // how often the snapshot is re-read
	EventsBuffer int
	Analysis     pipeline.Options

	RemindersEnabled bool
	DaysBefore       []int
	CheckHour        int

	// Telegram credentials used when the settings table has none.
	TelegramToken  string
	TelegramChatID string

	// Notifier, when set, replaces Telegram delivery.
	Notifier notify.Notifier
	Now      func() time.Time
}

// Snapshot is a compact cost state for status and event payloads.
type Snapshot struct {
	At               time.Time `json:"at"`
	Subscriptions    int       `json:"subscriptions"`
	MonthlyCost      float64   `json:"monthly_cost"`
	YearlyCost       float64   `json:"yearly_cost"`
	UpcomingRenewals int       `json:"upcoming_renewals"`
	Currency         string    `json:"currency"`
}

// Delta captures snapshot changes between polls.
type Delta struct {
	Subscriptions    int     `json:"subscriptions"`
	MonthlyCost      float64 `json:"monthly_cost"`
	YearlyCost       float64 `json:"yearly_cost"`
	UpcomingRenewals int     `json:"upcoming_renewals"`
}

func (d Delta) isZero() bool {
	return d.Subscriptions == 0 &&
		d.MonthlyCost == 0 &&
		d.YearlyCost == 0 &&
		d.UpcomingRenewals == 0
}

// Event types published on the stream.
const (
	EventSnapshot       = "snapshot"
	EventCostDelta      = "cost_delta"
	EventCreated        = "subscription_created"
	EventUpdated        = "subscription_updated"
	EventDeleted        = "subscription_deleted"
	EventRenewed        = "subscription_renewed"
	EventRemindersCheck = "reminders_checked"
)

// Event is emitted on snapshot changes, mutations and reminder passes.
type Event struct {
	ID           int64               `json:"id"`
	Type         string              `json:"type"`
	Timestamp    time.Time           `json:"timestamp"`
	Snapshot     *Snapshot           `json:"snapshot,omitempty"`
	Delta        *Delta              `json:"delta,omitempty"`
	Subscription *model.Subscription `json:"subscription,omitempty"`
	Reminders    *notify.CheckResult `json:"reminders,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt        time.Time `json:"started_at"`
	LastPollAt       time.Time `json:"last_poll_at"`
	PollIntervalSec  int       `json:"poll_interval_sec"`
	PollCount        int64     `json:"poll_count"`
	LastReminderDay  string    `json:"last_reminder_day,omitempty"`
	RemindersEnabled bool      `json:"reminders_enabled"`
	Summary          Snapshot  `json:"summary"`
	LastError        string    `json:"last_error,omitempty"`
	EventCount       int       `json:"event_count"`
	SubscriberCount  int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg   Config
	store *store.Store
	fx    *fx.Client

	// remindMu serializes reminder passes so the dedup log is never raced.
	remindMu sync.Mutex

	mu              sync.RWMutex
	startedAt       time.Time
	lastPollAt      time.Time
	pollCount       int64
	lastError       string
	lastReminderDay string
	hasSnapshot     bool
	snapshot        Snapshot
	nextEventID     int64
	events          []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service backed by st. rates may be nil, in which
// case converted analytics are unavailable.
func New(cfg Config, st *store.Store, rates *fx.Client) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8000"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if len(cfg.DaysBefore) == 0 {
		cfg.DaysBefore = notify.DefaultDaysBefore
	}

	return &Service{
		cfg:       cfg,
		store:     st,
		fx:        rates,
		startedAt: cfg.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /health", s.handleHealthJSON)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	s.registerAPI(mux)
	return logRequests(mux)
}

// Run starts HTTP endpoints, polling and the reminder schedule until ctx is
// canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	slog.Info("daemon listening", "addr", s.cfg.Addr)

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)
	s.maybeRemind(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
			s.maybeRemind(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) analyzer() *pipeline.Analyzer {
	return pipeline.NewAnalyzer(s.cfg.Analysis, s.cfg.Now)
}

func (s *Service) load(ctx context.Context) (*pipeline.LoadResult, error) {
	return pipeline.Load(ctx, s.store, s.cfg.Now)
}

func (s *Service) pollOnce(ctx context.Context) {
	result, err := s.load(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = s.cfg.Now()
		s.pollCount++
		s.mu.Unlock()
		slog.Error("daemon poll failed", "error", err)
		return
	}
	for _, d := range result.Diagnostics {
		slog.Warn("unknown billing cycle", "id", d.SubscriptionID, "name", d.Name, "cycle", d.Cycle)
	}

	a := s.analyzer()
	stats := a.SubscriptionAnalytics(result.Subscriptions)
	snap := snapshotFromAnalytics(stats, a.Options().Currency, result.LoadedAt)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = result.LoadedAt
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		ev = Event{Type: EventSnapshot, Timestamp: snap.At, Snapshot: &snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		ev = Event{Type: EventCostDelta, Timestamp: snap.At, Snapshot: &snap, Delta: &delta}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func snapshotFromAnalytics(stats model.SubscriptionAnalytics, currency string, at time.Time) Snapshot {
	return Snapshot{
		At:               at,
		Subscriptions:    stats.TotalSubscriptions,
		MonthlyCost:      stats.TotalMonthlyCost,
		YearlyCost:       stats.TotalYearlyCost,
		UpcomingRenewals: len(stats.UpcomingRenewals),
		Currency:         currency,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Subscriptions:    curr.Subscriptions - prev.Subscriptions,
		MonthlyCost:      curr.MonthlyCost - prev.MonthlyCost,
		YearlyCost:       curr.YearlyCost - prev.YearlyCost,
		UpcomingRenewals: curr.UpcomingRenewals - prev.UpcomingRenewals,
	}
}

// maybeRemind runs the reminder pass once per day, at or after CheckHour.
func (s *Service) maybeRemind(ctx context.Context) {
	if !s.cfg.RemindersEnabled {
		return
	}
	now := s.cfg.Now()
	day := model.DateOf(now).String()

	s.mu.RLock()
	done := s.lastReminderDay == day
	s.mu.RUnlock()
	if done || now.Hour() < s.cfg.CheckHour {
		return
	}

	_, delivered, err := s.runReminders(ctx)
	if err != nil {
		slog.Warn("scheduled reminder check finished with errors", "error", err, "retry", !delivered)
	}
	if !delivered {
		return
	}
	s.mu.Lock()
	s.lastReminderDay = day
	s.mu.Unlock()
}

// notifier resolves the delivery channel, preferring stored settings over
// configured credentials. It returns nil when nothing is configured.
func (s *Service) notifier(ctx context.Context) (notify.Notifier, error) {
	if s.cfg.Notifier != nil {
		return s.cfg.Notifier, nil
	}
	settings, err := s.settingsMap(ctx)
	if err != nil {
		return nil, err
	}
	return notify.FromSettings(settings, s.cfg.TelegramToken, s.cfg.TelegramChatID), nil
}

func (s *Service) settingsMap(ctx context.Context) (map[string]string, error) {
	list, err := s.store.Settings(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(list))
	for _, st := range list {
		out[st.Key] = st.Value
	}
	return out, nil
}

// CheckReminders sends any due reminders now and publishes the result.
func (s *Service) CheckReminders(ctx context.Context) (notify.CheckResult, error) {
	res, _, err := s.runReminders(ctx)
	return res, err
}

// runReminders reports whether the pass reached delivery. Failures before
// that point leave the day open for another attempt.
func (s *Service) runReminders(ctx context.Context) (notify.CheckResult, bool, error) {
	s.remindMu.Lock()
	defer s.remindMu.Unlock()

	n, err := s.notifier(ctx)
	if err != nil {
		return notify.CheckResult{}, false, err
	}
	if n == nil {
		return notify.CheckResult{}, false, notify.ErrNotConfigured
	}

	subs, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		return notify.CheckResult{}, false, err
	}

	today := model.DateOf(s.cfg.Now())
	res, checkErr := notify.Check(ctx, subs, today, s.cfg.DaysBefore, n, s.store)
	s.publishEvent(Event{Type: EventRemindersCheck, Timestamp: s.cfg.Now(), Reminders: &res})
	return res, true, checkErr
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.cfg.Now()
	}
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:        s.startedAt,
		LastPollAt:       s.lastPollAt,
		PollIntervalSec:  int(s.cfg.Interval.Seconds()),
		PollCount:        s.pollCount,
		LastReminderDay:  s.lastReminderDay,
		RemindersEnabled: s.cfg.RemindersEnabled,
		Summary:          s.snapshot,
		LastError:        s.lastError,
		EventCount:       len(s.events),
		SubscriberCount:  len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleHealthJSON(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": s.cfg.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	snap := s.snapshotStatus().Summary
	writeSSE(w, Event{Type: EventSnapshot, Timestamp: s.cfg.Now(), Snapshot: &snap})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("http request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}
