package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/notify"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/store"
)

const maxRequestBody = 1 << 20

func (s *Service) registerAPI(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/subscriptions", s.handleListSubscriptions)
	mux.HandleFunc("POST /api/subscriptions", s.handleCreateSubscription)
	mux.HandleFunc("GET /api/subscriptions/{id}", s.handleGetSubscription)
	mux.HandleFunc("PUT /api/subscriptions/{id}", s.handleUpdateSubscription)
	mux.HandleFunc("DELETE /api/subscriptions/{id}", s.handleDeleteSubscription)
	mux.HandleFunc("POST /api/subscriptions/{id}/renew", s.handleRenewSubscription)

	mux.HandleFunc("GET /api/settings", s.handleListSettings)
	mux.HandleFunc("POST /api/settings", s.handlePutSettings)
	mux.HandleFunc("GET /api/settings/{key}", s.handleGetSetting)
	mux.HandleFunc("PUT /api/settings/{key}", s.handlePutSetting)

	mux.HandleFunc("GET /api/analytics/subscriptions", s.handleAnalytics)
	mux.HandleFunc("GET /api/analytics/price-trend", s.handlePriceTrend)
	mux.HandleFunc("GET /api/analytics/creation-timeline", s.handleCreationTimeline)
	mux.HandleFunc("GET /api/analytics/renewal-timeline", s.handleRenewalTimeline)
	mux.HandleFunc("GET /api/analytics/comprehensive", s.handleComprehensive)
	mux.HandleFunc("GET /api/analytics/converted", s.handleConverted)

	mux.HandleFunc("POST /api/reminders/check", s.handleCheckReminders)
	mux.HandleFunc("POST /api/telegram/test", s.handleTelegramTest)
}

// apiError is the JSON error body.
type apiError struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes: missing rows are
// 404, rejected input is 400, everything else is 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInvalid), errors.Is(err, errBadRequest),
		errors.Is(err, store.ErrInvalidCycle), errors.Is(err, notify.ErrNotConfigured):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		slog.Error("api request failed", "error", err)
	}
	writeJSON(w, status, apiError{Detail: err.Error()})
}

var errBadRequest = errors.New("bad request")

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, r.PathValue("id"))
	}
	return id, nil
}

func (s *Service) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.store.ListSubscriptions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// subscriptionRequest is the body accepted when creating a subscription.
type subscriptionRequest struct {
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	Currency    string     `json:"currency"`
	Cycle       string     `json:"cycle"`
	NextDueDate model.Date `json:"next_due_date"`
	Notes       string     `json:"notes"`
}

func (s *Service) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sub, err := s.store.CreateSubscription(r.Context(), model.Subscription{
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price,
		Currency:    strings.ToUpper(strings.TrimSpace(req.Currency)),
		Cycle:       model.ParseCycle(req.Cycle),
		RawCycle:    req.Cycle,
		NextDueDate: req.NextDueDate,
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	s.publishEvent(Event{Type: EventCreated, Subscription: &sub})
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Service) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sub, err := s.store.GetSubscription(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Service) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var patch model.SubscriptionPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	sub, err := s.store.UpdateSubscription(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	s.publishEvent(Event{Type: EventUpdated, Subscription: &sub})
	writeJSON(w, http.StatusOK, sub)
}

func (s *Service) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.DeleteSubscription(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.publishEvent(Event{Type: EventDeleted, Subscription: &model.Subscription{ID: id}})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleRenewSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sub, err := s.store.RenewSubscription(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	s.publishEvent(Event{Type: EventRenewed, Subscription: &sub})
	writeJSON(w, http.StatusOK, sub)
}

func (s *Service) handleListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.Settings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Service) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var settings []model.Setting
	if err := decodeBody(r, &settings); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.PutSettings(r.Context(), settings); err != nil {
		writeError(w, err)
		return
	}
	s.handleListSettings(w, r)
}

func (s *Service) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	value, err := s.store.GetSetting(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Setting{Key: key, Value: value})
}

func (s *Service) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var body struct {
		Value string `json:"value"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.PutSetting(r.Context(), key, body.Value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Setting{Key: key, Value: body.Value})
}

func (s *Service) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	result, err := s.load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.analyzer().SubscriptionAnalytics(result.Subscriptions))
}

func (s *Service) handlePriceTrend(w http.ResponseWriter, r *http.Request) {
	result, err := s.load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.analyzer().PriceTrend(result.Subscriptions))
}

func (s *Service) handleCreationTimeline(w http.ResponseWriter, r *http.Request) {
	result, err := s.load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.analyzer().CreationTimeline(result.Subscriptions))
}

func (s *Service) handleRenewalTimeline(w http.ResponseWriter, r *http.Request) {
	result, err := s.load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.analyzer().RenewalTimeline(result.Subscriptions))
}

func (s *Service) handleComprehensive(w http.ResponseWriter, r *http.Request) {
	result, err := s.load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.analyzer().ComprehensiveAnalysis(result.Subscriptions))
}

func (s *Service) handleConverted(w http.ResponseWriter, r *http.Request) {
	if s.fx == nil {
		writeError(w, errors.New("currency conversion is not configured"))
		return
	}
	result, err := s.load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	target := r.URL.Query().Get("currency")
	if target == "" {
		target = s.analyzer().Options().Currency
	}
	trend := s.analyzer().PriceTrend(result.Subscriptions)
	writeJSON(w, http.StatusOK, s.fx.ConvertTotals(r.Context(), trend.CurrencyBreakdown, target))
}

func (s *Service) handleCheckReminders(w http.ResponseWriter, r *http.Request) {
	res, err := s.CheckReminders(r.Context())
	if err != nil && len(res.Sent) == 0 && res.Failed == 0 {
		writeError(w, err)
		return
	}
	body := struct {
		notify.CheckResult
		Error string `json:"error,omitempty"`
	}{CheckResult: res}
	if err != nil {
		body.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, body)
}

// telegramTestRequest optionally overrides stored credentials so they can be
// tried before saving.
type telegramTestRequest struct {
	Token  string `json:"token"`
	ChatID string `json:"chat_id"`
}

func (s *Service) handleTelegramTest(w http.ResponseWriter, r *http.Request) {
	var req telegramTestRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	var n notify.Notifier
	if req.Token != "" && req.ChatID != "" {
		n = notify.NewTelegram(req.Token, req.ChatID)
	} else {
		var err error
		if n, err = s.notifier(r.Context()); err != nil {
			writeError(w, err)
			return
		}
	}
	if n == nil {
		writeError(w, notify.ErrNotConfigured)
		return
	}

	if err := n.Send(r.Context(), notify.TestMessage); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "test message sent"})
}
