// Package notify delivers renewal reminders.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	telegramBaseURL = "https://api.telegram.org"
	requestTimeout  = 10 * time.Second
	maxBodySize     = 64 << 10
)

var (
	// ErrNotConfigured indicates missing bot token or chat id.
	ErrNotConfigured = errors.New("notify: telegram is not configured")
	// ErrUnauthorized indicates the bot token was rejected.
	ErrUnauthorized = errors.New("notify: telegram rejected the bot token")
	// ErrRateLimited indicates the Bot API rate limit was hit.
	ErrRateLimited = errors.New("notify: telegram rate limited")
)

// Notifier sends a plain-text message somewhere a person will see it.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Telegram sends messages through the Telegram Bot API.
type Telegram struct {
	token   string
	chatID  string
	baseURL string
	http    *http.Client
}

// NewTelegram creates a Telegram notifier. Returns nil if token or chatID
// is empty.
func NewTelegram(token, chatID string) *Telegram {
	token, chatID = strings.TrimSpace(token), strings.TrimSpace(chatID)
	if token == "" || chatID == "" {
		return nil
	}
	return &Telegram{
		token:   token,
		chatID:  chatID,
		baseURL: telegramBaseURL,
		http:    &http.Client{},
	}
}

// Send posts text to the configured chat.
func (t *Telegram) Send(ctx context.Context, text string) error {
	if t == nil {
		return ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("chat_id", t.chatID)
	form.Set("text", text)

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("notify: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.http.Do(req) //nolint:gosec // URL is built from the fixed API base
	if err != nil {
		return fmt.Errorf("notify: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusNotFound:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("notify: reading response: %w", err)
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("notify: parsing response (status %d): %w", resp.StatusCode, err)
	}
	if !result.OK {
		return fmt.Errorf("notify: telegram error: %s", result.Description)
	}

	slog.Debug("telegram message sent", "chars", len(text))
	return nil
}

// LogNotifier writes messages to the structured log. It is used when no
// delivery channel is configured.
type LogNotifier struct{}

// Send logs text at info level.
func (LogNotifier) Send(_ context.Context, text string) error {
	slog.Info("reminder", "message", text)
	return nil
}

// Setting keys holding Telegram credentials.
const (
	SettingTelegramToken  = "telegram_token"
	SettingTelegramChatID = "telegram_chat_id"
)

// FromSettings builds a Telegram notifier from stored settings, falling back
// to token and chatID for keys that are unset. It returns nil when either
// credential is missing.
func FromSettings(settings map[string]string, token, chatID string) Notifier {
	if v := settings[SettingTelegramToken]; v != "" {
		token = v
	}
	if v := settings[SettingTelegramChatID]; v != "" {
		chatID = v
	}
	t := NewTelegram(token, chatID)
	if t == nil {
		return nil
	}
	return t
}
