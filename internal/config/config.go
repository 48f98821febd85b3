package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const appName = "subs"

// Config holds all subs configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Reminders  ReminderConfig   `toml:"reminders"`
	Telegram   TelegramConfig   `toml:"telegram"`
	FX         FXConfig         `toml:"fx"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds report preferences.
type GeneralConfig struct {
	WindowMonths    int    `toml:"window_months"`
	UpcomingDays    int    `toml:"upcoming_days"`
	DefaultCurrency string `toml:"default_currency"`
	DBPath          string `toml:"db_path,omitempty"`
}

// ReminderConfig controls renewal reminders.
type ReminderConfig struct {
	Enabled    bool  `toml:"enabled"`
	DaysBefore []int `toml:"days_before"`
	CheckHour  int   `toml:"check_hour"`
}

// TelegramConfig holds bot credentials for reminder delivery.
type TelegramConfig struct {
	BotToken string `toml:"bot_token,omitempty"`
	ChatID   string `toml:"chat_id,omitempty"`
}

// FXConfig controls exchange-rate lookups.
type FXConfig struct {
	Base      string             `toml:"base"`
	TTL       Duration           `toml:"ttl"`
	Endpoints []string           `toml:"endpoints,omitempty"`
	Fallback  map[string]float64 `toml:"fallback,omitempty"`
}

// ServerConfig holds daemon settings.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	PollInterval Duration `toml:"poll_interval"`
	EventsBuffer int      `toml:"events_buffer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// Duration is a time.Duration that reads and writes as "1h30m" in TOML.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			WindowMonths:    12,
			UpcomingDays:    30,
			DefaultCurrency: "CNY",
		},
		Reminders: ReminderConfig{
			Enabled:    true,
			DaysBefore: []int{7, 3, 1},
			CheckHour:  1,
		},
		FX: FXConfig{
			Base: "USD",
			TTL:  Duration{time.Hour},
			Endpoints: []string{
				"https://api.exchangerate-api.com/v4/latest/",
				"https://open.er-api.com/v6/latest/",
			},
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8000",
			PollInterval: Duration{time.Minute},
			EventsBuffer: 200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// DBPath returns the configured database path or the default under DataDir.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return expandHome(c.General.DBPath)
	}
	return filepath.Join(DataDir(), "subs.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile reads the config at path, returning defaults if it doesn't exist.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config location
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate rejects settings the reports cannot work with.
func (c Config) Validate() error {
	if c.General.WindowMonths < 1 || c.General.WindowMonths > 120 {
		return fmt.Errorf("config: general.window_months must be between 1 and 120, got %d", c.General.WindowMonths)
	}
	if c.General.UpcomingDays < 0 {
		return fmt.Errorf("config: general.upcoming_days must not be negative")
	}
	for _, d := range c.Reminders.DaysBefore {
		if d < 0 {
			return fmt.Errorf("config: reminders.days_before entries must not be negative, got %d", d)
		}
	}
	if c.Reminders.CheckHour < 0 || c.Reminders.CheckHour > 23 {
		return fmt.Errorf("config: reminders.check_hour must be 0-23, got %d", c.Reminders.CheckHour)
	}
	for code, rate := range c.FX.Fallback {
		if rate <= 0 {
			return fmt.Errorf("config: fx.fallback.%s must be positive", code)
		}
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(ConfigPath(), cfg)
}

// SaveFile writes the config to path.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// TelegramToken returns the bot token from env var or config, in that order.
func TelegramToken(cfg Config) string {
	if key := os.Getenv("SUBS_TELEGRAM_TOKEN"); key != "" {
		return key
	}
	return cfg.Telegram.BotToken
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, p[2:])
	}
	return p
}
