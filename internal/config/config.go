// Package config handles application configuration from environment variables.
package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds the application configuration.
type Config struct {
	FeedURL      string        `env:"FEED_URL, default=https://api.flickr.com/services/feeds/photos_public.gne"`
	FeedLang     string        `env:"FEED_LANG, default=en-us"`
	FeedMatchAll bool          `env:"FEED_MATCH_ALL, default=true"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT, default=30s"`
	FetchMaxBody int64         `env:"FETCH_MAX_BODY, default=5242880"`
	SafeHTTP     bool          `env:"SAFE_HTTP, default=true"`
	Retries      uint64        `env:"RETRIES, default=0"`
	RetryBackoff time.Duration `env:"RETRY_BACKOFF, default=1s"`

	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogFormat string `env:"LOG_FORMAT, default=text"`

	TelegramBotToken string   `env:"TELEGRAM_BOT_TOKEN"`
	AllowedUsers     UserList `env:"ALLOWED_USERS"`
	SendRate         float64  `env:"SEND_RATE, default=20"`

	MetricsAddr string `env:"METRICS_ADDR"`
}

// UserList is a comma-separated list of Telegram user IDs.
type UserList []int64

// EnvDecode implements envconfig.Decoder.
func (u *UserList) EnvDecode(val string) error {
	var ids UserList
	for _, s := range strings.Split(val, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		uid, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
		}
		ids = append(ids, uid)
	}
	*u = ids
	return nil
}

// Load reads configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from l.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if c.FetchMaxBody <= 0 {
		return fmt.Errorf("FETCH_MAX_BODY must be positive")
	}
	if c.RetryBackoff <= 0 {
		return fmt.Errorf("RETRY_BACKOFF must be positive")
	}
	if c.SendRate <= 0 {
		return fmt.Errorf("SEND_RATE must be positive")
	}
	return nil
}

// ValidateBot checks the settings the Telegram bot needs.
func (c *Config) ValidateBot() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}
