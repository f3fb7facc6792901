package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything read from the environment at startup.
// Durable runtime settings (welcome text, quality, …) live in
// internal/settings instead.
type Config struct {
	TelegramToken   string
	ChannelUsername string // without leading @; empty disables the gate
	AdminIDs        []int64

	WebhookBaseURL string // empty -> long polling
	ListenAddr     string

	DBPath       string
	SettingsPath string
	DownloadsDir string

	FetchTimeout      time.Duration
	MembershipTimeout time.Duration

	LogLevel string
}

func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken:     strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		ChannelUsername:   strings.TrimPrefix(strings.TrimSpace(os.Getenv("CHANNEL_USERNAME")), "@"),
		AdminIDs:          parseAdminIDs(os.Getenv("ADMIN_IDS")),
		WebhookBaseURL:    strings.TrimRight(os.Getenv("WEBHOOK_BASE_URL"), "/"),
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		DBPath:            getEnv("DB_PATH", "bot.db"),
		SettingsPath:      getEnv("SETTINGS_PATH", "config.json"),
		DownloadsDir:      getEnv("DOWNLOADS_DIR", "downloads"),
		FetchTimeout:      getDuration("FETCH_TIMEOUT", 300*time.Second),
		MembershipTimeout: getDuration("MEMBERSHIP_TIMEOUT", 5*time.Second),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

func parseAdminIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}
