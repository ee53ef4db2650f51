package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Sink names accepted by the SINK variable.
const (
	SinkDiscord = "discord"
	SinkDesktop = "desktop"
	SinkLog     = "log"
)

const (
	defaultStatusFilter   = "To Do"
	defaultChecksPerCycle = 10
	defaultCheckInterval  = 30 * time.Second
	defaultBackoffDelay   = 60 * time.Second
)

// Config is everything the process needs at startup. Credentials are
// validated here: a missing token or database id is a fatal startup error,
// never something discovered mid-loop.
type Config struct {
	NotionToken       string
	DatabaseID        string
	DiscordWebhookURL string

	// Sink selects the notification target: discord, desktop or log.
	Sink string

	// StatusFilter narrows the fetch to one status value. Empty disables
	// the status clause entirely.
	StatusFilter string

	ChecksPerCycle int
	CheckInterval  time.Duration
	BackoffDelay   time.Duration

	LogLevel string
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	// A missing .env just means the environment is set some other way.
	_ = godotenv.Load()

	cfg := &Config{
		NotionToken:       os.Getenv("NOTION_TOKEN"),
		DatabaseID:        os.Getenv("NOTION_DATABASE_ID"),
		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
		Sink:              os.Getenv("SINK"),
		StatusFilter:      defaultStatusFilter,
		ChecksPerCycle:    defaultChecksPerCycle,
		CheckInterval:     defaultCheckInterval,
		BackoffDelay:      defaultBackoffDelay,
		LogLevel:          os.Getenv("LOG_LEVEL"),
	}

	if cfg.NotionToken == "" {
		return nil, fmt.Errorf("NOTION_TOKEN must be set in environment")
	}
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("NOTION_DATABASE_ID must be set in environment")
	}

	if cfg.Sink == "" {
		cfg.Sink = SinkDiscord
	}
	switch cfg.Sink {
	case SinkDiscord:
		if cfg.DiscordWebhookURL == "" {
			return nil, fmt.Errorf("DISCORD_WEBHOOK_URL must be set when SINK is %q", SinkDiscord)
		}
	case SinkDesktop, SinkLog:
	default:
		return nil, fmt.Errorf("unknown SINK %q (want %s, %s or %s)", cfg.Sink, SinkDiscord, SinkDesktop, SinkLog)
	}

	// Present-but-empty means "no status clause", unlike an unset variable
	// which keeps the default.
	if v, ok := os.LookupEnv("NOTION_STATUS_FILTER"); ok {
		cfg.StatusFilter = v
	}

	if v := os.Getenv("REFRESH_CHECKS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid REFRESH_CHECKS %q", v)
		}
		cfg.ChecksPerCycle = n
	}
	if v := os.Getenv("CHECK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid CHECK_INTERVAL %q", v)
		}
		cfg.CheckInterval = d
	}
	if v := os.Getenv("BACKOFF_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid BACKOFF_DELAY %q", v)
		}
		cfg.BackoffDelay = d
	}

	return cfg, nil
}
