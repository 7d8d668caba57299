package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	BotToken        string
	ReportChannelID int64 // staff channel receiving assembled reports
	AdminChatID     int64 // optional: admin alerts + /stats access; 0 = disabled

	// Cooldown between accepted messages from the same user
	Cooldown time.Duration

	// Bot mode configuration
	WebhookMode bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL  string // URL for webhook (required if WebhookMode is true)

	// ClickHouse configuration for the report archive
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseUseTLS   bool

	UseMemoryStore bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	// Telegram Bot Token (required)
	config.BotToken = os.Getenv("BOT_TOKEN")
	if config.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	// Report channel (required)
	channelStr := os.Getenv("REPORT_CHANNEL_ID")
	if channelStr == "" {
		return nil, fmt.Errorf("REPORT_CHANNEL_ID is required")
	}
	channelID, err := strconv.ParseInt(channelStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_CHANNEL_ID: %w", err)
	}
	config.ReportChannelID = channelID

	// Admin chat (optional)
	if adminStr := os.Getenv("ADMIN_CHAT_ID"); adminStr != "" {
		adminID, err := strconv.ParseInt(adminStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_CHAT_ID: %w", err)
		}
		config.AdminChatID = adminID
	}

	// Cooldown between accepted messages (default 15s)
	config.Cooldown = 15 * time.Second
	if cooldownStr := os.Getenv("COOLDOWN_SECONDS"); cooldownStr != "" {
		seconds, err := strconv.Atoi(cooldownStr)
		if err != nil || seconds < 0 {
			return nil, fmt.Errorf("invalid COOLDOWN_SECONDS: %s", cooldownStr)
		}
		config.Cooldown = time.Duration(seconds) * time.Second
	}

	// Bot mode configuration
	config.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if config.WebhookMode {
		config.WebhookURL = os.Getenv("WEBHOOK_URL")
		if config.WebhookURL == "" {
			return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}

	// Use in-memory report archive (default: false)
	config.UseMemoryStore = os.Getenv("USE_MEMORY_STORE") == "true"

	// ClickHouse configuration (required if not using the memory store)
	if !config.UseMemoryStore {
		config.ClickHouseHost = os.Getenv("CLICKHOUSE_HOST")
		if config.ClickHouseHost == "" {
			return nil, fmt.Errorf("CLICKHOUSE_HOST is required when USE_MEMORY_STORE is not set")
		}

		portStr := os.Getenv("CLICKHOUSE_PORT")
		if portStr == "" {
			config.ClickHousePort = 9000 // Default ClickHouse native port
		} else {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return nil, fmt.Errorf("invalid CLICKHOUSE_PORT: %w", err)
			}
			config.ClickHousePort = port
		}

		config.ClickHouseDatabase = os.Getenv("CLICKHOUSE_DATABASE")
		if config.ClickHouseDatabase == "" {
			config.ClickHouseDatabase = "default"
		}

		config.ClickHouseUser = os.Getenv("CLICKHOUSE_USER")
		if config.ClickHouseUser == "" {
			config.ClickHouseUser = "default"
		}

		config.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")
		// Password is optional, can be empty

		config.ClickHouseUseTLS = os.Getenv("CLICKHOUSE_USE_TLS") == "true"
	}

	return config, nil
}
