package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Storage backends
const (
	BackendSQLite     = "sqlite"
	BackendClickHouse = "clickhouse"
	BackendMemory     = "memory"
)

// Config holds the application configuration
type Config struct {
	TelegramToken string
	SuperAdminIDs []int64

	// Bot mode configuration
	WebhookMode bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL  string // URL for webhook (required if WebhookMode is true)
	Port        string

	StorageBackend string
	DatabaseFile   string

	// ClickHouse configuration
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseUseTLS   bool

	MaxFileSizeMB  int
	CaptionChannel string
	CaptionChat    string
	LogLevel       string
	LogFormat      string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	// Telegram Bot Token (required)
	config.TelegramToken = firstEnv("TELEGRAM_BOT_TOKEN", "BOT_TOKEN")
	if config.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	// Super admin IDs (required)
	idsStr := firstEnv("SUPER_ADMIN_IDS", "SUPER_ADMIN_ID")
	if idsStr == "" {
		return nil, fmt.Errorf("SUPER_ADMIN_IDS is required (comma-separated list of Telegram user IDs)")
	}
	ids, err := parseIDs(idsStr)
	if err != nil {
		return nil, err
	}
	config.SuperAdminIDs = ids

	// Bot mode configuration
	config.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if config.WebhookMode {
		config.WebhookURL = strings.TrimSuffix(os.Getenv("WEBHOOK_URL"), "/")
		if config.WebhookURL == "" {
			return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}
	config.Port = getEnv("PORT", "8080")

	config.StorageBackend = strings.ToLower(getEnv("STORAGE_BACKEND", BackendSQLite))
	switch config.StorageBackend {
	case BackendSQLite:
		config.DatabaseFile = getEnv("DATABASE_FILE", "bot_database.db")
	case BackendClickHouse:
		if err := config.loadClickHouse(); err != nil {
			return nil, err
		}
	case BackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (want sqlite, clickhouse or memory)", config.StorageBackend)
	}

	config.MaxFileSizeMB, err = getInt("MAX_FILE_SIZE_MB", 100)
	if err != nil {
		return nil, err
	}

	config.CaptionChannel = os.Getenv("CAPTION_CHANNEL_LINK")
	config.CaptionChat = os.Getenv("CAPTION_CHAT_LINK")

	config.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	config.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "json"))

	return config, nil
}

func (c *Config) loadClickHouse() error {
	c.ClickHouseHost = os.Getenv("CLICKHOUSE_HOST")
	if c.ClickHouseHost == "" {
		return fmt.Errorf("CLICKHOUSE_HOST is required when STORAGE_BACKEND is clickhouse")
	}

	port, err := getInt("CLICKHOUSE_PORT", 9000) // Default ClickHouse native port
	if err != nil {
		return err
	}
	c.ClickHousePort = port

	c.ClickHouseDatabase = getEnv("CLICKHOUSE_DATABASE", "default")
	c.ClickHouseUser = getEnv("CLICKHOUSE_USER", "default")
	// Password is optional, can be empty
	c.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")
	c.ClickHouseUseTLS = os.Getenv("CLICKHOUSE_USE_TLS") == "true"
	return nil
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, idStr := range strings.Split(s, ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID in SUPER_ADMIN_IDS: %s", idStr)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("SUPER_ADMIN_IDS contains no user IDs")
	}
	return ids, nil
}

// getEnv retrieves environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// firstEnv returns the first non-empty variable of keys
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func getInt(key string, defaultValue int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
