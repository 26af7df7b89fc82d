// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir        string // Base directory for backing files (always absolute)
	Port           int
	LogLevel       string
	DevMode        bool
	StoreBackend   string   // "json" (default) or "sqlite"
	GeminiAPIKey   string   // enables the chat and speech endpoints
	ChatModel      string   // model name for the chat orchestration loop
	BackupSpec     string   // cron expression for store snapshots, empty disables
	BackupRetain   int      // number of snapshots to keep
	AllowedOrigins []string // CORS origins
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "")
	if dataDir == "" {
		dataDir = filepath.Join(".", "tmp")
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:        absDataDir,
		Port:           getEnvAsInt("PORT", 8080),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		StoreBackend:   getEnv("STORE_BACKEND", "json"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		ChatModel:      getEnv("CHAT_MODEL", "gemini-2.5-flash"),
		BackupSpec:     getEnv("BACKUP_INTERVAL", "0 */6 * * *"),
		BackupRetain:   getEnvAsInt("BACKUP_RETAIN", 10),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q: must be json or sqlite", c.StoreBackend)
	}
	if c.BackupRetain < 1 {
		return fmt.Errorf("BACKUP_RETAIN must be at least 1, got %d", c.BackupRetain)
	}
	return nil
}

// ItemsFile returns the path to the items backing file.
func (c *Config) ItemsFile() string {
	return filepath.Join(c.DataDir, "items.json")
}

// InvestmentsFile returns the path to the investment accounts backing file.
func (c *Config) InvestmentsFile() string {
	return filepath.Join(c.DataDir, "investments.json")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
