package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Discord configuration
	Token   string
	AppID   string
	GuildID string

	// Storage
	StorageType string // "memory" or "sqlite"
	DataDir     string

	// Audit archive (optional)
	ElasticsearchURL      string
	ElasticsearchUser     string
	ElasticsearchPassword string

	// Economy
	SwapRate int64 // units of COIN per one GEM

	// Environment
	Environment string // "development" or "production"
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Only return error if file exists but couldn't be loaded
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	// Get working directory for resource paths
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg := &Config{
		Token:                 os.Getenv("DISCORD_TOKEN"),
		AppID:                 os.Getenv("APP_ID"),
		GuildID:               os.Getenv("GUILD_ID"),
		StorageType:           getEnvWithDefault("STORAGE_TYPE", "sqlite"),
		DataDir:               getEnvWithDefault("DATA_DIR", filepath.Join(wd, "data")),
		ElasticsearchURL:      os.Getenv("ELASTICSEARCH_URL"),
		ElasticsearchUser:     os.Getenv("ELASTICSEARCH_USER"),
		ElasticsearchPassword: os.Getenv("ELASTICSEARCH_PASSWORD"),
		Environment:           getEnvWithDefault("ENVIRONMENT", "development"),
	}

	rate, err := strconv.ParseInt(getEnvWithDefault("SWAP_RATE", "100"), 10, 64)
	if err != nil || rate <= 0 {
		return nil, fmt.Errorf("SWAP_RATE must be a positive integer")
	}
	cfg.SwapRate = rate

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// validate checks if all required configuration is present
func (c *Config) validate() error {
	if c.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.AppID == "" {
		return fmt.Errorf("APP_ID is required")
	}
	if c.StorageType != "memory" && c.StorageType != "sqlite" {
		return fmt.Errorf("STORAGE_TYPE must be memory or sqlite")
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// DatabasePath returns the sqlite database location under the data dir
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "sentenza.db")
}

func getEnvWithDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
