package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Cloudflare R2
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string

	// DigitalOcean Spaces
	DOAccessKeyID     string
	DOSecretAccessKey string
	DORegion          string
	DOBucketName      string

	// Server
	ServerPort string

	// Sync
	SyncEndpoint        string // remote sync endpoint; defaults to this server's own
	SyncIntervalMinutes int    // background auto-sync cadence (default: 5)

	// Paths
	LocalStoreFile string // $CONFIG_DIR/vidvault.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file.
// Provider credentials are deliberately not required here: an incomplete
// provider is reported per request as an unconfigured condition, never as
// a startup failure.
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DO_SPACES_REGION", "sfo3")
	viper.SetDefault("DO_SPACES_BUCKET_NAME", "my-movies")
	viper.SetDefault("SYNC_INTERVAL_MINUTES", 5)

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "vidvault")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		// Cloudflare R2
		R2AccountID:       viper.GetString("R2_ACCOUNT_ID"),
		R2AccessKeyID:     viper.GetString("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: viper.GetString("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      viper.GetString("R2_BUCKET_NAME"),

		// DigitalOcean Spaces
		DOAccessKeyID:     viper.GetString("DO_SPACES_ACCESS_KEY_ID"),
		DOSecretAccessKey: viper.GetString("DO_SPACES_SECRET_ACCESS_KEY"),
		DORegion:          viper.GetString("DO_SPACES_REGION"),
		DOBucketName:      viper.GetString("DO_SPACES_BUCKET_NAME"),

		// Server
		ServerPort: viper.GetString("SERVER_PORT"),

		// Sync
		SyncEndpoint:        viper.GetString("SYNC_ENDPOINT"),
		SyncIntervalMinutes: viper.GetInt("SYNC_INTERVAL_MINUTES"),

		// Paths
		LocalStoreFile: filepath.Join(configDir, "vidvault.db"),

		// Logging
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// Unset sync endpoint means this deployment syncs against itself
	if config.SyncEndpoint == "" {
		config.SyncEndpoint = fmt.Sprintf("http://localhost:%s/api/sync", config.ServerPort)
	}

	return config, nil
}
