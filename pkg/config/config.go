// Package config provides configuration management for qif-sync.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Ledger LedgerConfig
	MTP    MTPConfig
	Debug  bool
}

// LedgerConfig represents ledger and import-state configuration.
type LedgerConfig struct {
	Root      string // data root for ledger, run cache and mapping file
	Path      string // ledger database file (optional, derived from Root)
	CachePath string // run cache file (optional, derived from Root)
	Currency  string // default ISO 4217 currency code
	Mapping   string // account mapping file (optional)
}

// MTPConfig represents MTP device tool configuration.
type MTPConfig struct {
	FilesBin   string // mtp-files binary
	GetFileBin string // mtp-getfile binary
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	config := &Config{
		Ledger: LedgerConfig{
			Root:      getEnvOrDefault("QIF_SYNC_ROOT", "~/.qif-sync"),
			Path:      os.Getenv("QIF_SYNC_LEDGER"),
			CachePath: os.Getenv("QIF_SYNC_CACHE"),
			Currency:  getEnvOrDefault("QIF_SYNC_CURRENCY", "EUR"),
			Mapping:   os.Getenv("QIF_SYNC_MAPPING"),
		},
		MTP: MTPConfig{
			FilesBin:   getEnvOrDefault("MTP_FILES_BIN", "mtp-files"),
			GetFileBin: getEnvOrDefault("MTP_GETFILE_BIN", "mtp-getfile"),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Validate validates the configuration.
// It checks if all required fields are set.
func (c *Config) Validate(required ...string) error {
	var missing []string

	for _, field := range required {
		var value string
		switch field {
		case "ledger.root":
			value = c.Ledger.Root
		case "ledger.currency":
			value = c.Ledger.Currency
		case "mtp.filesBin":
			value = c.MTP.FilesBin
		case "mtp.getFileBin":
			value = c.MTP.GetFileBin
		}
		if value == "" {
			missing = append(missing, field)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
