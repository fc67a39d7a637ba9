// Package config loads streamtable's runtime configuration from the
// environment, with os.Getenv defaults rather than a config file or flags.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds everything needed to construct an azdata.Client and a Store
// against a live Azure Data Tables account (or Azurite).
type Config struct {
	ServiceURL     string
	TableName      string
	AccountName    string
	AccountKey     string
	UseDefaultAuth bool
	AccountCount   int
	LogLevel       string
}

// Load reads Config from the environment, falling back to development
// defaults (an Azurite-shaped local endpoint) for anything unset.
func Load() (Config, error) {
	cfg := Config{
		ServiceURL:     getenv("STREAMTABLE_SERVICE_URL", "http://127.0.0.1:10002/devstoreaccount1"),
		TableName:      getenv("STREAMTABLE_TABLE", "streams"),
		AccountName:    getenv("STREAMTABLE_ACCOUNT_NAME", "devstoreaccount1"),
		AccountKey:     os.Getenv("STREAMTABLE_ACCOUNT_KEY"),
		UseDefaultAuth: getenv("STREAMTABLE_USE_DEFAULT_AUTH", "false") == "true",
		LogLevel:       getenv("STREAMTABLE_LOG_LEVEL", "info"),
	}

	accountCount, err := strconv.Atoi(getenv("STREAMTABLE_ACCOUNT_COUNT", "1"))
	if err != nil {
		return Config{}, fmt.Errorf("config: STREAMTABLE_ACCOUNT_COUNT: %w", err)
	}
	if accountCount < 1 {
		return Config{}, fmt.Errorf("config: STREAMTABLE_ACCOUNT_COUNT must be >= 1, got %d", accountCount)
	}
	cfg.AccountCount = accountCount

	if !cfg.UseDefaultAuth && cfg.AccountKey == "" {
		return Config{}, fmt.Errorf("config: STREAMTABLE_ACCOUNT_KEY is required unless STREAMTABLE_USE_DEFAULT_AUTH=true")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
