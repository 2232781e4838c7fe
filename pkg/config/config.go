package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all client configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Exchange API
	Host      string
	APIKey    string
	StreamURL string

	// Chain
	ChainID               int64
	RPCURL                string
	PrivateKey            string
	FunderAddress         string
	ConditionalTokensAddr string

	// Caching
	QuoteTokensCacheTTL time.Duration
	MarketCacheTTL      time.Duration

	// Order defaults
	MaxPriceDecimals int

	// Journal
	JournalMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Exchange API
		Host:      os.Getenv("OPINION_HOST"),
		APIKey:    os.Getenv("OPINION_API_KEY"),
		StreamURL: getEnvOrDefault("OPINION_WS_URL", "wss://ws.opinion.trade"),

		// Chain
		ChainID:               getInt64OrDefault("CHAIN_ID", 56),
		RPCURL:                os.Getenv("RPC_URL"),
		PrivateKey:            os.Getenv("PRIVATE_KEY"),
		FunderAddress:         os.Getenv("FUNDER_ADDRESS"),
		ConditionalTokensAddr: getEnvOrDefault("CONDITIONAL_TOKENS_ADDR", "0xAD1a38cEc043e70E83a3eC30443dB285ED10D774"),

		// Caching defaults
		QuoteTokensCacheTTL: getDurationOrDefault("QUOTE_TOKENS_CACHE_TTL", 1*time.Hour),
		MarketCacheTTL:      getDurationOrDefault("MARKET_CACHE_TTL", 5*time.Minute),

		// Order defaults
		MaxPriceDecimals: getIntOrDefault("MAX_PRICE_DECIMALS", 3),

		// Journal defaults
		JournalMode:  getEnvOrDefault("JOURNAL_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "opinion"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "opinion123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "opinion_clob"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("OPINION_HOST cannot be empty")
	}

	if c.ChainID <= 0 {
		return fmt.Errorf("CHAIN_ID must be positive, got %d", c.ChainID)
	}

	if c.MaxPriceDecimals < 1 || c.MaxPriceDecimals > 6 {
		return fmt.Errorf("MAX_PRICE_DECIMALS must be between 1 and 6, got %d", c.MaxPriceDecimals)
	}

	if c.JournalMode != "postgres" && c.JournalMode != "console" {
		return fmt.Errorf("JOURNAL_MODE must be 'postgres' or 'console', got %q", c.JournalMode)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
