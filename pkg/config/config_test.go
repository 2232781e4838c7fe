package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("OPINION_HOST", "https://api.example.com")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(56), cfg.ChainID)
	assert.Equal(t, 1*time.Hour, cfg.QuoteTokensCacheTTL)
	assert.Equal(t, 5*time.Minute, cfg.MarketCacheTTL)
	assert.Equal(t, 3, cfg.MaxPriceDecimals)
	assert.Equal(t, "console", cfg.JournalMode)
}

func TestLoadFromEnv_MissingHost(t *testing.T) {
	t.Setenv("OPINION_HOST", "")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPINION_HOST")
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("OPINION_HOST", "https://api.example.com")
	t.Setenv("CHAIN_ID", "97")
	t.Setenv("MARKET_CACHE_TTL", "30s")
	t.Setenv("MAX_PRICE_DECIMALS", "6")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, int64(97), cfg.ChainID)
	assert.Equal(t, 30*time.Second, cfg.MarketCacheTTL)
	assert.Equal(t, 6, cfg.MaxPriceDecimals)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad-chain-id",
			mutate:  func(c *Config) { c.ChainID = 0 },
			wantErr: "CHAIN_ID",
		},
		{
			name:    "price-decimals-too-large",
			mutate:  func(c *Config) { c.MaxPriceDecimals = 7 },
			wantErr: "MAX_PRICE_DECIMALS",
		},
		{
			name:    "bad-journal-mode",
			mutate:  func(c *Config) { c.JournalMode = "redis" },
			wantErr: "JOURNAL_MODE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Host:             "https://api.example.com",
				ChainID:          56,
				MaxPriceDecimals: 3,
				JournalMode:      "console",
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = NewLogger("loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
