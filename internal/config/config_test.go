package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 95, cfg.Rate.SoftCap)
	assert.Equal(t, time.Minute, cfg.RateWindow())
	assert.Equal(t, time.Minute, cfg.RateCooldown())
	assert.Equal(t, 1500*time.Millisecond, cfg.StrategyPause())
	assert.Equal(t, 100, cfg.Crawl.PageSize)
	assert.Equal(t, 60, cfg.Crawl.BatchTimeoutSeconds)
	assert.Equal(t, 400, cfg.Crawl.OverallTimeoutSeconds)
	assert.Equal(t, "ndjson", cfg.Sink.Mode)
	assert.Equal(t, "8080", cfg.Dashboard.Port)
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero soft cap", func(c *Config) { c.Rate.SoftCap = 0 }, "soft_cap"},
		{"zero window", func(c *Config) { c.Rate.WindowSeconds = 0 }, "window_seconds"},
		{"oversized page", func(c *Config) { c.Crawl.PageSize = 250 }, "page_size"},
		{"postgres without dsn", func(c *Config) { c.Sink.Mode = "postgres" }, "sink.dsn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
