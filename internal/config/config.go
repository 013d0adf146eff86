// Package config loads harvester tunables via Viper. Reddit credentials
// stay in the environment (see the collector factory); this covers the
// knobs that have sane defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures the service configuration knobs.
type Config struct {
	Rate      RateConfig      `mapstructure:"rate"`
	Crawl     CrawlConfig     `mapstructure:"crawl"`
	Sink      SinkConfig      `mapstructure:"sink"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

// RateConfig governs local request budgeting and cooldowns.
type RateConfig struct {
	WindowSeconds   int `mapstructure:"window_seconds"`
	SoftCap         int `mapstructure:"soft_cap"`
	CooldownSeconds int `mapstructure:"cooldown_seconds"`
	StrategyPauseMs int `mapstructure:"strategy_pause_ms"`
}

// CrawlConfig holds the default stream budgets; CLI flags override them.
type CrawlConfig struct {
	PageSize              int `mapstructure:"page_size"`
	BatchTimeoutSeconds   int `mapstructure:"batch_timeout_seconds"`
	OverallTimeoutSeconds int `mapstructure:"overall_timeout_seconds"`
}

// SinkConfig selects and configures the persistence sink.
type SinkConfig struct {
	Mode string `mapstructure:"mode"` // postgres | ndjson
	DSN  string `mapstructure:"dsn"`
	Path string `mapstructure:"path"`
}

// DashboardConfig controls the optional summary dashboard.
type DashboardConfig struct {
	Port string `mapstructure:"port"`
}

// Load builds a Config from an optional file plus HARVESTER_* environment
// variables.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HARVESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rate.window_seconds", 60)
	v.SetDefault("rate.soft_cap", 95)
	v.SetDefault("rate.cooldown_seconds", 60)
	v.SetDefault("rate.strategy_pause_ms", 1500)
	v.SetDefault("crawl.page_size", 100)
	v.SetDefault("crawl.batch_timeout_seconds", 60)
	v.SetDefault("crawl.overall_timeout_seconds", 400)
	v.SetDefault("sink.mode", "ndjson")
	v.SetDefault("sink.path", "data/records.ndjson")
	v.SetDefault("dashboard.port", "8080")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Rate.SoftCap <= 0 {
		return fmt.Errorf("rate.soft_cap must be > 0")
	}
	if c.Rate.WindowSeconds <= 0 {
		return fmt.Errorf("rate.window_seconds must be > 0")
	}
	if c.Crawl.PageSize <= 0 || c.Crawl.PageSize > 100 {
		return fmt.Errorf("crawl.page_size must be in 1..100")
	}
	if c.Sink.Mode == "postgres" && c.Sink.DSN == "" {
		return fmt.Errorf("sink.dsn must be set when sink.mode is postgres")
	}
	return nil
}

// RateWindow returns the budget window as a duration.
func (c Config) RateWindow() time.Duration {
	return time.Duration(c.Rate.WindowSeconds) * time.Second
}

// RateCooldown returns the remote rate-limit back-off as a duration.
func (c Config) RateCooldown() time.Duration {
	return time.Duration(c.Rate.CooldownSeconds) * time.Second
}

// StrategyPause returns the inter-strategy pause as a duration.
func (c Config) StrategyPause() time.Duration {
	return time.Duration(c.Rate.StrategyPauseMs) * time.Millisecond
}
