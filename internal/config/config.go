// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limiting"`
	Outbound  OutboundConfig  `mapstructure:"outbound"`
	Scrape    ScrapeConfig    `mapstructure:"scrape"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Events    EventsConfig    `mapstructure:"events"`
	Storage   StorageConfig   `mapstructure:"storage"`
	DB        DBConfig        `mapstructure:"db"`
	PubSub    PubSubConfig    `mapstructure:"pubsub"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port       int    `mapstructure:"port"`
	AuthAPIKey string `mapstructure:"api_key"`
	// PerClientRateLimit gates API callers by requester IP, on top of the
	// core scrape gate.
	PerClientRateLimit bool `mapstructure:"per_client_rate_limit"`
}

// HTTPConfig configures the outbound HTTP client.
type HTTPConfig struct {
	TimeoutSeconds        int               `mapstructure:"timeout_seconds"`
	ConnectTimeoutSeconds int               `mapstructure:"connect_timeout_seconds"`
	Retries               int               `mapstructure:"retries"`
	RetryDelayMs          int               `mapstructure:"retry_delay_ms"`
	UserAgent             string            `mapstructure:"user_agent"`
	Headers               map[string]string `mapstructure:"headers"`
}

// CacheConfig governs result caching.
type CacheConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
	Prefix     string `mapstructure:"prefix"`
}

// RateLimitConfig governs the caller-facing admission gate.
type RateLimitConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	MaxAttempts   int    `mapstructure:"max_attempts"`
	WindowSeconds int    `mapstructure:"window_seconds"`
	Prefix        string `mapstructure:"prefix"`
}

// OutboundConfig paces requests toward the upstream site.
type OutboundConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// ScrapeConfig tunes the orchestrator.
type ScrapeConfig struct {
	MaxConcurrency   int `mapstructure:"max_concurrency"`
	ActivityRingSize int `mapstructure:"activity_ring_size"`
}

// LoggingConfig toggles zap output.
type LoggingConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	Development bool `mapstructure:"development"`
}

// EventsConfig toggles domain event dispatch.
type EventsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// StorageConfig controls raw-HTML snapshot archival.
type StorageConfig struct {
	SnapshotsEnabled bool   `mapstructure:"snapshots_enabled"`
	GCSBucket        string `mapstructure:"gcs_bucket"`
	Prefix           string `mapstructure:"prefix"`
}

// DBConfig controls the Postgres audit log store.
type DBConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// PubSubConfig holds metadata for publish-subscribe notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TIKTOK_SCRAPER")
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
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.per_client_rate_limit", false)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.connect_timeout_seconds", 10)
	v.SetDefault("http.retries", 3)
	v.SetDefault("http.retry_delay_ms", 1000)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl_seconds", 3600)
	v.SetDefault("cache.prefix", "tiktok_scraper")
	v.SetDefault("rate_limiting.enabled", true)
	v.SetDefault("rate_limiting.max_attempts", 60)
	v.SetDefault("rate_limiting.window_seconds", 60)
	v.SetDefault("rate_limiting.prefix", "tiktok_scraper_rate_limit")
	v.SetDefault("outbound.rps", 2.0)
	v.SetDefault("outbound.burst", 1)
	v.SetDefault("scrape.max_concurrency", 4)
	v.SetDefault("scrape.activity_ring_size", 50)
	v.SetDefault("logging.enabled", true)
	v.SetDefault("logging.development", true)
	v.SetDefault("events.enabled", true)
	v.SetDefault("storage.snapshots_enabled", false)
	v.SetDefault("storage.prefix", "snapshots")
	v.SetDefault("db.table", "tiktok_scraper_logs")
}

// Validate checks cross-field consistency; fields with safe defaults are
// repaired by the loader instead.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be positive")
	}
	if c.HTTP.ConnectTimeoutSeconds <= 0 {
		return fmt.Errorf("http.connect_timeout_seconds must be positive")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.MaxAttempts <= 0 {
			return fmt.Errorf("rate_limiting.max_attempts must be positive")
		}
		if c.RateLimit.WindowSeconds <= 0 {
			return fmt.Errorf("rate_limiting.window_seconds must be positive")
		}
	}
	if c.Storage.SnapshotsEnabled && c.Storage.GCSBucket == "" {
		return fmt.Errorf("storage.snapshots_enabled requires storage.gcs_bucket")
	}
	if c.PubSub.TopicName != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.topic_name requires pubsub.project_id")
	}
	return nil
}

// Timeout returns the outbound request timeout as a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ConnectTimeout returns the dial timeout as a duration.
func (c HTTPConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// RetryDelay returns the fixed wait between retry attempts.
func (c HTTPConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// TTL returns the cache entry lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Window returns the admission window as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}
