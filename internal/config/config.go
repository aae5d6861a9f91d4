package config

import (
	"fmt"
	"time"

	"github.com/crimecast/crimecast/internal/utils"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Forecast  ForecastConfig  `mapstructure:"forecast"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Events    EventsConfig    `mapstructure:"events"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`      // Bind address for server (e.g., 0.0.0.0 for all interfaces)
	HTTPPort     int           `mapstructure:"http_port"` // HTTP server port
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatasetConfig locates the crime CSV and names its columns
type DatasetConfig struct {
	Path    string        `mapstructure:"path"`
	Columns ColumnsConfig `mapstructure:"columns"`
}

// ColumnsConfig maps dataset fields to CSV header names
type ColumnsConfig struct {
	Jurisdiction string `mapstructure:"jurisdiction"`
	Category     string `mapstructure:"category"`
	Period       string `mapstructure:"period"`
	Value        string `mapstructure:"value"`
}

// ForecastConfig controls model fitting and the forecast runner
type ForecastConfig struct {
	DefaultHorizon    int           `mapstructure:"default_horizon"`
	MaxHorizon        int           `mapstructure:"max_horizon"`
	MaxIterations     int           `mapstructure:"max_iterations"`     // Optimiser iteration cap
	Tolerance         float64       `mapstructure:"tolerance"`          // Relative log-likelihood change treated as converged
	GradientThreshold float64       `mapstructure:"gradient_threshold"` // Gradient norm treated as converged
	MinMargin         int           `mapstructure:"min_margin"`         // Spare observations beyond the model's lags
	FitTimeout        time.Duration `mapstructure:"fit_timeout"`        // Wall-clock bound on one fit
	Concurrent        bool          `mapstructure:"concurrent"`         // Fit both families in parallel
}

// CacheConfig represents forecast cache configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // none, memory (default), redis
	Size int           `mapstructure:"size"` // Max entries for the memory cache
	TTL  time.Duration `mapstructure:"ttl"`

	// Redis-specific options
	RedisURL      string `mapstructure:"redis_url"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPrefix   string `mapstructure:"redis_prefix"`
}

// EventsConfig represents event publishing configuration
type EventsConfig struct {
	Type     string `mapstructure:"type"`     // none (default), memory, nats, kafka, redis
	URL      string `mapstructure:"url"`      // Server URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Username string `mapstructure:"username"` // Optional authentication
	Password string `mapstructure:"password"` // Optional authentication
	Subject  string `mapstructure:"subject"`  // Subject/topic/stream for completed runs

	// Redis-specific options
	RedisDB     int    `mapstructure:"redis_db"`
	RedisStream string `mapstructure:"redis_stream"` // Stream prefix (default: "crimecast")

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// RateLimitConfig represents the global request rate limit
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, UnixMs, etc
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Dataset.Validate(); err != nil {
		return fmt.Errorf("dataset config: %w", err)
	}

	if err := c.Forecast.Validate(); err != nil {
		return fmt.Errorf("forecast config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events config: %w", err)
	}

	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate_limit config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}

	return nil
}

// Validate validates dataset configuration
func (c *DatasetConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("dataset.path is required")
	}

	cols := c.Columns
	if cols.Jurisdiction == "" || cols.Category == "" || cols.Period == "" || cols.Value == "" {
		return fmt.Errorf("dataset.columns must name every column")
	}

	return nil
}

// Validate validates forecast configuration
func (c *ForecastConfig) Validate() error {
	if c.MaxHorizon < 1 {
		return fmt.Errorf("forecast.max_horizon must be at least 1")
	}

	if c.DefaultHorizon < 1 || c.DefaultHorizon > c.MaxHorizon {
		return fmt.Errorf("forecast.default_horizon must be between 1 and max_horizon")
	}

	if c.MaxIterations < 1 {
		return fmt.Errorf("forecast.max_iterations must be at least 1")
	}

	if c.Tolerance <= 0 || c.Tolerance >= 1 {
		return fmt.Errorf("forecast.tolerance must be in (0, 1)")
	}

	if c.GradientThreshold < 0 {
		return fmt.Errorf("forecast.gradient_threshold cannot be negative")
	}

	if c.MinMargin < 0 {
		return fmt.Errorf("forecast.min_margin cannot be negative")
	}

	if c.FitTimeout < 0 {
		return fmt.Errorf("forecast.fit_timeout cannot be negative")
	}

	return nil
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	switch utils.CacheType(c.Type) {
	case utils.CacheTypeNone:
	case utils.CacheTypeMemory:
		if c.Size < 1 {
			return fmt.Errorf("cache.size must be at least 1")
		}
	case utils.CacheTypeRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required for redis cache")
		}
	default:
		return fmt.Errorf("cache.type must be one of: none, memory, redis")
	}

	if c.TTL < 0 {
		return fmt.Errorf("cache.ttl cannot be negative")
	}

	return nil
}

// Validate validates events configuration
func (c *EventsConfig) Validate() error {
	switch utils.QueueType(c.Type) {
	case utils.QueueTypeNone, utils.QueueTypeMemory:
	case utils.QueueTypeNATS, utils.QueueTypeRedis:
		if c.URL == "" {
			return fmt.Errorf("events.url is required for %s", c.Type)
		}
	case utils.QueueTypeKafka:
		if len(c.KafkaBrokers) == 0 && c.URL == "" {
			return fmt.Errorf("events.kafka_brokers or events.url is required for kafka")
		}
	default:
		return fmt.Errorf("events.type must be one of: none, memory, nats, kafka, redis")
	}

	if c.Type != string(utils.QueueTypeNone) && c.Subject == "" {
		return fmt.Errorf("events.subject is required")
	}

	return nil
}

// Validate validates rate limit configuration
func (c *RateLimitConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate_limit.requests_per_second must be positive")
	}

	if c.Burst < 1 {
		return fmt.Errorf("rate_limit.burst must be at least 1")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
