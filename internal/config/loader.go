package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/crimecast/crimecast/internal/utils"
)

// EnvPrefix is the prefix of environment variable overrides,
// e.g. CRIMECAST_SERVER_HTTP_PORT.
const EnvPrefix = "CRIMECAST"

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/crimecast")
	}

	setDefaults(v)

	// Enable environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults mirrors DefaultConfig so every key is known to viper and
// can be overridden from the environment.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("dataset.path", d.Dataset.Path)
	v.SetDefault("dataset.columns.jurisdiction", d.Dataset.Columns.Jurisdiction)
	v.SetDefault("dataset.columns.category", d.Dataset.Columns.Category)
	v.SetDefault("dataset.columns.period", d.Dataset.Columns.Period)
	v.SetDefault("dataset.columns.value", d.Dataset.Columns.Value)

	v.SetDefault("forecast.default_horizon", d.Forecast.DefaultHorizon)
	v.SetDefault("forecast.max_horizon", d.Forecast.MaxHorizon)
	v.SetDefault("forecast.max_iterations", d.Forecast.MaxIterations)
	v.SetDefault("forecast.tolerance", d.Forecast.Tolerance)
	v.SetDefault("forecast.gradient_threshold", d.Forecast.GradientThreshold)
	v.SetDefault("forecast.min_margin", d.Forecast.MinMargin)
	v.SetDefault("forecast.fit_timeout", d.Forecast.FitTimeout)
	v.SetDefault("forecast.concurrent", d.Forecast.Concurrent)

	v.SetDefault("cache.type", d.Cache.Type)
	v.SetDefault("cache.size", d.Cache.Size)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.redis_url", d.Cache.RedisURL)
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.redis_prefix", d.Cache.RedisPrefix)

	v.SetDefault("events.type", d.Events.Type)
	v.SetDefault("events.url", d.Events.URL)
	v.SetDefault("events.username", "")
	v.SetDefault("events.password", "")
	v.SetDefault("events.subject", d.Events.Subject)
	v.SetDefault("events.redis_db", 0)
	v.SetDefault("events.redis_stream", d.Events.RedisStream)
	v.SetDefault("events.kafka_brokers", []string{})

	v.SetDefault("auth.enabled", d.Auth.Enabled)
	v.SetDefault("auth.api_keys", []string{})

	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.requests_per_second", d.RateLimit.RequestsPerSecond)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
	v.SetDefault("logging.time_format", "")
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			HTTPPort:     8080,
			ReadTimeout:  utils.DefaultRequestTimeout,
			WriteTimeout: 2 * utils.DefaultRequestTimeout,
		},
		Dataset: DatasetConfig{
			Path: "./data/crimes.csv",
			Columns: ColumnsConfig{
				Jurisdiction: "STATE/UT",
				Category:     "Purpose",
				Period:       "Year",
				Value:        "Total No. of cases reported",
			},
		},
		Forecast: ForecastConfig{
			DefaultHorizon:    utils.DefaultHorizon,
			MaxHorizon:        utils.MaxHorizon,
			MaxIterations:     500,
			Tolerance:         1e-6,
			GradientThreshold: 1e-8,
			MinMargin:         2,
			FitTimeout:        utils.DefaultFitTimeout,
			Concurrent:        true,
		},
		Cache: CacheConfig{
			Type:        string(utils.CacheTypeMemory),
			Size:        utils.DefaultCacheSize,
			TTL:         utils.DefaultCacheTTL,
			RedisURL:    "redis://localhost:6379",
			RedisPrefix: "crimecast:forecast",
		},
		Events: EventsConfig{
			Type:        string(utils.QueueTypeNone),
			URL:         "nats://localhost:4222",
			Subject:     utils.SubjectForecastCompleted,
			RedisStream: "crimecast",
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
