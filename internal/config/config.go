package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cypherlabdev/odds-ingestion-service/internal/cache"
	"github.com/cypherlabdev/odds-ingestion-service/internal/messaging"
	"github.com/cypherlabdev/odds-ingestion-service/internal/provider"
	"github.com/cypherlabdev/odds-ingestion-service/internal/store"
)

// Config holds all configuration for odds-ingestion-service. The
// mapstructure tags bind viper's snake_case keys to the struct fields; without
// them multi-word keys silently unmarshal to zero values.
type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ProviderConfig holds odds provider API configuration
type ProviderConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"` // required; no degraded mode without it
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	MaxPages       int           `mapstructure:"max_pages"`
	MaxEvents      int           `mapstructure:"max_events"`
	PageLimit      int           `mapstructure:"page_limit"`
}

// PostgresConfig holds persistent store configuration
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"` // required
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig holds Redis fallback-cache configuration
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// KafkaConfig holds Kafka publisher configuration
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("provider.base_url", "https://api.sportsgameodds.com/v2")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.timeout", 30*time.Second)
	v.SetDefault("provider.max_retries", 3)
	v.SetDefault("provider.retry_base_delay", 1*time.Second)
	v.SetDefault("provider.max_pages", 100)
	v.SetDefault("provider.max_events", 10000)
	v.SetDefault("provider.page_limit", 100)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 15*time.Minute)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "normalized_odds")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvPrefix("ODDS_INGESTION")
	v.AutomaticEnv()
	// Replace . with _ for environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal to struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Validate checks that required credentials are present. Missing credentials
// are a fatal startup error, not a degraded mode.
func (c *Config) Validate() error {
	if c.Provider.APIKey == "" {
		return fmt.Errorf("provider API key is required (set ODDS_INGESTION_PROVIDER_API_KEY)")
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres DSN is required (set ODDS_INGESTION_POSTGRES_DSN)")
	}
	return nil
}

// ToClientConfig converts config to the provider client configuration
func (c *ProviderConfig) ToClientConfig() provider.ClientConfig {
	return provider.ClientConfig{
		BaseURL:        c.BaseURL,
		APIKey:         c.APIKey,
		Timeout:        c.Timeout,
		MaxRetries:     c.MaxRetries,
		RetryBaseDelay: c.RetryBaseDelay,
		MaxPages:       c.MaxPages,
		MaxEvents:      c.MaxEvents,
		PageLimit:      c.PageLimit,
	}
}

// ToStoreConfig converts config to the store configuration
func (c *PostgresConfig) ToStoreConfig() store.StoreConfig {
	return store.StoreConfig{
		DSN:             c.DSN,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

// ToCacheConfig converts config to the event cache configuration
func (c *RedisConfig) ToCacheConfig() cache.RedisEventCacheConfig {
	return cache.RedisEventCacheConfig{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
		TTL:      c.TTL,
	}
}

// ToPublisherConfig converts config to the Kafka publisher configuration
func (c *KafkaConfig) ToPublisherConfig() messaging.KafkaPublisherConfig {
	return messaging.KafkaPublisherConfig{
		Brokers: c.Brokers,
		Topic:   c.Topic,
	}
}
