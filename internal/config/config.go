package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds the whole application configuration.
// Populated from environment variables; .env is loaded by main.
type Config struct {
	App    AppConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Review ReviewConfig
	Cache  CacheConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

// ReviewConfig bounds the review store's transaction retries.
type ReviewConfig struct {
	MaxTxAttempts    int
	TxInitialBackoff time.Duration
	TxMaxBackoff     time.Duration
}

// CacheConfig holds read-side TTLs.
type CacheConfig struct {
	BookTTL       time.Duration
	BookListTTL   time.Duration
	ReviewListTTL time.Duration
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Book Review API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", defaultJWTSecret),
			Issuer: getEnv("JWT_ISSUER", ""),
		},
		Review: ReviewConfig{
			MaxTxAttempts:    getEnvInt("REVIEW_TX_MAX_ATTEMPTS", 5),
			TxInitialBackoff: getEnvDuration("REVIEW_TX_INITIAL_BACKOFF", 10*time.Millisecond),
			TxMaxBackoff:     getEnvDuration("REVIEW_TX_MAX_BACKOFF", 500*time.Millisecond),
		},
		Cache: CacheConfig{
			BookTTL:       getEnvDuration("CACHE_BOOK_TTL", 60*time.Second),
			BookListTTL:   getEnvDuration("CACHE_BOOK_LIST_TTL", 60*time.Second),
			ReviewListTTL: getEnvDuration("CACHE_REVIEW_LIST_TTL", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate reports whether the configuration is usable.
func (c *Config) Validate() error {
	if c.App.Environment == "production" && c.JWT.Secret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.Review.MaxTxAttempts < 1 {
		return fmt.Errorf("REVIEW_TX_MAX_ATTEMPTS must be at least 1, got %d", c.Review.MaxTxAttempts)
	}
	if c.Review.TxMaxBackoff < c.Review.TxInitialBackoff {
		return fmt.Errorf("REVIEW_TX_MAX_BACKOFF (%s) must not be below REVIEW_TX_INITIAL_BACKOFF (%s)",
			c.Review.TxMaxBackoff, c.Review.TxInitialBackoff)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
