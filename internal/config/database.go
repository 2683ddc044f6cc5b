package config

import (
	"fmt"

	"bookreview-backend/internal/infrastructure/database"
)

// LoadDatabaseConfig reads the PostgreSQL settings. Invalid numbers fall
// back to defaults like the rest of Load; obviously broken values are
// rejected here.
func LoadDatabaseConfig() (*database.DBConfig, error) {
	cfg := &database.DBConfig{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              getEnvInt("DB_PORT", 5432),
		Username:          getEnv("DB_USER", "bookreview"),
		Password:          getEnv("DB_PASSWORD", "secret"),
		DBName:            getEnv("DB_NAME", "bookreview_dev"),
		SSLMode:           getEnv("DB_SSLMODE", "disable"),
		MaxConns:          int32(getEnvInt("DB_MAX_CONNECTIONS", 25)),
		MinConns:          int32(getEnvInt("DB_MIN_CONNECTIONS", 5)),
		MaxConnLifetime:   getEnvDuration("DB_MAX_CONN_LIFETIME", database.DefaultMaxConnLifetime),
		MaxConnIdleTime:   getEnvDuration("DB_MAX_CONN_IDLE_TIME", database.DefaultMaxConnIdleTime),
		HealthCheckPeriod: getEnvDuration("DB_HEALTH_CHECK_PERIOD", database.DefaultHealthCheckPeriod),
		MaxRetries:        getEnvInt("DB_MAX_RETRIES", 5),
		RetryDelay:        getEnvDuration("DB_RETRY_DELAY", database.DefaultRetryDelay),
		ConnectTimeout:    getEnvDuration("DB_CONNECT_TIMEOUT", database.DefaultConnectTimeout),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid DB_PORT: %d", cfg.Port)
	}
	if cfg.MaxConns < 1 || cfg.MinConns < 0 || cfg.MinConns > cfg.MaxConns {
		return nil, fmt.Errorf("invalid pool size: min=%d max=%d", cfg.MinConns, cfg.MaxConns)
	}
	if cfg.MaxRetries < 1 {
		return nil, fmt.Errorf("invalid DB_MAX_RETRIES: %d", cfg.MaxRetries)
	}

	return cfg, nil
}
