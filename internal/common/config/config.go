// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Catalog  CatalogConfig           `mapstructure:"catalog"`
	Engine   EngineConfig            `mapstructure:"engine"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Metrics  MetricsConfig           `mapstructure:"metrics"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// Catalog source kinds
const (
	SourceBuiltin  = "builtin"
	SourceFile     = "file"
	SourceRedis    = "redis"
	SourcePostgres = "postgres"
)

// CatalogConfig selects where the intent catalog is loaded from.
type CatalogConfig struct {
	Source   string `mapstructure:"source"` // builtin | file | redis | postgres
	Path     string `mapstructure:"path"`
	RedisKey string `mapstructure:"redis_key"`
	Format   string `mapstructure:"format"` // json | yaml, used for redis payloads
	Table    string `mapstructure:"table"`
}

// EngineConfig tunes the dialogue engine.
type EngineConfig struct {
	Threshold       float64 `mapstructure:"threshold"`
	HistorySize     int     `mapstructure:"history_size"`
	Seed            int64   `mapstructure:"seed"`
	EntitiesEnabled bool    `mapstructure:"entities_enabled"`
	MaxSessions     int     `mapstructure:"max_sessions"`
	SessionIdleTTL  int     `mapstructure:"session_idle_ttl"` // seconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the /metrics and /health listener.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type CamundaConfig struct {
	BrokerAddress string `mapstructure:"broker_address"`
	MaxJobsActive int    `mapstructure:"max_jobs_active"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the settings applicable to every dialogue worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// IdleTTL returns the session idle timeout as a duration.
func (e EngineConfig) IdleTTL() time.Duration {
	return time.Duration(e.SessionIdleTTL) * time.Second
}
