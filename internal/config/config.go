// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates all service configuration sections.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Logging   LoggingConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Janitor   JanitorConfig
	Survey    SurveyConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Address returns the host:port the server binds to.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig controls the PostgreSQL connection. An empty DSN selects the
// in-memory stores.
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig controls the optional Redis-backed run store. An empty Addr
// disables it.
type RedisConfig struct {
	Addr   string
	DB     int
	RunTTL time.Duration
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// AuthConfig guards the debug surface. Tokens are static bearer tokens;
// JWTSecret additionally accepts HS256 tokens signed with it.
type AuthConfig struct {
	Tokens    []string
	JWTSecret string
}

// RateLimitConfig throttles requests per client IP.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// JanitorConfig controls the stale-run sweeper.
type JanitorConfig struct {
	Schedule   string
	MaxRunIdle time.Duration
}

// SurveyConfig controls the questionnaire.
type SurveyConfig struct {
	DefinitionPath string
	Version        string
}

// Load reads configuration from the environment, applying defaults that match
// local development.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getenv("SERVER_HOST", "0.0.0.0"),
			Port:         getint("SERVER_PORT", 8000),
			ReadTimeout:  getdur("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getdur("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          getenv("DATABASE_DRIVER", "postgres"),
			DSN:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getint("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getint("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getdur("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:   os.Getenv("REDIS_ADDR"),
			DB:     getint("REDIS_DB", 0),
			RunTTL: getdur("REDIS_RUN_TTL", 24*time.Hour),
		},
		Logging: LoggingConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "text"),
			Output: getenv("LOG_OUTPUT", "stdout"),
		},
		Auth: AuthConfig{
			Tokens:    split(os.Getenv("DEBUG_AUTH_TOKENS")),
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getfloat("RATE_LIMIT_RPS", 10),
			Burst:             getint("RATE_LIMIT_BURST", 20),
		},
		Janitor: JanitorConfig{
			Schedule:   getenv("RUN_JANITOR_SCHEDULE", "*/15 * * * *"),
			MaxRunIdle: getdur("RUN_MAX_IDLE", 6*time.Hour),
		},
		Survey: SurveyConfig{
			DefinitionPath: os.Getenv("SURVEY_DEFINITION_PATH"),
			Version:        getenv("SURVEY_VERSION", "0.1.0"),
		},
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid SERVER_PORT %d", cfg.Server.Port)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getfloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getdur(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func split(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
