package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultDatabaseFile is the SQLite file name used when DATABASE_PATH is unset
const DefaultDatabaseFile = "activities.db"

// Config holds all configuration values for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string
	Environment    string

	StoreDriver  string
	DatabasePath string // SQLite file
	DatabaseURL  string // Postgres connection string

	RedisURL string
	LockTTL  time.Duration

	SeedOnStart    bool
	RequestTimeout time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "*")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		Environment:    getEnv("ENVIRONMENT", "production"),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite)),
		DatabasePath:   getEnv("DATABASE_PATH", defaultDatabasePath()),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		LockTTL:        getDurationEnv("LOCK_TTL", 5*time.Second),
		SeedOnStart:    getBoolEnv("SEED_ON_START", true),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected store has what it needs
func (c *Config) Validate() error {
	var problems []string

	switch c.StoreDriver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			problems = append(problems, "DATABASE_PATH must not be empty for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required for the postgres driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown STORE_DRIVER %q (want sqlite or postgres)", c.StoreDriver))
	}

	if c.LockTTL <= 0 {
		problems = append(problems, "LOCK_TTL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsDevelopment returns true outside production
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "local"
}

// defaultDatabasePath places the database one level above the executable's
// directory, so bin/server and the database sit side by side in an install.
func defaultDatabasePath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultDatabaseFile
	}
	return filepath.Join(filepath.Dir(filepath.Dir(exe)), DefaultDatabaseFile)
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
