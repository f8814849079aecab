package config

import (
	"fmt"
	"os"
	"strings"
)

// Store drivers
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	Port        string
	Environment string
	// Persistence
	StoreDriver string
	DatabaseURL string
	SQLitePath  string
	TablePrefix string
	// Auth and HTTP
	JWKSURL     string
	CORSOrigins []string
	// Type rules, loaded from YAML. Empty means the built-in defaults.
	TypologyFile string
	// Logging
	LogDir   string
	LogLevel string
	Debug    bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  env,
		StoreDriver:  getEnv("STORE_DRIVER", StoreSQLite),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		SQLitePath:   getEnv("SQLITE_PATH", "agora.db"),
		TablePrefix:  getTablePrefix(env),
		JWKSURL:      getEnv("JWKS_URL", ""),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		TypologyFile: getEnv("TYPOLOGY_FILE", ""),
		LogDir:       getEnv("LOG_DIR", ""),
		LogLevel:     getEnv("LOG_LEVEL", getDefaultLogLevel(env)),
		Debug:        getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// Validate reports configuration that cannot work
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", StorePostgres)
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER=%s", StoreSQLite)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getDefaultLogLevel(env string) string {
	if env == "prod" {
		return "info"
	}
	return "debug"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
