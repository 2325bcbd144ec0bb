// Package config loads client configuration from the environment.
package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Credential store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string

	// Remote budget service
	APIURL         string
	RequestTimeout time.Duration

	// Local API
	Port           string
	LocalAPIKey    string
	AllowedOrigins []string

	// Credential store
	CredentialDriver string
	CredentialPath   string

	// Quick add
	DefaultAccount string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Env:              getEnv("ENV", "development"),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		APIURL:           strings.TrimRight(getEnv("BUDGET_API_URL", "http://127.0.0.1:8000"), "/"),
		Port:             getEnv("PORT", "8080"),
		LocalAPIKey:      os.Getenv("LOCAL_API_KEY"),
		AllowedOrigins:   splitList(os.Getenv("CORS_ORIGINS")),
		CredentialDriver: strings.ToLower(getEnv("CREDENTIAL_DRIVER", DriverSQLite)),
		CredentialPath:   getEnv("CREDENTIAL_PATH", "rupeeraiser.db"),
		DefaultAccount:   getEnv("DEFAULT_ACCOUNT", "wallet"),
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: must be debug, info, warn, or error", cfg.LogLevel)
	}

	if _, err := url.ParseRequestURI(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("invalid BUDGET_API_URL %q: %w", cfg.APIURL, err)
	}

	timeout, err := parseTimeout(os.Getenv("REQUEST_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = timeout

	switch cfg.CredentialDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("invalid CREDENTIAL_DRIVER %q: must be sqlite or postgres", cfg.CredentialDriver)
	}

	return cfg, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %v", d)
	}
	return d, nil
}

// splitList parses a comma-separated list, skipping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
