// Package config provides environment-driven configuration for the labelr server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	DatabaseURL Secret
	Port        string
	MetricsPort string
	ListenHost  string
	CORSOrigins []string
	LogLevel    string
	APIKey      Secret
	DBMaxConns  int
	RateLimit   float64
	RateBurst   int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: Secret(envOrDefault("DATABASE_URL", "")),
		Port:        envOrDefault("PORT", "3040"),
		MetricsPort: envOrDefault("METRICS_PORT", "9141"),
		ListenHost:  envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		APIKey:      Secret(envOrDefault("API_KEY", "")),
	}

	dbMaxConns, err := strconv.Atoi(envOrDefault("DB_MAX_CONNS", "10"))
	if err != nil || dbMaxConns < 2 || dbMaxConns > 200 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be an integer between 2 and 200")
	}
	cfg.DBMaxConns = dbMaxConns

	rateLimit, err := strconv.ParseFloat(envOrDefault("RATE_LIMIT", "20"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT must be a positive number of requests per second")
	}
	cfg.RateLimit = rateLimit

	rateBurst, err := strconv.Atoi(envOrDefault("RATE_BURST", "40"))
	if err != nil || rateBurst < 1 {
		return nil, fmt.Errorf("RATE_BURST must be a positive integer")
	}
	cfg.RateBurst = rateBurst

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3000")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// MetricsAddr returns the metrics listen address in host:port format.
func (c *Config) MetricsAddr() string {
	return c.ListenHost + ":" + c.MetricsPort
}

// AuthEnabled reports whether API requests must carry the API key.
func (c *Config) AuthEnabled() bool {
	return c.APIKey.Value() != ""
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
