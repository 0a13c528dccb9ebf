// Package config provides configuration loading and validation for the
// matcher service. Values come from the environment (a .env file is loaded by
// the CLI before this runs) with sensible defaults for every tunable.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the service needs to run.
type Config struct {
	// Server
	Port      int
	JWTSecret string // empty disables token validation

	// Storage
	DatabaseURL string

	// Oracle
	GeminiAPIKeys []string
	GeminiModel   string
	OracleLimit   int           // requests allowed per OracleWindow
	OracleWindow  time.Duration // budget window
	MaxRetries    int

	// Refinement
	TopK      int
	BatchSize int
	Cooldown  time.Duration

	// Cache
	CacheTTL time.Duration

	// Logging
	LogJSON  bool
	LogDebug bool
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          envInt("PORT", 8080),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		GeminiAPIKeys: splitKeys(os.Getenv("GEMINI_API_KEYS")),
		GeminiModel:   envString("GEMINI_MODEL", "gemini-2.0-flash"),
		OracleLimit:   envInt("ORACLE_REQUEST_LIMIT", 60),
		OracleWindow:  envDuration("ORACLE_WINDOW", time.Minute),
		MaxRetries:    envInt("ORACLE_MAX_RETRIES", 3),
		TopK:          envInt("REFINE_TOP_K", 100),
		BatchSize:     envInt("REFINE_BATCH_SIZE", 5),
		Cooldown:      envDuration("REFINE_COOLDOWN", 500*time.Millisecond),
		CacheTTL:      envDuration("CACHE_TTL", time.Hour),
		LogJSON:       envBool("LOG_JSON", false),
		LogDebug:      envBool("LOG_DEBUG", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if len(c.GeminiAPIKeys) == 0 {
		return fmt.Errorf("config error: GEMINI_API_KEYS is required (comma-separated)")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: PORT must be between 1 and 65535")
	}
	if c.OracleLimit < 1 {
		return fmt.Errorf("config error: ORACLE_REQUEST_LIMIT must be positive")
	}
	if c.TopK < 1 {
		return fmt.Errorf("config error: REFINE_TOP_K must be positive")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("config error: REFINE_BATCH_SIZE must be positive")
	}
	return nil
}

// splitKeys parses a comma-separated key list, dropping empty entries.
func splitKeys(raw string) []string {
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func envString(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}
