package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const devTokenSecret = "dev-secret-change-in-production"

type Config struct {
	Port           string
	Env            string
	DatabaseDSN    string
	TokenSecret    string
	TokenExpiry    time.Duration
	MaxLength      int
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads the configuration from environment variables, falling back to
// development defaults. Malformed numeric values fall back as well.
func Load() Config {
	return Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		DatabaseDSN:    getEnv("DATABASE_DSN", ""),
		TokenSecret:    getEnv("TOKEN_SECRET", devTokenSecret),
		TokenExpiry:    getDuration("TOKEN_EXPIRY", 30*24*time.Hour),
		MaxLength:      getInt("MAX_LENGTH", 1024),
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 20),
	}
}

// IsProduction reports whether ENV is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate rejects configurations the server must not start with.
func (c Config) Validate() error {
	if c.IsProduction() && c.TokenSecret == devTokenSecret {
		return errors.New("TOKEN_SECRET must be set in production environment")
	}
	if c.MaxLength < 1 {
		return fmt.Errorf("MAX_LENGTH must be positive, got %d", c.MaxLength)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit must be positive, got %v rps burst %d", c.RateLimitRPS, c.RateLimitBurst)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}
