package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all poolboard configuration values.
type Config struct {
	// Server
	Addr            string
	Env             string
	GracefulTimeout time.Duration

	// Redis (stats publishing only — see redisclient.PublishStats)
	RedisURL string

	// Pool
	PoolEnabled     bool
	PoolIdleTimeout time.Duration // 0 means "no age-based expiry" (spec's timeout=None)

	// Origins to dial and warm into the pool at startup, "host:port/version",
	// e.g. "example.com:443/h2,example.org:80/h1".
	WarmOrigins []string

	// Dial
	DialTimeout     time.Duration
	MaxDialsPerHost int

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables and an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	gracefulSec := getEnvInt("GRACEFUL_TIMEOUT_SEC", 15)
	idleTimeoutSec := getEnvInt("POOL_IDLE_TIMEOUT_SEC", 90)
	dialTimeoutSec := getEnvInt("DIAL_TIMEOUT_SEC", 10)

	cfg := &Config{
		Addr:            getEnv("ADDR", ":8080"),
		Env:             getEnv("ENV", "development"),
		GracefulTimeout: time.Duration(gracefulSec) * time.Second,
		RedisURL:        getEnv("REDIS_URL", "redis://redis:6379"),
		PoolEnabled:     getEnvBool("POOL_ENABLED", true),
		PoolIdleTimeout: time.Duration(idleTimeoutSec) * time.Second,
		WarmOrigins:     getEnvList("POOL_WARM_ORIGINS", nil),
		DialTimeout:     time.Duration(dialTimeoutSec) * time.Second,
		MaxDialsPerHost: getEnvInt("MAX_DIALS_PER_HOST", 8),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
	if idleTimeoutSec <= 0 {
		cfg.PoolIdleTimeout = 0
	}
	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
