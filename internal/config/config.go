// Package config loads service configuration from the environment.
// A .env file in the working directory is read first when present;
// real environment variables take precedence over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full service configuration.
type Config struct {
	Env      string // development | production
	Port     string
	LogLevel string

	// Identity provider
	RealmURL   string
	KeyTTL     time.Duration
	AdminRoles []string

	// Push delivery
	PushAPIURL      string
	PushAccessToken string
	PushTimeout     time.Duration

	// HTTP
	CORSOrigins     []string
	RateLimitRPS    float64
	RateLimitBurst  int
	ShutdownTimeout time.Duration
}

// IsDevelopment reports whether the service runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional env file (".env" when empty) and then the environment.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}
	return FromEnv(), nil
}

// FromEnv builds Config from the process environment, applying defaults.
func FromEnv() Config {
	return Config{
		Env:      getEnv("APP_ENV", "production"),
		Port:     getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RealmURL:   getEnv("KEYCLOAK_REALM_URL", "https://portal.dsek.se/auth/realms/dsek/"),
		KeyTTL:     getEnvDuration("KEY_CACHE_TTL", 60*time.Second),
		AdminRoles: getEnvList("ADMIN_ROLES", []string{"dsek.sexm", "dsek.infu"}),

		PushAPIURL:      getEnv("PUSH_API_URL", "https://exp.host/--/api/v2"),
		PushAccessToken: os.Getenv("PUSH_ACCESS_TOKEN"),
		PushTimeout:     getEnvDuration("PUSH_TIMEOUT", 10*time.Second),

		CORSOrigins:     getEnvList("CORS_ORIGINS", []string{"*"}),
		RateLimitRPS:    getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 10),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
