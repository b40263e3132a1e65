// Package config validates the process environment once at startup,
// accumulating every problem found instead of failing on the first one —
// the teacher's pattern, carried over unchanged.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds validated environment configuration for the board server.
type Config struct {
	Port string

	SupabaseURL            string
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string
	DatabaseURL            string

	AllowedOrigins string

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string

	JoinAttemptBucketBackend string // "memory" | "redis"

	GoEnv    string
	LogLevel string

	RateLimitWsConnect string
}

// ValidateEnv validates all required environment variables and returns a
// Config object, or a single error listing every problem found.
func ValidateEnv() (*Config, error) {
	cfg := &Config{}
	var errs []string

	cfg.Port = os.Getenv("PORT")
	if cfg.Port == "" {
		errs = append(errs, "PORT is required")
	} else if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT must be a valid port number between 1 and 65535 (got %q)", cfg.Port))
	}

	cfg.SupabaseURL = os.Getenv("SUPABASE_URL")
	cfg.SupabaseServiceRoleKey = os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
	cfg.SupabaseJWTSecret = os.Getenv("SUPABASE_JWT_SECRET")
	if cfg.SupabaseJWTSecret == "" {
		errs = append(errs, "SUPABASE_JWT_SECRET is required")
	} else if len(cfg.SupabaseJWTSecret) < 16 {
		errs = append(errs, fmt.Sprintf("SUPABASE_JWT_SECRET must be at least 16 characters (got %d)", len(cfg.SupabaseJWTSecret)))
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" && (cfg.SupabaseURL == "" || cfg.SupabaseServiceRoleKey == "") {
		errs = append(errs, "DATABASE_URL is required unless SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are both set")
	}

	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")

	cfg.RedisEnabled = os.Getenv("REDIS_ENABLED") == "true"
	if cfg.RedisEnabled {
		cfg.RedisAddr = os.Getenv("REDIS_ADDR")
		if cfg.RedisAddr == "" {
			cfg.RedisAddr = "localhost:6379"
			slog.Warn("REDIS_ADDR not set, using default", "addr", cfg.RedisAddr)
		} else if !isValidHostPort(cfg.RedisAddr) {
			errs = append(errs, fmt.Sprintf("REDIS_ADDR must be in format 'host:port' (got %q)", cfg.RedisAddr))
		}
		cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	}

	cfg.JoinAttemptBucketBackend = getEnvOrDefault("JOIN_ATTEMPT_BUCKET_BACKEND", "memory")
	if cfg.JoinAttemptBucketBackend != "memory" && cfg.JoinAttemptBucketBackend != "redis" {
		errs = append(errs, fmt.Sprintf("JOIN_ATTEMPT_BUCKET_BACKEND must be 'memory' or 'redis' (got %q)", cfg.JoinAttemptBucketBackend))
	}
	if cfg.JoinAttemptBucketBackend == "redis" && !cfg.RedisEnabled {
		errs = append(errs, "JOIN_ATTEMPT_BUCKET_BACKEND=redis requires REDIS_ENABLED=true")
	}

	cfg.GoEnv = getEnvOrDefault("GO_ENV", "production")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	cfg.RateLimitWsConnect = getEnvOrDefault("RATE_LIMIT_WS_CONNECT", "100-M")

	if len(errs) > 0 {
		return nil, fmt.Errorf("environment validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	logValidatedConfig(cfg)
	return cfg, nil
}

// ResolvedDatabaseURL returns DatabaseURL if set, otherwise derives a
// Postgres DSN from the Supabase project URL and service-role key — the
// connection string Supabase's own Postgres instance accepts for a project
// at https://<ref>.supabase.co.
func (cfg *Config) ResolvedDatabaseURL() (string, error) {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL, nil
	}

	ref := strings.TrimPrefix(cfg.SupabaseURL, "https://")
	ref = strings.TrimPrefix(ref, "http://")
	ref = strings.TrimSuffix(ref, "/")
	ref = strings.TrimSuffix(ref, ".supabase.co")
	if ref == "" {
		return "", fmt.Errorf("cannot derive database dsn from SUPABASE_URL %q", cfg.SupabaseURL)
	}

	return fmt.Sprintf("postgres://postgres:%s@db.%s.supabase.co:5432/postgres", cfg.SupabaseServiceRoleKey, ref), nil
}

func isValidHostPort(addr string) bool {
	parts := strings.Split(addr, ":")
	if len(parts) != 2 {
		return false
	}
	port, err := strconv.Atoi(parts[1])
	if err != nil || port < 1 || port > 65535 {
		return false
	}
	return parts[0] != ""
}

func logValidatedConfig(cfg *Config) {
	slog.Info("environment configuration validated")
	slog.Info("configuration",
		"port", cfg.Port,
		"supabase_jwt_secret", redactSecret(cfg.SupabaseJWTSecret),
		"database_url", redactSecret(cfg.DatabaseURL),
		"redis_enabled", cfg.RedisEnabled,
		"redis_addr", cfg.RedisAddr,
		"join_attempt_bucket_backend", cfg.JoinAttemptBucketBackend,
		"go_env", cfg.GoEnv,
		"log_level", cfg.LogLevel,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func redactSecret(secret string) string {
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:8] + "***"
}
