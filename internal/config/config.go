// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// AuthConfig holds authentication settings. Either an OIDC issuer/JWKS URL
// (external identity provider) or a shared HS256 secret (local/dev) must be
// configured.
type AuthConfig struct {
	IssuerURL      string   // OIDC issuer URL for discovery
	JWKSURL        string   // JWKS URL override (no discovery)
	JWTSecret      string   // HS256 shared secret for local/dev tokens
	Audience       string   // required JWT audience claim
	AllowedIssuers []string // accepted issuers (defaults to [IssuerURL])
}

// OIDCEnabled returns true when an external identity provider is configured.
func (a *AuthConfig) OIDCEnabled() bool {
	return a.IssuerURL != "" || a.JWKSURL != ""
}

// StorageConfig holds S3-compatible object storage settings. Uploads and
// downloads are disabled when storage is not configured.
type StorageConfig struct {
	KeyID    string
	Secret   string
	Endpoint string // host of the S3-compatible endpoint, no scheme
	Region   string
	Bucket   string
}

// Configured returns true if all required storage fields are set.
func (s *StorageConfig) Configured() bool {
	return s.KeyID != "" && s.Secret != "" && s.Endpoint != "" && s.Region != "" && s.Bucket != ""
}

// Config holds the configuration for the HTTP API, database, and storage.
type Config struct {
	ListenAddr  string // HTTP listen address (default ":8080")
	Env         string // "development" (default) or "production"
	LogLevel    string // debug, info, warn, error (default "info")
	DatabaseURL string // Postgres DSN (required)

	Auth    AuthConfig
	Storage StorageConfig

	// Presigned URL lifetimes.
	UploadURLTTL   time.Duration // default 15m
	DownloadURLTTL time.Duration // default 1h

	// Share link lifetime.
	ShareTTL time.Duration // default 336h (14 days)

	// Cleanup job.
	CleanupSchedule     string        // cron spec (default "*/30 * * * *")
	PendingUploadMaxAge time.Duration // default 24h

	// Rate limiting.
	RateLimitRPS   float64 // sustained requests per second (default 50)
	RateLimitBurst int     // burst capacity (default 100)

	// CORS.
	CORSAllowedOrigins []string // default ["*"]

	// Warnings collects non-fatal findings from loading; the caller logs them
	// once the logger exists.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// IncludeErrorDetails gates whether error context is shown to API clients.
// Detailed in development, minimal in production.
func (c *Config) IncludeErrorDetails() bool {
	return !c.IsProduction()
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:      os.Getenv("LISTEN_ADDR"),
		Env:             os.Getenv("ENV"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		CleanupSchedule: os.Getenv("CLEANUP_SCHEDULE"),
	}

	cfg.Auth = AuthConfig{
		IssuerURL: os.Getenv("AUTH_ISSUER_URL"),
		JWKSURL:   os.Getenv("AUTH_JWKS_URL"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		Audience:  os.Getenv("AUTH_AUDIENCE"),
	}
	if v := os.Getenv("AUTH_ALLOWED_ISSUERS"); v != "" {
		cfg.Auth.AllowedIssuers = splitTrimmed(v)
	}

	cfg.Storage = StorageConfig{
		KeyID:    os.Getenv("S3_KEY_ID"),
		Secret:   os.Getenv("S3_SECRET"),
		Endpoint: os.Getenv("S3_ENDPOINT"),
		Region:   os.Getenv("S3_REGION"),
		Bucket:   os.Getenv("S3_BUCKET"),
	}

	cfg.UploadURLTTL = parseDurationEnv("UPLOAD_URL_TTL", 15*time.Minute)
	cfg.DownloadURLTTL = parseDurationEnv("DOWNLOAD_URL_TTL", time.Hour)
	cfg.ShareTTL = parseDurationEnv("SHARE_TTL", 14*24*time.Hour)
	cfg.PendingUploadMaxAge = parseDurationEnv("PENDING_UPLOAD_MAX_AGE", 24*time.Hour)

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitTrimmed(v)
	}

	// Defaults.
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.CleanupSchedule == "" {
		cfg.CleanupSchedule = "*/30 * * * *"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 50
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 100
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}
	if !cfg.Auth.OIDCEnabled() && cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "dev-secret-change-in-production"
		cfg.Warnings = append(cfg.Warnings, "no auth configured — using insecure default JWT_SECRET")
	}
	if !cfg.Storage.Configured() {
		cfg.Warnings = append(cfg.Warnings, "object storage not configured — uploads and downloads are disabled (set S3_KEY_ID/S3_SECRET/S3_ENDPOINT/S3_REGION/S3_BUCKET)")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if !cfg.Auth.OIDCEnabled() && cfg.Auth.JWTSecret == "dev-secret-change-in-production" {
			return nil, fmt.Errorf("JWT_SECRET or an OIDC issuer must be set in production (ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
		if !cfg.Storage.Configured() {
			return nil, fmt.Errorf("object storage must be configured in production (ENV=production)")
		}
	}

	return cfg, nil
}

func parseDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}

func splitTrimmed(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already present in
// the environment. Lines must be KEY=VALUE; comments (#) and blank lines are
// skipped. A missing file is not an error.
func LoadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Real environment variables take precedence.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes one pair of matching surrounding quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
