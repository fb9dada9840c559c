// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Session backends accepted by SESSION_BACKEND.
const (
	SessionBackendValkey = "valkey"
	SessionBackendJWT    = "jwt"
)

// Comment secret modes accepted by COMMENT_SECRET_MODE.
const (
	SecretModeBcrypt = "bcrypt"
	SecretModePlain  = "plain"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBMaxConns int

	// Valkey (Redis-compatible), used for sessions
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyDB       int

	// Admin session
	SessionBackend string // "valkey" or "jwt"
	SessionSecret  string // HMAC key for the jwt backend
	SessionTTL     time.Duration

	// The single admin identity
	AdminEmail      string
	AdminPassword   string // plaintext or a bcrypt hash
	AdminName       string // author name stamped on admin comments
	AdminTOTPSecret string // optional second factor

	// How comment deletion secrets are stored
	CommentSecretMode string

	// Comment moderation through an OpenAI-compatible endpoint (optional)
	ModerationAPIKey  string
	ModerationBaseURL string
	ModerationModel   string

	// S3-compatible object storage for thumbnails (optional)
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "folio"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "folio"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		SessionBackend: envOrDefault("SESSION_BACKEND", SessionBackendValkey),
		SessionSecret:  os.Getenv("SESSION_SECRET"),

		AdminEmail:      envOrDefault("ADMIN_EMAIL", "admin@folio.local"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		AdminName:       envOrDefault("ADMIN_NAME", "Admin"),
		AdminTOTPSecret: os.Getenv("ADMIN_TOTP_SECRET"),

		CommentSecretMode: envOrDefault("COMMENT_SECRET_MODE", SecretModeBcrypt),

		ModerationAPIKey:  os.Getenv("MODERATION_API_KEY"),
		ModerationBaseURL: os.Getenv("MODERATION_BASE_URL"),
		ModerationModel:   os.Getenv("MODERATION_MODEL"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "folio-public"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),
	}

	var err error
	if cfg.DBMaxConns, err = envInt("DB_MAX_CONNS", 5, 1); err != nil {
		return nil, err
	}
	if cfg.ValkeyDB, err = envInt("VALKEY_DB", 0, 0); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = envDuration("SESSION_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}

	switch cfg.SessionBackend {
	case SessionBackendValkey, SessionBackendJWT:
	default:
		return nil, fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q",
			SessionBackendValkey, SessionBackendJWT, cfg.SessionBackend)
	}

	switch cfg.CommentSecretMode {
	case SecretModeBcrypt, SecretModePlain:
	default:
		return nil, fmt.Errorf("COMMENT_SECRET_MODE must be %q or %q, got %q",
			SecretModeBcrypt, SecretModePlain, cfg.CommentSecretMode)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.AdminPassword == "" {
			return nil, fmt.Errorf("ADMIN_PASSWORD must be set in production")
		}
		if cfg.SessionBackend == SessionBackendJWT && len(cfg.SessionSecret) < 32 {
			return nil, fmt.Errorf("SESSION_SECRET must be at least 32 bytes for the jwt session backend")
		}
	} else if cfg.AdminPassword == "" {
		cfg.AdminPassword = "admin"
	}

	if cfg.SessionSecret == "" && cfg.SessionBackend == SessionBackendJWT {
		cfg.SessionSecret = "folio-development-session-secret-key"
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return c.Env == "production"
}

// S3Enabled reports whether object storage credentials are configured.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt reads an integer of at least minimum.
func envInt(key string, fallback, minimum int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < minimum {
		return 0, fmt.Errorf("%s must be an integer >= %d, got %q", key, minimum, v)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}
