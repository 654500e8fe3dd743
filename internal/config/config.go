// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application settings from CAMPUS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageLocal      = "local"
	StorageS3         = "s3"
	StorageCloudinary = "cloudinary"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinSessionSecretLength is the minimum required length for the session secret,
// which also keys CSRF tokens.
const MinSessionSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"CAMPUS_DB_PATH" envDefault:"./data/campus.db"`
	SessionSecret string `env:"CAMPUS_SESSION_SECRET,required"`
	ServerHost    string `env:"CAMPUS_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"CAMPUS_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"CAMPUS_ENV" envDefault:"development"`
	LogLevel      string `env:"CAMPUS_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"CAMPUS_UPLOADS_DIR" envDefault:"./uploads"`

	// SiteURL is the public base URL used in sitemap.xml and robots.txt.
	SiteURL string `env:"CAMPUS_SITE_URL" envDefault:"http://localhost:8080"`

	// Bootstrap administrator, used only while the admins table is empty.
	AdminUsername string `env:"CAMPUS_ADMIN_USERNAME"`
	AdminPassword string `env:"CAMPUS_ADMIN_PASSWORD"`
	AdminEmail    string `env:"CAMPUS_ADMIN_EMAIL"`

	SessionIdleTimeout time.Duration `env:"CAMPUS_SESSION_IDLE_TIMEOUT" envDefault:"2h"`
	SessionLifetime    time.Duration `env:"CAMPUS_SESSION_LIFETIME" envDefault:"24h"`

	StorageBackend string           `env:"CAMPUS_STORAGE_BACKEND" envDefault:"local"`
	UploadTimeout  time.Duration    `env:"CAMPUS_UPLOAD_TIMEOUT" envDefault:"60s"`
	SignedURLTTL   time.Duration    `env:"CAMPUS_SIGNED_URL_TTL" envDefault:"168h"`
	S3             S3Config         `envPrefix:"CAMPUS_S3_"`
	Cloudinary     CloudinaryConfig `envPrefix:"CAMPUS_CLOUDINARY_"`

	// URLRefreshSchedule is the cron expression of the signed URL refresh job.
	URLRefreshSchedule string `env:"CAMPUS_URL_REFRESH_SCHEDULE" envDefault:"0 */6 * * *"`

	// Cache configuration
	RedisURL     string        `env:"CAMPUS_REDIS_URL"`
	CachePrefix  string        `env:"CAMPUS_CACHE_PREFIX" envDefault:"campus:"`
	CacheTTL     time.Duration `env:"CAMPUS_CACHE_TTL" envDefault:"5m"`
	CacheMaxSize int           `env:"CAMPUS_CACHE_MAX_SIZE" envDefault:"1000"`
}

// S3Config configures an S3 compatible bucket (AWS, Backblaze B2, MinIO).
type S3Config struct {
	Bucket          string `env:"BUCKET"`
	Region          string `env:"REGION" envDefault:"us-east-1"`
	Endpoint        string `env:"ENDPOINT"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `env:"USE_PATH_STYLE"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"`
}

// CloudinaryConfig holds Cloudinary API credentials.
type CloudinaryConfig struct {
	CloudName string `env:"CLOUD_NAME"`
	APIKey    string `env:"API_KEY"`
	APISecret string `env:"API_SECRET"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// LogLevelValue maps LogLevel to a slog level; unknown values mean info.
func (c Config) LogLevelValue() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// LoadDotEnv loads a .env file if one exists. Variables already set in the
// environment win over the file.
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("CAMPUS_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}
	return cfg, nil
}

// Validate checks values that env tags cannot express.
func (c *Config) Validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("CAMPUS_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}
	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return errors.New("CAMPUS_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	switch c.StorageBackend {
	case StorageLocal:
	case StorageS3:
		if c.S3.Bucket == "" {
			return errors.New("CAMPUS_S3_BUCKET is required for the s3 storage backend")
		}
		if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
			return errors.New("CAMPUS_S3_ACCESS_KEY_ID and CAMPUS_S3_SECRET_ACCESS_KEY must be set together")
		}
	case StorageCloudinary:
		if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
			return errors.New("CAMPUS_CLOUDINARY_CLOUD_NAME, CAMPUS_CLOUDINARY_API_KEY and " +
				"CAMPUS_CLOUDINARY_API_SECRET are required for the cloudinary storage backend")
		}
	default:
		return fmt.Errorf("CAMPUS_STORAGE_BACKEND must be one of local, s3, cloudinary; got %q", c.StorageBackend)
	}

	if c.SessionIdleTimeout <= 0 || c.SessionLifetime <= 0 {
		return errors.New("session timeouts must be positive")
	}
	if c.SessionIdleTimeout > c.SessionLifetime {
		return errors.New("CAMPUS_SESSION_IDLE_TIMEOUT must not exceed CAMPUS_SESSION_LIFETIME")
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
