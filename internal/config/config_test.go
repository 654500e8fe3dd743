// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-Secret-key-32-bytes-long!!!"

func cleanEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "CAMPUS_") {
			t.Setenv(name, "")
			_ = os.Unsetenv(name)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)
	t.Setenv("CAMPUS_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/campus.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/campus.db")
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr() = %q", cfg.ServerAddr())
	}
	if !cfg.IsDevelopment() {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.StorageBackend != StorageLocal {
		t.Errorf("StorageBackend = %q, want local", cfg.StorageBackend)
	}
	if cfg.SessionIdleTimeout != 2*time.Hour || cfg.SessionLifetime != 24*time.Hour {
		t.Errorf("session timeouts = %v/%v", cfg.SessionIdleTimeout, cfg.SessionLifetime)
	}
	if cfg.SignedURLTTL != 7*24*time.Hour {
		t.Errorf("SignedURLTTL = %v", cfg.SignedURLTTL)
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() = true without a URL")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	cleanEnv(t)
	t.Setenv("CAMPUS_SESSION_SECRET", testSecret)
	t.Setenv("CAMPUS_SERVER_HOST", "0.0.0.0")
	t.Setenv("CAMPUS_SERVER_PORT", "3000")
	t.Setenv("CAMPUS_ENV", "production")
	t.Setenv("CAMPUS_LOG_LEVEL", "debug")
	t.Setenv("CAMPUS_STORAGE_BACKEND", "s3")
	t.Setenv("CAMPUS_S3_BUCKET", "college-media")
	t.Setenv("CAMPUS_S3_ENDPOINT", "https://s3.us-west-004.backblazeb2.com")
	t.Setenv("CAMPUS_S3_USE_PATH_STYLE", "true")
	t.Setenv("CAMPUS_UPLOAD_TIMEOUT", "2m")
	t.Setenv("CAMPUS_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q", cfg.ServerAddr())
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true in production")
	}
	if cfg.LogLevelValue() != slog.LevelDebug {
		t.Errorf("LogLevelValue() = %v", cfg.LogLevelValue())
	}
	if cfg.S3.Bucket != "college-media" || !cfg.S3.UsePathStyle || cfg.S3.Region != "us-east-1" {
		t.Errorf("S3 = %+v", cfg.S3)
	}
	if cfg.UploadTimeout != 2*time.Minute {
		t.Errorf("UploadTimeout = %v", cfg.UploadTimeout)
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false")
	}
}

func TestLoad_RequiredSessionSecret(t *testing.T) {
	cleanEnv(t)
	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail without CAMPUS_SESSION_SECRET")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			SessionSecret:      testSecret,
			StorageBackend:     StorageLocal,
			SessionIdleTimeout: time.Hour,
			SessionLifetime:    2 * time.Hour,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"short secret", func(c *Config) { c.SessionSecret = "short" }, "at least 32 bytes"},
		{"weak secret", func(c *Config) { c.SessionSecret = "change-me-to-32-byte-secret-key!" }, "known default"},
		{"unknown backend", func(c *Config) { c.StorageBackend = "ftp" }, "must be one of"},
		{"s3 without bucket", func(c *Config) { c.StorageBackend = StorageS3 }, "CAMPUS_S3_BUCKET"},
		{"s3 half credentials", func(c *Config) {
			c.StorageBackend = StorageS3
			c.S3.Bucket = "b"
			c.S3.AccessKeyID = "id"
		}, "must be set together"},
		{"cloudinary incomplete", func(c *Config) {
			c.StorageBackend = StorageCloudinary
			c.Cloudinary.CloudName = "college"
		}, "CAMPUS_CLOUDINARY_API_KEY"},
		{"idle exceeds lifetime", func(c *Config) { c.SessionIdleTimeout = 3 * time.Hour }, "must not exceed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("Validate() error = %v", err)
			case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"abcdefABCDEFabcdefABCDEFabcdefAB", false},
		{"abcABC123abcABC123abcABC123abcAB", true},
		{testSecret, true},
	}
	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.secret); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
		}
	}
}
