// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/olegiv/campus-cms/internal/store"
)

var (
	// ErrInvalidCredentials is returned for both unknown usernames and wrong
	// passwords so callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAdminNotFound is returned by Admin when the id does not resolve.
	ErrAdminNotFound = errors.New("admin not found")

	// ErrBootstrapIncomplete means no administrator exists and the
	// configuration does not supply one.
	ErrBootstrapIncomplete = errors.New("no administrator exists and bootstrap credentials are incomplete")
)

// MinPasswordLength applies to bootstrap passwords.
const MinPasswordLength = 8

var (
	dummyOnce sync.Once
	dummyHash string
)

// dummy returns a fixed hash that unknown usernames are checked against.
func dummy() string {
	dummyOnce.Do(func() {
		h, err := HashPassword("campus-cms-timing-equaliser")
		if err != nil {
			panic(fmt.Sprintf("auth: generating dummy hash: %v", err))
		}
		dummyHash = h
	})
	return dummyHash
}

// NormalizeUsername trims, NFC-normalises and case-folds a username.
func NormalizeUsername(username string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(username)))
}

// CredentialStore verifies administrator credentials against the admins table.
type CredentialStore struct {
	db      *sql.DB
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewCredentialStore creates a credential store backed by db.
func NewCredentialStore(db *sql.DB, logger *slog.Logger) *CredentialStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialStore{
		db:      db,
		queries: store.New(db),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Verify checks username and password. On success it records the login time
// and upgrades the stored hash when its parameters are outdated.
func (c *CredentialStore) Verify(ctx context.Context, username, password string) (store.Admin, error) {
	name := NormalizeUsername(username)

	admin, err := c.queries.GetAdminByUsername(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_, _ = CheckPassword(password, dummy())
			return store.Admin{}, ErrInvalidCredentials
		}
		return store.Admin{}, fmt.Errorf("looking up admin: %w", err)
	}

	ok, err := CheckPassword(password, admin.PasswordHash)
	if err != nil {
		c.logger.Error("stored password hash is unreadable", "admin_id", admin.ID, "error", err)
		return store.Admin{}, ErrInvalidCredentials
	}
	if !ok {
		return store.Admin{}, ErrInvalidCredentials
	}

	now := c.now()
	if NeedsRehash(admin.PasswordHash) {
		if hash, err := HashPassword(password); err == nil {
			if err := c.queries.UpdateAdminPassword(ctx, store.UpdateAdminPasswordParams{
				PasswordHash: hash,
				UpdatedAt:    now,
				ID:           admin.ID,
			}); err != nil {
				c.logger.Warn("failed to upgrade password hash", "admin_id", admin.ID, "error", err)
			} else {
				admin.PasswordHash = hash
			}
		}
	}

	if err := c.queries.UpdateAdminLastLogin(ctx, store.UpdateAdminLastLoginParams{
		LastLoginAt: sql.NullTime{Time: now, Valid: true},
		ID:          admin.ID,
	}); err != nil {
		c.logger.Warn("failed to record last login", "admin_id", admin.ID, "error", err)
	} else {
		admin.LastLoginAt = sql.NullTime{Time: now, Valid: true}
	}

	return admin, nil
}

// Admin loads the administrator with the given id.
func (c *CredentialStore) Admin(ctx context.Context, id int64) (store.Admin, error) {
	admin, err := c.queries.GetAdminByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Admin{}, ErrAdminNotFound
	}
	if err != nil {
		return store.Admin{}, fmt.Errorf("loading admin %d: %w", id, err)
	}
	return admin, nil
}

// BootstrapConfig carries the externally supplied first administrator.
type BootstrapConfig struct {
	Username string
	Password string
	Email    string
}

// Bootstrap makes sure an administrator exists. When the table is empty the
// account is created from cfg; an incomplete cfg is then an error the caller
// must treat as fatal. An existing administrator is never modified.
func (c *CredentialStore) Bootstrap(ctx context.Context, cfg BootstrapConfig) error {
	count, err := c.queries.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("counting admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	username := NormalizeUsername(cfg.Username)
	email := strings.TrimSpace(cfg.Email)
	if username == "" || cfg.Password == "" || email == "" {
		return ErrBootstrapIncomplete
	}
	if len(cfg.Password) < MinPasswordLength {
		return fmt.Errorf("bootstrap password must be at least %d characters", MinPasswordLength)
	}

	hash, err := HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("hashing bootstrap password: %w", err)
	}

	if _, err := store.SeedAdmin(ctx, c.db, store.SeedAdminParams{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}); err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}
	return nil
}
