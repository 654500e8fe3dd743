// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// SeedAdminParams describes the administrator created on first start.
// PasswordHash must already be an encoded hash; the store never sees
// plaintext passwords.
type SeedAdminParams struct {
	Username     string
	Email        string
	PasswordHash string
}

// SeedAdmin creates the administrator account when the admins table is
// empty. It reports whether a row was inserted.
func SeedAdmin(ctx context.Context, db *sql.DB, arg SeedAdminParams) (bool, error) {
	queries := New(db)

	count, err := queries.CountAdmins(ctx)
	if err != nil {
		return false, fmt.Errorf("counting admins: %w", err)
	}
	if count > 0 {
		slog.Info("admin account already exists, skipping seed")
		return false, nil
	}

	now := time.Now().UTC()
	admin, err := queries.CreateAdmin(ctx, CreateAdminParams{
		Username:     arg.Username,
		Email:        arg.Email,
		PasswordHash: arg.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return false, fmt.Errorf("creating admin: %w", err)
	}

	slog.Info("created admin account", "id", admin.ID, "username", admin.Username)
	return true, nil
}
